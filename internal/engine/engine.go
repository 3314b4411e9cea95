package engine

import (
	"context"
	"fmt"
	"syncd/internal/logger"
	"syncd/internal/model"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultPollInterval = 100 * time.Millisecond

type EventSource interface {
	Start() error
	Events() <-chan model.WatchEvent
	Stop()
}

type Syncer interface {
	Sync() error
}

type Recorder interface {
	RecordSync(run model.SyncRun)
}

type Options struct {
	Source       EventSource
	Syncer       Syncer
	Rules        Matcher
	PollInterval time.Duration
	Recorders    []Recorder
}

type Engine struct {
	source    EventSource
	syncer    Syncer
	rules     Matcher
	interval  time.Duration
	recorders []Recorder
	signal    *Signal
}

func New(opts Options) *Engine {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Engine{
		source:    opts.Source,
		syncer:    opts.Syncer,
		rules:     opts.Rules,
		interval:  interval,
		recorders: opts.Recorders,
		signal:    &Signal{},
	}
}

// AddRecorder registers r for every pass. It must be called before Run.
func (e *Engine) AddRecorder(r Recorder) {
	e.recorders = append(e.recorders, r)
}

// Signal exposes the dirty flag so a manual resync can be requested.
func (e *Engine) Signal() *Signal {
	return e.signal
}

// Run performs the startup pass, starts the event source and blocks until
// one of the two workers fails or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.runPass(model.ReasonStartup)

	if err := e.source.Start(); err != nil {
		return fmt.Errorf("failed to start event source: %w", err)
	}
	defer e.source.Stop()

	collector := NewCollector(e.signal, e.rules)
	trigger := NewTrigger(e.signal, e.interval, func() {
		e.runPass(model.ReasonChange)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return collector.Run(gctx, e.source.Events())
	})
	g.Go(func() error {
		return trigger.Run(gctx)
	})

	return g.Wait()
}

func (e *Engine) runPass(reason model.SyncReason) model.SyncRun {
	run := model.SyncRun{
		ID:        uuid.NewString(),
		Reason:    reason,
		StartedAt: time.Now(),
	}

	logger.Log.Info("sync started",
		zap.String("run_id", run.ID),
		zap.String("reason", string(reason)))

	run.Err = e.syncer.Sync()
	run.Duration = time.Since(run.StartedAt)

	if run.Err != nil {
		logger.Log.Error("sync failed",
			zap.String("run_id", run.ID),
			zap.Duration("took", run.Duration),
			zap.Error(run.Err))
	} else {
		logger.Log.Info("sync finished",
			zap.String("run_id", run.ID),
			zap.Duration("took", run.Duration))
	}

	for _, r := range e.recorders {
		r.RecordSync(run)
	}

	return run
}
