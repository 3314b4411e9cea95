package engine

import (
	"context"
	"errors"
	"sync"
	"syncd/internal/model"
	"testing"
	"time"
)

type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *eventLog) count(s string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.entries {
		if e == s {
			n++
		}
	}
	return n
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type fakeSource struct {
	log      *eventLog
	events   chan model.WatchEvent
	started  chan struct{}
	startErr error
}

func newFakeSource(log *eventLog) *fakeSource {
	return &fakeSource{
		log:     log,
		events:  make(chan model.WatchEvent, 100),
		started: make(chan struct{}),
	}
}

func (s *fakeSource) Start() error {
	s.log.add("start")
	if s.startErr != nil {
		return s.startErr
	}
	close(s.started)
	return nil
}

func (s *fakeSource) Events() <-chan model.WatchEvent { return s.events }

func (s *fakeSource) Stop() { s.log.add("stop") }

type fakeSyncer struct {
	log *eventLog
	err error
}

func (s *fakeSyncer) Sync() error {
	s.log.add("sync")
	return s.err
}

type runRecorder struct {
	mu   sync.Mutex
	runs []model.SyncRun
}

func (r *runRecorder) RecordSync(run model.SyncRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
}

func (r *runRecorder) all() []model.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SyncRun(nil), r.runs...)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRunSyncsOnceBeforeWatching(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	e := New(Options{Source: src, Syncer: &fakeSyncer{log: log}, PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	<-src.started
	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}

	got := log.snapshot()
	if len(got) < 2 || got[0] != "sync" || got[1] != "start" {
		t.Errorf("expected startup sync before start, got %v", got)
	}
	if n := log.count("sync"); n != 1 {
		t.Errorf("got %d syncs without changes, want 1", n)
	}
}

func TestRunCoalescesBurst(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	rec := &runRecorder{}
	e := New(Options{
		Source:       src,
		Syncer:       &fakeSyncer{log: log},
		PollInterval: 200 * time.Millisecond,
		Recorders:    []Recorder{rec},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	<-src.started
	for range 50 {
		src.events <- model.WatchEvent{Kind: model.EventModified, Path: "/src/a.go"}
	}

	eventually(t, func() bool { return log.count("sync") >= 2 })
	time.Sleep(500 * time.Millisecond)

	if n := log.count("sync"); n != 2 {
		t.Errorf("got %d syncs, want startup + 1", n)
	}

	runs := rec.all()
	if len(runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(runs))
	}
	if runs[0].Reason != model.ReasonStartup || runs[1].Reason != model.ReasonChange {
		t.Errorf("unexpected reasons: %s, %s", runs[0].Reason, runs[1].Reason)
	}
	if runs[0].ID == "" || runs[0].ID == runs[1].ID {
		t.Errorf("expected distinct run ids, got %q and %q", runs[0].ID, runs[1].ID)
	}
}

func TestRunIgnoredEventsDoNotSync(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	e := New(Options{
		Source:       src,
		Syncer:       &fakeSyncer{log: log},
		Rules:        suffixRules{".tmp"},
		PollInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	<-src.started
	for range 10 {
		src.events <- model.WatchEvent{Kind: model.EventModified, Path: "/src/x.tmp"}
	}
	time.Sleep(100 * time.Millisecond)

	if n := log.count("sync"); n != 1 {
		t.Errorf("got %d syncs, want only the startup pass", n)
	}
}

func TestRunSyncFailureIsNotFatal(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	rec := &runRecorder{}
	e := New(Options{
		Source:       src,
		Syncer:       &fakeSyncer{log: log, err: errors.New("rsync exited with status 23")},
		PollInterval: 10 * time.Millisecond,
		Recorders:    []Recorder{rec},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	<-src.started
	src.events <- model.WatchEvent{Kind: model.EventModified, Path: "/src/a"}
	eventually(t, func() bool { return log.count("sync") == 2 })

	time.Sleep(100 * time.Millisecond)
	if n := log.count("sync"); n != 2 {
		t.Errorf("failed pass must not be retried on its own, got %d syncs", n)
	}

	select {
	case err := <-errCh:
		t.Fatalf("engine stopped after sync failure: %v", err)
	default:
	}

	for _, run := range rec.all() {
		if run.Status() != model.StatusFailed {
			t.Errorf("run %s status = %s, want FAILED", run.ID, run.Status())
		}
	}
}

func TestRunClosedEventStreamIsFatal(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	e := New(Options{Source: src, Syncer: &fakeSyncer{log: log}, PollInterval: 10 * time.Millisecond})

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(context.Background()) }()

	<-src.started
	close(src.events)

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrEventStreamClosed) {
			t.Errorf("Run error = %v, want ErrEventStreamClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after event stream closed")
	}

	if log.count("stop") != 1 {
		t.Error("event source was not stopped")
	}
}

func TestRunSourceStartFailure(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	src.startErr = errors.New("too many open files")
	e := New(Options{Source: src, Syncer: &fakeSyncer{log: log}})

	err := e.Run(context.Background())
	if !errors.Is(err, src.startErr) {
		t.Fatalf("Run error = %v, want start error", err)
	}
	if n := log.count("sync"); n != 1 {
		t.Errorf("got %d syncs, want the startup pass only", n)
	}
}

func TestManualResyncThroughSignal(t *testing.T) {
	log := &eventLog{}
	src := newFakeSource(log)
	e := New(Options{Source: src, Syncer: &fakeSyncer{log: log}, PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	<-src.started
	e.Signal().Mark()

	eventually(t, func() bool { return log.count("sync") == 2 })
}
