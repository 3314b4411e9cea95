package engine

import (
	"context"
	"errors"
	"syncd/internal/logger"
	"syncd/internal/model"

	"go.uber.org/zap"
)

var ErrEventStreamClosed = errors.New("event stream closed")

type Matcher interface {
	Match(path string, isDir bool) bool
}

type Collector struct {
	signal *Signal
	rules  Matcher
}

// NewCollector returns a collector marking signal for every event whose
// path rules does not match. rules may be nil.
func NewCollector(signal *Signal, rules Matcher) *Collector {
	return &Collector{signal: signal, rules: rules}
}

func (c *Collector) Run(ctx context.Context, events <-chan model.WatchEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				return ErrEventStreamClosed
			}
			c.handle(event)
		}
	}
}

func (c *Collector) handle(event model.WatchEvent) {
	path, hasPath := event.PathOf()

	switch event.Kind {
	case model.EventError:
		if !hasPath {
			logger.Log.Error("watcher error",
				zap.Error(event.Err))
			return
		}
		logger.Log.Warn("watcher error",
			zap.String("path", path),
			zap.Error(event.Err))

	case model.EventRescan:
		// events were lost, only a full pass can catch up
		logger.Log.Warn("watcher requested rescan",
			zap.Error(event.Err))
		c.signal.Mark()
		return
	}

	if c.rules != nil && c.rules.Match(path, event.IsDir) {
		logger.Log.Debug("ignored change",
			zap.String("path", path))
		return
	}

	logger.Log.Debug("change detected",
		zap.String("type", string(event.Kind)),
		zap.String("path", path))
	c.signal.Mark()
}
