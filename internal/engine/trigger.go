package engine

import (
	"context"
	"time"
)

// Trigger polls the signal and runs fire whenever it was set. fire runs on
// the trigger's goroutine, so passes never overlap.
type Trigger struct {
	signal   *Signal
	interval time.Duration
	fire     func()
}

func NewTrigger(signal *Signal, interval time.Duration, fire func()) *Trigger {
	return &Trigger{signal: signal, interval: interval, fire: fire}
}

func (t *Trigger) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if t.signal.Take() {
				t.fire()
			}
		}
	}
}
