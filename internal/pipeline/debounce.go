package pipeline

import (
	"slices"
	"syncd/internal/model"
	"time"
)

const maxWaitFactor = 10

// Debounce holds events until no new event has arrived for quiet. Repeated
// events for one path collapse into the latest, which keeps the position of
// that latest event, so the output is always a subsequence of the input.
// Events without a path flush whatever is pending and pass straight through.
func Debounce(inCh <-chan model.WatchEvent, quiet time.Duration) <-chan model.WatchEvent {
	outCh := make(chan model.WatchEvent, cap(inCh))

	if quiet <= 0 {
		go func() {
			defer close(outCh)
			for event := range inCh {
				outCh <- event
			}
		}()
		return outCh
	}

	go func() {
		defer close(outCh)

		var (
			pending []model.WatchEvent
			first   time.Time
		)
		index := make(map[string]int)

		timer := time.NewTimer(quiet)
		timer.Stop()

		flush := func() {
			for _, event := range pending {
				outCh <- event
			}
			pending = pending[:0]
			clear(index)
		}

		for {
			select {
			case event, ok := <-inCh:
				if !ok {
					timer.Stop()
					flush()
					return
				}

				path, hasPath := event.PathOf()
				if !hasPath {
					timer.Stop()
					flush()
					outCh <- event
					continue
				}

				if len(pending) == 0 {
					first = time.Now()
				}

				if i, seen := index[path]; seen {
					pending = slices.Delete(pending, i, i+1)
					for j := i; j < len(pending); j++ {
						p, _ := pending[j].PathOf()
						index[p] = j
					}
				}
				index[path] = len(pending)
				pending = append(pending, event)

				if time.Since(first) >= quiet*maxWaitFactor {
					timer.Stop()
					flush()
					continue
				}
				timer.Reset(quiet)

			case <-timer.C:
				flush()
			}
		}
	}()

	return outCh
}
