package pipeline

import (
	"syncd/internal/model"
	"testing"
	"time"
)

func collect(t *testing.T, outCh <-chan model.WatchEvent, n int, timeout time.Duration) []model.WatchEvent {
	t.Helper()

	var events []model.WatchEvent
	deadline := time.After(timeout)
	for len(events) < n {
		select {
		case event, ok := <-outCh:
			if !ok {
				return events
			}
			events = append(events, event)
		case <-deadline:
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}
	return events
}

func TestDebounceCollapsesSamePath(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, 50*time.Millisecond)

	inCh <- model.WatchEvent{Kind: model.EventCreated, Path: "/src/a"}
	for range 4 {
		inCh <- model.WatchEvent{Kind: model.EventModified, Path: "/src/a"}
	}

	events := collect(t, outCh, 1, time.Second)
	if events[0].Kind != model.EventModified {
		t.Errorf("kind = %s, want latest event kind %s", events[0].Kind, model.EventModified)
	}

	select {
	case event := <-outCh:
		t.Fatalf("unexpected extra event %+v", event)
	case <-time.After(150 * time.Millisecond):
	}

	close(inCh)
}

func TestDebounceKeepsLatestOrder(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, 30*time.Millisecond)

	for _, p := range []string{"/b", "/a", "/b", "/c", "/a"} {
		inCh <- model.WatchEvent{Kind: model.EventModified, Path: p}
	}

	events := collect(t, outCh, 3, time.Second)
	want := []string{"/b", "/c", "/a"}
	for i, event := range events {
		if event.Path != want[i] {
			t.Errorf("event %d path = %s, want %s", i, event.Path, want[i])
		}
	}

	close(inCh)
}

func TestDebounceNeverMovesLaterEventAhead(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, 30*time.Millisecond)

	inCh <- model.WatchEvent{Kind: model.EventCreated, Path: "/a"}
	inCh <- model.WatchEvent{Kind: model.EventCreated, Path: "/b"}
	inCh <- model.WatchEvent{Kind: model.EventRemoved, Path: "/a"}

	events := collect(t, outCh, 2, time.Second)
	if events[0].Path != "/b" || events[0].Kind != model.EventCreated {
		t.Errorf("first event = %+v, want CREATE /b", events[0])
	}
	if events[1].Path != "/a" || events[1].Kind != model.EventRemoved {
		t.Errorf("second event = %+v, want REMOVE /a", events[1])
	}

	close(inCh)
}

func TestDebounceMaxWaitOnBusyPath(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, 20*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(inCh)
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				inCh <- model.WatchEvent{Kind: model.EventModified, Path: "/busy"}
			}
		}
	}()
	defer close(done)

	collect(t, outCh, 1, time.Second)
}

func TestDebouncePathlessEventsPassThrough(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, time.Hour)

	inCh <- model.WatchEvent{Kind: model.EventModified, Path: "/a"}
	inCh <- model.WatchEvent{Kind: model.EventRescan}

	events := collect(t, outCh, 2, time.Second)
	if events[0].Path != "/a" || events[1].Kind != model.EventRescan {
		t.Errorf("unexpected order: %+v", events)
	}

	close(inCh)
}

func TestDebounceFlushesOnClose(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, time.Hour)

	inCh <- model.WatchEvent{Kind: model.EventModified, Path: "/a"}
	inCh <- model.WatchEvent{Kind: model.EventRemoved, Path: "/b"}
	close(inCh)

	events := collect(t, outCh, 3, time.Second)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if _, ok := <-outCh; ok {
		t.Error("output channel should be closed")
	}
}

func TestDebounceZeroQuietForwards(t *testing.T) {
	inCh := make(chan model.WatchEvent, 10)
	outCh := Debounce(inCh, 0)

	inCh <- model.WatchEvent{Kind: model.EventModified, Path: "/a"}
	inCh <- model.WatchEvent{Kind: model.EventModified, Path: "/a"}
	close(inCh)

	events := collect(t, outCh, 3, time.Second)
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
