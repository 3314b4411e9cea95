package daemon

import (
	"sync"
	"syncd/internal/engine"
	"syncd/internal/model"
	"time"
)

type State struct {
	mu          sync.RWMutex
	source      string
	destination string
	startedAt   time.Time
	synced      int
	failed      int
	lastSync    *time.Time
	lastRunID   string
	lastError   string
	signal      *engine.Signal
}

func NewState(source, destination string, signal *engine.Signal) *State {
	return &State{
		source:      source,
		destination: destination,
		startedAt:   time.Now(),
		signal:      signal,
	}
}

func (s *State) RecordSync(run model.SyncRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSync = new(run.StartedAt.Add(run.Duration))
	s.lastRunID = run.ID
	if run.Err != nil {
		s.failed++
		s.lastError = run.Err.Error()
	} else {
		s.synced++
		s.lastError = ""
	}
}

func (s *State) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Snapshot{
		Source:      s.source,
		Destination: s.destination,
		StartedAt:   s.startedAt,
		Synced:      s.synced,
		Failed:      s.failed,
		LastRunID:   s.lastRunID,
		LastSync:    s.lastSync,
		LastError:   s.lastError,
	}
	if s.signal != nil {
		snap.Pending = s.signal.Pending()
	}
	return snap
}
