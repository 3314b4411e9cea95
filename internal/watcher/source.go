package watcher

import (
	"syncd/internal/model"
	"time"
)

type Source struct {
	path string
	w    *Watcher
}

func NewSource(path string, bufSize int, quiet time.Duration, skip SkipFunc) (*Source, error) {
	w, err := New(bufSize, quiet)
	if err != nil {
		return nil, err
	}
	w.SetSkip(skip)

	return &Source{path: path, w: w}, nil
}

func (s *Source) Events() <-chan model.WatchEvent {
	return s.w.Events()
}

func (s *Source) Start() error {
	return s.w.Watch(s.path)
}

func (s *Source) Stop() {
	s.w.Stop()
}
