package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syncd/internal/logger"
	"syncd/internal/model"
	"syncd/internal/pipeline"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// SkipFunc reports whether a directory should be left unwatched.
type SkipFunc func(path string, isDir bool) bool

type Watcher struct {
	fw      *fsnotify.Watcher
	rawCh   chan model.WatchEvent
	eventCh <-chan model.WatchEvent
	doneCh  chan struct{}
	skip    SkipFunc

	mu   sync.Mutex
	dirs map[string]struct{}

	started  bool
	stopOnce sync.Once
}

func New(bufferSize int, quiet time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	rawCh := make(chan model.WatchEvent, bufferSize)

	return &Watcher{
		fw:      fw,
		rawCh:   rawCh,
		eventCh: pipeline.Debounce(rawCh, quiet),
		doneCh:  make(chan struct{}),
		dirs:    make(map[string]struct{}),
	}, nil
}

func (w *Watcher) SetSkip(skip SkipFunc) {
	w.skip = skip
}

func (w *Watcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return fmt.Errorf("source directory not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", absDir)
	}

	if err := w.addRecursive(absDir, true); err != nil {
		return err
	}

	w.started = true
	go w.run()

	logger.Log.Info("watcher started",
		zap.String("dir", absDir))
	return nil
}

func (w *Watcher) addRecursive(dir string, isRoot bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if isRoot && path == dir {
				return err
			}
			// 생성 직후 삭제된 디렉토리는 무시
			logger.Log.Debug("skipping unreadable path",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir || !isRoot {
			if d.Name() == ".git" || (w.skip != nil && w.skip(path, true)) {
				return filepath.SkipDir
			}
		}

		if err := w.fw.Add(path); err != nil {
			if isRoot {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			logger.Log.Warn("failed to watch new directory",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()

		logger.Log.Debug("watching directory",
			zap.String("path", path))
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.rawCh)

	for {
		select {
		case <-w.doneCh:
			logger.Log.Info("watcher stopping")
			return

		case fsEvent, ok := <-w.fw.Events:
			if !ok {
				return
			}

			kind := toEventKind(fsEvent.Op)
			if kind == "" {
				continue
			}

			isDir := w.isDir(fsEvent.Name, kind)

			if kind == model.EventCreated && isDir {
				if err := w.addRecursive(fsEvent.Name, false); err != nil {
					logger.Log.Warn("failed to watch new directory",
						zap.String("path", fsEvent.Name),
						zap.Error(err))
				}
			}

			if !w.send(model.WatchEvent{Kind: kind, Path: fsEvent.Name, IsDir: isDir}) {
				return
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			event := model.WatchEvent{Kind: model.EventError, Err: err}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				event = model.WatchEvent{Kind: model.EventRescan, Err: err}
			}

			if !w.send(event) {
				return
			}
		}
	}
}

func (w *Watcher) send(event model.WatchEvent) bool {
	select {
	case w.rawCh <- event:
		return true
	case <-w.doneCh:
		return false
	}
}

func (w *Watcher) isDir(path string, kind model.EventKind) bool {
	if kind == model.EventRemoved || kind == model.EventRenamed {
		w.mu.Lock()
		defer w.mu.Unlock()

		_, ok := w.dirs[path]
		if ok {
			prefix := path + string(filepath.Separator)
			for d := range w.dirs {
				if d == path || strings.HasPrefix(d, prefix) {
					delete(w.dirs, d)
				}
			}
		}
		return ok
	}

	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) Events() <-chan model.WatchEvent {
	return w.eventCh
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.doneCh)
		_ = w.fw.Close()
		if !w.started {
			close(w.rawCh)
		}
	})
}

func toEventKind(op fsnotify.Op) model.EventKind {
	switch {
	case op.Has(fsnotify.Create):
		return model.EventCreated
	case op.Has(fsnotify.Write):
		return model.EventModified
	case op.Has(fsnotify.Remove):
		return model.EventRemoved
	case op.Has(fsnotify.Rename):
		return model.EventRenamed
	case op.Has(fsnotify.Chmod):
		return model.EventMetadata
	default:
		return ""
	}
}
