package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce absorbs the burst of events a single save produces.
var watchDebounce = 100 * time.Millisecond

// watch runs path and starts it again on every change until ctx is done.
// A failing run is reported and the watcher keeps waiting for the next
// change. The directory is watched rather than the file because editors
// often replace files by renaming over them.
func (s *session) watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- s.runFile(runCtx, path)
		}()

		changed, err := s.waitChange(ctx, w, target, done)
		cancel()
		<-done
		if err != nil || !changed {
			return err
		}
		fmt.Fprintf(s.stderr, "knot: %s changed, restarting\n", filepath.Base(path))
	}
}

// waitChange blocks until target changes, ctx is done or the watcher
// closes. A run that finishes meanwhile is reported and the wait goes on.
func (s *session) waitChange(ctx context.Context, w *fsnotify.Watcher, target string, done chan error) (bool, error) {
	results := done
	for {
		select {
		case <-ctx.Done():
			return false, nil
		case err := <-results:
			// keep the goroutine's result so watch does not block on it
			done <- err
			results = nil
			if err != nil && !errors.Is(err, ErrRunFailed) {
				fmt.Fprintf(s.stderr, "knot: run failed: %v\n", err)
			}
		case ev, ok := <-w.Events:
			if !ok {
				return false, nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			debounce(w)
			return true, nil
		case err, ok := <-w.Errors:
			if !ok {
				return false, nil
			}
			return false, fmt.Errorf("watch: %w", err)
		}
	}
}

func debounce(w *fsnotify.Watcher) {
	timer := time.NewTimer(watchDebounce)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}
