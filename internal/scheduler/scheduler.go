// Package scheduler drives the watch CLI command: re-run an evaluation
// whenever a source document changes, on a recurring cron-style check.
//
// Grounded on the teacher engine's own internal/storage/scheduler.go job
// scheduler (github.com/robfig/cron/v3, cron.Cron plus a mutex-guarded
// running-state map), narrowed from general SQL job scheduling down to
// one recurring "check mtime, re-evaluate if changed" job.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner is invoked once per poll when the watched file has changed.
type Runner interface {
	Run(ctx context.Context, path string) error
}

// Watcher polls path on a cron schedule and calls Runner.Run whenever its
// modification time advances.
type Watcher struct {
	path    string
	runner  Runner
	cron    *cron.Cron
	mu      sync.Mutex
	lastMod time.Time
}

// NewWatcher builds a Watcher for path, polling on spec (a six-field cron
// expression whose first field is seconds, e.g. "*/5 * * * * *", to
// support sub-minute intervals).
func NewWatcher(path, spec string, runner Runner) (*Watcher, error) {
	w := &Watcher{
		path:   path,
		runner: runner,
		cron:   cron.New(cron.WithSeconds()),
	}
	if _, err := w.cron.AddFunc(spec, w.poll); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return w, nil
}

// Start begins polling; it returns immediately, running the cron loop in
// background goroutines owned by the underlying cron.Cron.
func (w *Watcher) Start() { w.cron.Start() }

// Stop halts polling and waits for any in-flight poll to finish.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		log.Printf("watch: stat %s: %v", w.path, err)
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMod)
	if changed {
		w.lastMod = info.ModTime()
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	log.Printf("watch: %s changed, re-evaluating", w.path)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.runner.Run(ctx, w.path); err != nil {
		log.Printf("watch: evaluation failed: %v", err)
	}
}
