package scheduler_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/planforge/calcengine/internal/scheduler"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRunner) Run(ctx context.Context, path string) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestWatcherRunsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yml")
	if err := os.WriteFile(path, []byte("v: 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &countingRunner{}
	w, err := scheduler.NewWatcher(path, "*/1 * * * * *", runner)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && runner.count() == 0 {
		time.Sleep(100 * time.Millisecond)
	}
	if runner.count() == 0 {
		t.Fatal("expected at least one poll to have run")
	}
}

func TestWatcherRejectsInvalidSchedule(t *testing.T) {
	if _, err := scheduler.NewWatcher("x", "not a valid cron spec", &countingRunner{}); err == nil {
		t.Errorf("expected an error for an invalid cron schedule")
	}
}

func TestWatcherOnlyRerunsOnModification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yml")
	if err := os.WriteFile(path, []byte("v: 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &countingRunner{}
	w, err := scheduler.NewWatcher(path, "*/1 * * * * *", runner)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	// Let it poll a few times with no change; it should fire once for the
	// initial modification time transition and then settle.
	time.Sleep(2500 * time.Millisecond)
	first := runner.count()
	if first == 0 {
		t.Fatal("expected at least one run before the settle window")
	}
	time.Sleep(1200 * time.Millisecond)
	if runner.count() != first {
		t.Errorf("expected no further runs without a file modification, got %d calls after %d", runner.count(), first)
	}
}
