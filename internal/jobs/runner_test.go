package jobs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/forklift/internal/events"
	"github.com/smazurov/forklift/pool"
)

func runnerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(t *testing.T, maxProcs int) (*Runner, *events.Bus) {
	t.Helper()
	pm, err := pool.New(maxProcs, pool.WithLogger(runnerTestLogger()))
	if err != nil {
		t.Fatalf("pool.New failed: %v", err)
	}
	bus := events.New()
	return NewRunner(pm, bus, runnerTestLogger()), bus
}

func mustParse(t *testing.T, lines ...string) []Job {
	t.Helper()
	jobs := make([]Job, 0, len(lines))
	for i, line := range lines {
		argv, err := ParseLine(line)
		if err != nil {
			t.Fatalf("bad test job %q: %v", line, err)
		}
		jobs = append(jobs, Job{ID: i + 1, Argv: argv, Line: line})
	}
	return jobs
}

func TestRunnerRun(t *testing.T) {
	r, bus := newTestRunner(t, 2)

	var mu sync.Mutex
	var finished []events.JobFinishedEvent
	unsub := bus.Subscribe(func(e events.JobFinishedEvent) {
		mu.Lock()
		finished = append(finished, e)
		mu.Unlock()
	})
	defer unsub()

	summary, err := r.Run(mustParse(t,
		"sh -c 'exit 0'",
		"sh -c 'exit 0'",
		"sh -c 'exit 5'",
	))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Run != 3 {
		t.Errorf("expected 3 jobs run, got %d", summary.Run)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed job, got %d", summary.Failed)
	}

	// Event delivery is asynchronous; give the bus a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(finished)
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(finished) != 3 {
		t.Errorf("expected 3 finished events, got %d", len(finished))
	}
	badExits := 0
	for _, e := range finished {
		if e.ExitCode != 0 {
			badExits++
		}
	}
	if badExits != 1 {
		t.Errorf("expected 1 non-zero exit among events, got %d", badExits)
	}
}

func TestRunnerRunStartFailure(t *testing.T) {
	r, bus := newTestRunner(t, 2)

	failedEvents := make(chan events.JobFailedEvent, 1)
	unsub := bus.Subscribe(func(e events.JobFailedEvent) {
		select {
		case failedEvents <- e:
		default:
		}
	})
	defer unsub()

	_, err := r.Run([]Job{{ID: 1, Argv: []string{"/nonexistent/forklift-job"}, Line: "/nonexistent/forklift-job"}})
	if err == nil {
		t.Fatal("expected start failure to surface")
	}

	select {
	case <-failedEvents:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a JobFailedEvent")
	}
}

func TestRunnerNoSpawnMode(t *testing.T) {
	r, _ := newTestRunner(t, 0)

	marker := filepath.Join(t.TempDir(), "touched")
	summary, err := r.Run(mustParse(t, "touch "+marker, "sh -c 'exit 9'"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Run != 2 {
		t.Errorf("expected 2 jobs run, got %d", summary.Run)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed job, got %d", summary.Failed)
	}
	if _, statErr := os.Stat(marker); statErr != nil {
		t.Errorf("expected in-process job to run: %v", statErr)
	}
}

func TestRunnerFollow(t *testing.T) {
	r, bus := newTestRunner(t, 2)

	path := filepath.Join(t.TempDir(), "jobs.txt")
	if err := os.WriteFile(path, []byte("echo first\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	finished := make(chan events.JobFinishedEvent, 8)
	unsub := bus.Subscribe(func(e events.JobFinishedEvent) { finished <- e })
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Summary, 1)
	go func() {
		summary, _ := r.Follow(ctx, path)
		done <- summary
	}()

	// First job from the initial file content.
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the initial job")
	}

	// Append a job; follow mode should pick it up.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("echo second\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the appended job")
	}

	cancel()
	select {
	case summary := <-done:
		if summary.Run != 2 {
			t.Errorf("expected 2 jobs run in follow mode, got %d", summary.Run)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}
