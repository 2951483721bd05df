package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/smazurov/forklift/internal/config"
	"github.com/smazurov/forklift/internal/events"
	"github.com/smazurov/forklift/pool"
)

// followDebounce batches rapid appends to the job file.
const followDebounce = 500 * time.Millisecond

// Summary reports a run's outcome.
type Summary struct {
	Run    int // jobs dispatched (including in-process ones)
	Failed int // jobs with a non-zero exit code
}

// track pairs a live child with its job.
type track struct {
	job     Job
	started time.Time
}

// Runner feeds jobs into a pool.Manager and turns reap results into
// events. One Runner owns its manager's wildcard finish handler.
type Runner struct {
	pm     *pool.Manager
	bus    *events.Bus
	logger *slog.Logger

	mu      sync.Mutex
	pending map[int]track
	run     int
	failed  int
}

// NewRunner creates a runner on top of pm. The runner claims the
// manager's default finish handler.
func NewRunner(pm *pool.Manager, bus *events.Bus, logger *slog.Logger) *Runner {
	r := &Runner{
		pm:      pm,
		bus:     bus,
		logger:  logger,
		pending: make(map[int]track),
	}
	pm.OnFinish(r.onFinish)
	return r
}

// Run dispatches the batch and blocks until every child has been
// reaped. A start failure aborts dispatch but still drains children
// already running.
func (r *Runner) Run(batch []Job) (Summary, error) {
	err := r.dispatch(batch)
	r.pm.WaitAll()
	return r.Summary(), err
}

// Follow runs the current content of the job file, then watches it and
// dispatches appended jobs until ctx is cancelled. The job file is
// treated as append-only; rewriting earlier lines does not re-run them.
func (r *Runner) Follow(ctx context.Context, path string) (Summary, error) {
	batch, err := ParseFile(path)
	if err != nil {
		return r.Summary(), err
	}

	// Reload handlers run on the watcher goroutine; hand batches back
	// here so the pool only ever sees one caller.
	batches := make(chan []Job, 4)
	watcher := config.NewFileWatcher(
		path,
		ParseFile,
		r.logger,
		config.WithDebounce[[]Job](followDebounce),
	)
	watcher.OnReload(func(jobs []Job) {
		select {
		case batches <- jobs:
		case <-ctx.Done():
		}
	})
	if err := watcher.Start(); err != nil {
		return r.Summary(), err
	}
	defer watcher.Stop()

	consumed := len(batch)
	if err := r.dispatch(batch); err != nil {
		r.pm.WaitAll()
		return r.Summary(), err
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Follow mode stopping, draining children")
			r.pm.WaitAll()
			return r.Summary(), nil
		case jobs := <-batches:
			if len(jobs) <= consumed {
				continue
			}
			appended := jobs[consumed:]
			consumed = len(jobs)
			r.logger.Info("Job file grew", "new_jobs", len(appended))
			if err := r.dispatch(appended); err != nil {
				r.pm.WaitAll()
				return r.Summary(), err
			}
		}
	}
}

// Summary returns the counters so far. Safe to call from any goroutine.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{Run: r.run, Failed: r.failed}
}

// dispatch spawns each job, blocking on pool admission. In no-spawn
// mode the job runs right here before the next one is considered.
func (r *Runner) dispatch(batch []Job) error {
	for _, job := range batch {
		res, err := r.pm.Spawn(job.Argv...)
		if err != nil {
			var startErr *pool.StartError
			if errors.As(err, &startErr) {
				r.logger.Error("Failed to start job", "job_id", job.ID, "command", job.Line, "error", err)
				r.bus.Publish(events.JobFailedEvent{JobID: job.ID, Command: job.Line, Error: err.Error()})
			}
			return err
		}

		if res.Child() {
			r.runHere(job)
			r.pm.Finish()
			continue
		}

		r.mu.Lock()
		r.pending[res.PID()] = track{job: job, started: time.Now()}
		r.run++
		r.mu.Unlock()

		r.logger.Info("Job started", "job_id", job.ID, "pid", res.PID(), "command", job.Line)
		r.bus.Publish(events.JobStartedEvent{
			JobID:   job.ID,
			PID:     res.PID(),
			Command: job.Line,
			Started: time.Now(),
		})
	}
	return nil
}

// runHere executes one job synchronously in this process (no-spawn
// mode, MaxProcs == 0).
func (r *Runner) runHere(job Job) {
	started := time.Now()
	r.logger.Info("Job running in-process", "job_id", job.ID, "command", job.Line)
	r.bus.Publish(events.JobStartedEvent{JobID: job.ID, Command: job.Line, Started: started})

	cmd := exec.Command(job.Argv[0], job.Argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	code := exitCode(cmd.Run())

	r.mu.Lock()
	r.run++
	if code != 0 {
		r.failed++
	}
	r.mu.Unlock()

	r.logger.Info("Job finished", "job_id", job.ID, "exit_code", code)
	r.bus.Publish(events.JobFinishedEvent{
		JobID:    job.ID,
		ExitCode: code,
		Command:  job.Line,
		Duration: time.Since(started),
	})
}

// onFinish is the pool's wildcard finish handler.
func (r *Runner) onFinish(pid, code int) {
	r.mu.Lock()
	tr, known := r.pending[pid]
	delete(r.pending, pid)
	if code != 0 {
		r.failed++
	}
	r.mu.Unlock()

	if !known {
		r.logger.Warn("Reaped a child with no tracked job", "pid", pid, "exit_code", code)
		return
	}

	duration := time.Since(tr.started)
	if code != 0 {
		r.logger.Warn("Job failed", "job_id", tr.job.ID, "pid", pid, "exit_code", code, "duration", duration)
	} else {
		r.logger.Info("Job finished", "job_id", tr.job.ID, "pid", pid, "duration", duration)
	}
	r.bus.Publish(events.JobFinishedEvent{
		JobID:    tr.job.ID,
		PID:      pid,
		ExitCode: code,
		Command:  tr.job.Line,
		Duration: duration,
	})
}

// exitCode extracts the exit status from a Run error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
