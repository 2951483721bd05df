package pool

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// Logger is a duck-typed interface satisfied by *slog.Logger.
// Use this interface instead of *slog.Logger to decouple from the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// FinishFunc receives a reaped child's PID and exit status.
type FinishFunc func(pid, exitCode int)

// wildcardPID keys the default finish handler.
const wildcardPID = 0

// exit is one reaped child as reported by its waiter goroutine.
type exit struct {
	pid  int
	code int
}

// Manager owns the slot accounting for one process pool. All methods
// except Active and Stats must be called from the single coordinating
// goroutine; the counters themselves are guarded so monitoring can
// read them from elsewhere.
type Manager struct {
	maxProcs  int
	logger    Logger
	env       []string
	configure func(*exec.Cmd)
	inChild   bool

	mu      sync.Mutex
	active  int
	spawned int
	reaped  int
	running map[int]*exec.Cmd

	onFinish map[int]FinishFunc
	onWait   func()
	onStart  func()

	// Waiter goroutines deliver exits here. Capacity covers the
	// admission bound, so a waiter never blocks on delivery.
	exits chan exit
}

// New creates a Manager admitting at most maxProcs concurrent
// children. maxProcs == 0 selects no-spawn mode, where Spawn hands the
// child role to the caller instead of creating a process. Negative
// limits are a configuration error.
func New(maxProcs int, opts ...Option) (*Manager, error) {
	if maxProcs < 0 {
		return nil, ErrNegativeProcs
	}

	m := &Manager{
		maxProcs: maxProcs,
		logger:   slog.Default(),
		inChild:  InChild(),
		running:  make(map[int]*exec.Cmd),
		onFinish: make(map[int]FinishFunc),
		exits:    make(chan exit, maxProcs+1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MaxProcs returns the configured concurrency bound.
func (m *Manager) MaxProcs() int {
	return m.maxProcs
}

// Active returns the number of spawned children not yet reaped.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// OnFinish registers fn for the given child PIDs. Called with no PIDs
// it becomes the default handler, invoked for any reaped child that
// has no specific one. A child with neither handler is reaped
// silently. A handler that panics does so on the goroutine performing
// the reap (Spawn, ReapFinished, or WaitAll); panics are not
// swallowed.
func (m *Manager) OnFinish(fn FinishFunc, pids ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(pids) == 0 {
		m.onFinish[wildcardPID] = fn
		return
	}
	for _, pid := range pids {
		m.onFinish[pid] = fn
	}
}

// OnWait registers fn to run each time Spawn is about to block on a
// full pool, once per blocking reap.
func (m *Manager) OnWait(fn func()) {
	m.onWait = fn
}

// OnStart registers fn to run once per Spawn call, after admission is
// guaranteed and before any process is created.
func (m *Manager) OnStart(fn func()) {
	m.onStart = fn
}

// Spawn admits one slot and starts argv as a child process, blocking
// while the pool is full. The result identifies the caller's role: the
// coordinating process gets the new child's PID, and in no-spawn mode
// the caller itself receives the child role with no process created.
//
// Spawn fails with ErrInChild inside a spawned child lineage and with
// *StartError when the OS refuses to create the process; a start
// failure leaves the slot accounting untouched but should be treated
// as fatal to the batch.
func (m *Manager) Spawn(argv ...string) (SpawnResult, error) {
	if m.inChild {
		return SpawnResult{}, ErrInChild
	}
	if len(argv) == 0 && m.maxProcs > 0 {
		return SpawnResult{}, ErrNoCommand
	}

	// Admission: hold the caller until a slot frees up.
	for m.Active() > 0 && m.Active() >= m.maxProcs {
		if m.onWait != nil {
			m.onWait()
		}
		m.reapOne(true)
	}

	// Collect children that already exited so their handlers fire now
	// rather than at the next blocking point.
	m.ReapFinished()

	if m.onStart != nil {
		m.onStart()
	}

	if m.maxProcs == 0 {
		// No-spawn mode: the calling process plays the child.
		return SpawnResult{}, nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), childEnv+"=1")
	cmd.Env = append(cmd.Env, m.env...)
	if m.configure != nil {
		m.configure(cmd)
	}

	if err := cmd.Start(); err != nil {
		m.logger.Error("Failed to start child", "error", err, "command", argv[0])
		return SpawnResult{}, &StartError{Argv: argv, Err: err}
	}

	pid := cmd.Process.Pid
	m.mu.Lock()
	m.active++
	m.spawned++
	m.running[pid] = cmd
	m.mu.Unlock()
	m.logger.Debug("Child started", "pid", pid, "command", argv[0])

	go func() {
		err := cmd.Wait()
		m.exits <- exit{pid: pid, code: exitCodeFromError(err)}
	}()

	return SpawnResult{pid: pid}, nil
}

// reapOne collects one exited child: releases its slot and dispatches
// its finish handler. In blocking mode it suspends the caller until an
// exit arrives; the guard on Active keeps it from hanging when no
// children exist. Returns ok=false when nothing was reaped.
func (m *Manager) reapOne(block bool) (pid int, ok bool) {
	if m.Active() == 0 {
		return 0, false
	}

	var e exit
	if block {
		e = <-m.exits
	} else {
		select {
		case e = <-m.exits:
		default:
			return 0, false
		}
	}

	m.mu.Lock()
	m.active--
	m.reaped++
	delete(m.running, e.pid)
	fn, found := m.onFinish[e.pid]
	if !found {
		fn = m.onFinish[wildcardPID]
	}
	m.mu.Unlock()

	m.logger.Debug("Child reaped", "pid", e.pid, "exit_code", e.code)
	if fn != nil {
		fn(e.pid, e.code)
	}
	return e.pid, true
}

// ReapFinished drains every child that has already exited, without
// blocking, and returns how many were reaped.
func (m *Manager) ReapFinished() int {
	n := 0
	for {
		if _, ok := m.reapOne(false); !ok {
			return n
		}
		n++
	}
}

// WaitAll blocks until every outstanding child has been reaped and
// its finish handler has run. It is the terminal barrier after the
// dispatch loop.
func (m *Manager) WaitAll() {
	for m.Active() > 0 {
		m.reapOne(true)
	}
}

// exitCodeFromError extracts the exit code from a Wait error.
// Returns 0 for nil, the child's code for ExitError, or 1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
