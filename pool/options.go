package pool

import "os/exec"

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for pool operations. Defaults to
// slog.Default().
func WithLogger(logger Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEnv appends extra KEY=value pairs to every spawned child's
// environment, after the parent's environment and the child marker.
func WithEnv(env ...string) Option {
	return func(m *Manager) {
		m.env = append(m.env, env...)
	}
}

// WithConfigure customizes each child's exec.Cmd after the manager has
// applied its defaults and before the process starts. Used for
// domain-specific setup (working directory, output capture, process
// group attributes).
func WithConfigure(fn func(*exec.Cmd)) Option {
	return func(m *Manager) {
		m.configure = fn
	}
}
