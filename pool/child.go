package pool

import "os"

// childEnv marks a process as a spawned child of some Manager. The
// marker travels through the environment because an exec'd child
// shares no memory with its parent.
const childEnv = "FORKLIFT_CHILD"

// InChild reports whether this process was spawned as a pool child.
func InChild() bool {
	return os.Getenv(childEnv) != ""
}

// Finish is the child's exit point. Inside a spawned child it
// terminates the process with status 0 and never returns. In the
// parent, or in the no-spawn child role, it returns normally so the
// caller continues with the next iteration.
func (m *Manager) Finish() {
	if m.inChild {
		os.Exit(0)
	}
}
