package pool

// SpawnResult tells the caller which role it plays after a successful
// Spawn. The coordinating process gets the parent role and the new
// child's PID; in no-spawn mode the caller receives the child role and
// is expected to perform the work itself and then call Finish.
type SpawnResult struct {
	pid int
}

// Parent reports whether the caller is the coordinating process.
func (r SpawnResult) Parent() bool { return r.pid != 0 }

// Child reports whether the caller holds the child role for this
// iteration.
func (r SpawnResult) Child() bool { return r.pid == 0 }

// PID returns the started child's process ID, or 0 in the child role.
func (r SpawnResult) PID() int { return r.pid }
