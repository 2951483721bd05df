package pool

import "fmt"

var (
	// ErrInChild is returned by Spawn inside a spawned child lineage.
	ErrInChild = &PoolError{"spawn called from a child process"}

	// ErrNegativeProcs is returned by New for a negative limit.
	ErrNegativeProcs = &PoolError{"negative process limit"}

	// ErrNoCommand is returned by Spawn when no argv is given and a
	// real child would have to be created.
	ErrNoCommand = &PoolError{"empty command"}
)

// PoolError represents an error specific to the process pool.
type PoolError struct {
	msg string
}

// Error implements the error interface for PoolError.
func (e *PoolError) Error() string { return "pool: " + e.msg }

// StartError reports that the OS refused to create a child process.
// The manager admits nothing on failure, so slot accounting stays
// consistent, but the caller should treat the batch as dead rather
// than retry.
type StartError struct {
	Argv []string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("pool: starting %q: %v", e.Argv[0], e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }
