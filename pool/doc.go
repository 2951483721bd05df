// Package pool coordinates a bounded set of concurrent child processes.
//
// A Manager admits up to MaxProcs children at a time. Spawn blocks the
// caller once the bound is reached and resumes after an earlier child
// has been reaped, so the number of live children never exceeds the
// configured limit:
//
//	pm, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pm.OnFinish(func(pid, exitCode int) {
//	    log.Printf("child %d exited with %d", pid, exitCode)
//	})
//	for _, job := range jobs {
//	    res, err := pm.Spawn(job.Argv...)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if res.Child() {
//	        // MaxProcs == 0: this process performs the work itself.
//	        job.RunHere()
//	        pm.Finish()
//	    }
//	}
//	pm.WaitAll()
//
// Children exit and are reaped in any order; finish handlers receive
// each PID exactly once. The admission contract has no timeout, so a
// hung child stalls the pool indefinitely.
//
// With MaxProcs == 0 no child process is ever created: Spawn hands the
// child role back to the caller and Finish becomes a no-op, which
// keeps the loop body runnable in a single process for debugging.
//
// Spawned children carry FORKLIFT_CHILD in their environment. A
// program that builds a Manager inside such a child may call Finish to
// terminate with status 0, but Spawn there fails with ErrInChild:
// a child must not breed through its parent's pool.
package pool
