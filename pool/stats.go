package pool

// Stats is a point-in-time snapshot of the pool's counters.
type Stats struct {
	MaxProcs int
	Active   int
	Spawned  int
	Reaped   int
}

// Stats returns the current counters. Safe to call from any goroutine.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		MaxProcs: m.maxProcs,
		Active:   m.active,
		Spawned:  m.spawned,
		Reaped:   m.reaped,
	}
}

// RunningPIDs returns the PIDs of children spawned but not yet
// reaped, in no particular order.
func (m *Manager) RunningPIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pids := make([]int, 0, len(m.running))
	for pid := range m.running {
		pids = append(pids, pid)
	}
	return pids
}
