// Package events provides the in-process event bus for job lifecycle
// notifications.
package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeJobStarted uint32 = iota + 1
	TypeJobFinished
	TypeJobFailed
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// JobStartedEvent is published when a job's child process starts, or
// when a job begins running in-process in no-spawn mode.
type JobStartedEvent struct {
	JobID   int       `json:"job_id"`
	PID     int       `json:"pid"` // 0 in no-spawn mode
	Command string    `json:"command"`
	Started time.Time `json:"started"`
}

// Type returns the event type identifier for JobStartedEvent.
func (e JobStartedEvent) Type() uint32 { return TypeJobStarted }

// JobFinishedEvent is published when a job's child has been reaped.
type JobFinishedEvent struct {
	JobID    int           `json:"job_id"`
	PID      int           `json:"pid"`
	ExitCode int           `json:"exit_code"`
	Command  string        `json:"command"`
	Duration time.Duration `json:"duration"`
}

// Type returns the event type identifier for JobFinishedEvent.
func (e JobFinishedEvent) Type() uint32 { return TypeJobFinished }

// JobFailedEvent is published when a job could not be started at all.
type JobFailedEvent struct {
	JobID   int    `json:"job_id"`
	Command string `json:"command"`
	Error   string `json:"error"`
}

// Type returns the event type identifier for JobFailedEvent.
func (e JobFailedEvent) Type() uint32 { return TypeJobFailed }
