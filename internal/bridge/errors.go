package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvironmentUnavailable is returned by Submit when no runtime is
	// attached or the attached runtime reports it cannot accept work.
	ErrEnvironmentUnavailable = errors.New("bridge: execution environment unavailable")
	// ErrTimeout completes a task whose delivery did not arrive in time.
	ErrTimeout = errors.New("bridge: task timed out")
	// ErrInvalidTaskID is returned when a wire task id cannot be parsed.
	ErrInvalidTaskID = errors.New("bridge: invalid task id")
)

// RemoteError carries the error text the runtime reported for a task.
type RemoteError struct {
	TaskID  TaskID
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bridge: task %s failed remotely: %s", e.TaskID, e.Message)
}
