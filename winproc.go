package winproc

import "time"

// WaitStatus is the closed set of outcomes a wait operation can report.
// The numeric values match the platform's WAIT_* constants.
type WaitStatus uint32

const (
	// WaitSignaled indicates the target reached its terminal state (WAIT_OBJECT_0)
	WaitSignaled WaitStatus = 0x00000000

	// WaitAbandoned indicates an abandoned wait (WAIT_ABANDONED); it can only
	// be reported for mutex handles, never for thread or process handles,
	// but it is part of the platform's wait vocabulary
	WaitAbandoned WaitStatus = 0x00000080

	// WaitTimeout indicates the timeout elapsed first (WAIT_TIMEOUT)
	WaitTimeout WaitStatus = 0x00000102

	// WaitFailed indicates the wait could not be performed, including waits
	// on an invalid wrapper (WAIT_FAILED)
	WaitFailed WaitStatus = 0xFFFFFFFF
)

// WaitStatus string constants
const (
	waitSignaledStr  = "signaled"
	waitAbandonedStr = "abandoned"
	waitTimeoutStr   = "timeout"
	waitFailedStr    = "failed"
	waitUnknownStr   = "unknown"
)

// String returns the string representation of the wait status
func (s WaitStatus) String() string {
	switch s {
	case WaitSignaled:
		return waitSignaledStr
	case WaitAbandoned:
		return waitAbandonedStr
	case WaitTimeout:
		return waitTimeoutStr
	case WaitFailed:
		return waitFailedStr
	default:
		return waitUnknownStr
	}
}

// Platform sentinel values
const (
	// StillActive is the exit code the platform reports for a target that has
	// not terminated yet (STILL_ACTIVE, 259). A target that really exits with
	// this code is indistinguishable from a running one; TryExitCode reports
	// no value for both.
	StillActive uint32 = 259

	// Infinite is the "wait forever" timeout sentinel (INFINITE). WaitFor
	// clamps finite durations below this value so a caller-supplied timeout
	// is never promoted to an unbounded wait.
	Infinite uint32 = 0xFFFFFFFF
)

// Thread scheduling priorities, relative to the owning process's priority
// class. Values match the platform's THREAD_PRIORITY_* constants.
const (
	ThreadPriorityIdle         = -15
	ThreadPriorityLowest       = -2
	ThreadPriorityBelowNormal  = -1
	ThreadPriorityNormal       = 0
	ThreadPriorityAboveNormal  = 1
	ThreadPriorityHighest      = 2
	ThreadPriorityTimeCritical = 15
)

// Supervisor defaults that can be overridden with options
const (
	// DefaultBackoffMin is the minimum delay before a restart attempt
	DefaultBackoffMin = 100 * time.Millisecond

	// DefaultBackoffMax is the maximum delay between restart attempts
	DefaultBackoffMax = 5 * time.Second

	// DefaultReloadDebounce is the debounce applied to file change events
	// before a reload restart is triggered
	DefaultReloadDebounce = 250 * time.Millisecond

	// DefaultEventBuffer is the default capacity of a Supervisor event channel
	DefaultEventBuffer = 16

	// DefaultStopGrace is how long Stop waits for supervisor goroutines
	DefaultStopGrace = 500 * time.Millisecond

	// stableRunThreshold is how long a child must run for the restart
	// backoff to reset to BackoffMin
	stableRunThreshold = 30 * time.Second

	// waitSlice is the wait quantum used by goroutines that must remain
	// stoppable while blocked on a kernel wait
	waitSlice = 500 * time.Millisecond
)

// File modes
const (
	// StateFileMode is the mode for persisted state records
	StateFileMode = 0o644
)

// Operation identifies which operation an OpError came from
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpSpawn is process creation
	OpSpawn
	// OpWait is a blocking wait on a handle
	OpWait
	// OpTerminate is forced termination
	OpTerminate
	// OpWatch is reload-path watching
	OpWatch
	// OpState is state-record persistence
	OpState
)

// Operation string constants
const (
	opUnknownStr   = "unknown"
	opSpawnStr     = "spawn"
	opWaitStr      = "wait"
	opTerminateStr = "terminate"
	opWatchStr     = "watch"
	opStateStr     = "state"
)

// String returns the string representation of the operation
func (o Operation) String() string {
	switch o {
	case OpSpawn:
		return opSpawnStr
	case OpWait:
		return opWaitStr
	case OpTerminate:
		return opTerminateStr
	case OpWatch:
		return opWatchStr
	case OpState:
		return opStateStr
	default:
		return opUnknownStr
	}
}
