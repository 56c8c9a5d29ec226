package winproc

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"
)

// ProcState is the supervisor's view of a supervised process
type ProcState int

const (
	// StateUnknown indicates the state could not be determined
	StateUnknown ProcState = iota
	// StateStarting indicates a spawn attempt is in progress
	StateStarting
	// StateRunning indicates the child is running
	StateRunning
	// StateStopping indicates the supervisor is taking the child down
	StateStopping
	// StateExited indicates the child exited with code 0
	StateExited
	// StateCrashed indicates the child exited non-zero, failed to spawn, or
	// was terminated outside a requested stop
	StateCrashed
)

// ProcState string constants
const (
	stateUnknownStr  = "unknown"
	stateStartingStr = "starting"
	stateRunningStr  = "running"
	stateStoppingStr = "stopping"
	stateExitedStr   = "exited"
	stateCrashedStr  = "crashed"
)

// String returns the string representation of the state
func (s ProcState) String() string {
	switch s {
	case StateStarting:
		return stateStartingStr
	case StateRunning:
		return stateRunningStr
	case StateStopping:
		return stateStoppingStr
	case StateExited:
		return stateExitedStr
	case StateCrashed:
		return stateCrashedStr
	default:
		return stateUnknownStr
	}
}

// StateRecordSize is the exact size of the binary state record in bytes
const StateRecordSize = 32

// State record layout offsets
const (
	offsetStateSec      = 0  // bytes 0-7: unix seconds of the transition (big-endian uint64)
	offsetStateNano     = 8  // bytes 8-11: nanoseconds (big-endian uint32)
	offsetStatePID      = 12 // bytes 12-15: PID
	offsetStateTID      = 16 // bytes 16-19: primary thread ID
	offsetStateExitCode = 20 // bytes 20-23: last exit code
	offsetStateState    = 24 // byte 24: ProcState
	offsetStateFlags    = 25 // byte 25: flags
	offsetStateReserved = 26 // bytes 26-31: reserved, zero
)

// State record flag bits
const (
	stateFlagHasExit = 1 << 0 // exit-code field is meaningful
)

// StateRecord is the fixed-size snapshot of a supervised process that the
// Supervisor persists on every transition. External tooling can read it
// without linking this package; the layout is stable.
type StateRecord struct {
	// Since is when the process entered its current state
	Since time.Time
	// PID is the child's process ID (0 if not running)
	PID uint32
	// TID is the child's primary thread ID (0 if not running)
	TID uint32
	// ExitCode is the child's last exit code; only meaningful when HasExit
	ExitCode uint32
	// HasExit indicates ExitCode was observed for the current state
	HasExit bool
	// State is the supervisor state
	State ProcState
}

// encodeStateRecord serializes rec into its fixed big-endian layout
func encodeStateRecord(rec StateRecord) [StateRecordSize]byte {
	var out [StateRecordSize]byte

	binary.BigEndian.PutUint64(out[offsetStateSec:offsetStateNano], uint64(rec.Since.Unix()))
	binary.BigEndian.PutUint32(out[offsetStateNano:offsetStatePID], uint32(rec.Since.Nanosecond()))
	binary.BigEndian.PutUint32(out[offsetStatePID:offsetStateTID], rec.PID)
	binary.BigEndian.PutUint32(out[offsetStateTID:offsetStateExitCode], rec.TID)
	binary.BigEndian.PutUint32(out[offsetStateExitCode:offsetStateState], rec.ExitCode)
	out[offsetStateState] = byte(rec.State)
	if rec.HasExit {
		out[offsetStateFlags] |= stateFlagHasExit
	}
	return out
}

// decodeStateRecord decodes a StateRecordSize-byte state record. Unknown
// state bytes decode to StateUnknown rather than failing; the only error is
// a size mismatch.
func decodeStateRecord(data []byte) (StateRecord, error) {
	if len(data) != StateRecordSize {
		return StateRecord{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecode, StateRecordSize, len(data))
	}

	var rec StateRecord

	sec := int64(binary.BigEndian.Uint64(data[offsetStateSec:offsetStateNano]))
	nano := int64(binary.BigEndian.Uint32(data[offsetStateNano:offsetStatePID]))
	// Sanity check: non-negative and before year 10000
	if sec > 0 && sec < 253402300800 {
		rec.Since = time.Unix(sec, nano)
	}

	rec.PID = binary.BigEndian.Uint32(data[offsetStatePID:offsetStateTID])
	rec.TID = binary.BigEndian.Uint32(data[offsetStateTID:offsetStateExitCode])
	rec.ExitCode = binary.BigEndian.Uint32(data[offsetStateExitCode:offsetStateState])
	rec.HasExit = data[offsetStateFlags]&stateFlagHasExit != 0

	if s := ProcState(data[offsetStateState]); s >= StateUnknown && s <= StateCrashed {
		rec.State = s
	} else {
		rec.State = StateUnknown
	}
	return rec, nil
}

// WriteStateFile atomically persists rec at path. The write goes through a
// temporary file and a rename, so readers never observe a torn record.
func WriteStateFile(path string, rec StateRecord) error {
	buf := encodeStateRecord(rec)
	if err := renameio.WriteFile(path, buf[:], StateFileMode); err != nil {
		return &OpError{Op: OpState, Path: path, Err: err}
	}
	return nil
}

// ReadStateFile reads and decodes the state record at path
func ReadStateFile(path string) (StateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StateRecord{}, &OpError{Op: OpState, Path: path, Err: err}
	}

	rec, err := decodeStateRecord(data)
	if err != nil {
		return StateRecord{}, &OpError{Op: OpState, Path: path, Err: err}
	}
	return rec, nil
}
