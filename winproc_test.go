package winproc

import (
	"errors"
	"testing"
)

func TestWaitStatusString(t *testing.T) {
	cases := map[WaitStatus]string{
		WaitSignaled:     "signaled",
		WaitAbandoned:    "abandoned",
		WaitTimeout:      "timeout",
		WaitFailed:       "failed",
		WaitStatus(0x42): "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("WaitStatus(%#x).String() = %q, want %q", uint32(status), got, want)
		}
	}
}

func TestOperationString(t *testing.T) {
	cases := map[Operation]string{
		OpUnknown:      "unknown",
		OpSpawn:        "spawn",
		OpWait:         "wait",
		OpTerminate:    "terminate",
		OpWatch:        "watch",
		OpState:        "state",
		Operation(100): "unknown",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("Operation(%d).String() = %q, want %q", op, got, want)
		}
	}
}

func TestOpError(t *testing.T) {
	inner := errors.New("boom")

	withPath := &OpError{Op: OpSpawn, Path: `cmd.exe /C exit 1`, Err: inner}
	if !errors.Is(withPath, inner) {
		t.Error("OpError does not unwrap to the inner error")
	}
	if withPath.Error() == "" {
		t.Error("empty error string")
	}

	noPath := &OpError{Op: OpWait, Err: inner}
	if noPath.Error() == "" {
		t.Error("empty error string without path")
	}
}

func TestMultiError(t *testing.T) {
	m := &MultiError{}

	if m.Err() != nil {
		t.Error("empty MultiError should report nil")
	}
	if m.Error() != "no errors" {
		t.Errorf("Error() = %q", m.Error())
	}

	m.Add(nil)
	if m.Err() != nil {
		t.Error("Add(nil) must not record an error")
	}

	first := errors.New("first")
	m.Add(first)
	if m.Err() == nil {
		t.Fatal("expected error after Add")
	}
	if m.Error() != first.Error() {
		t.Errorf("single error summary = %q", m.Error())
	}

	m.Add(errors.New("second"))
	if m.Error() != "2 errors occurred" {
		t.Errorf("multi error summary = %q", m.Error())
	}
}

func TestWaitStatusValues(t *testing.T) {
	// The enum values are part of the contract: they mirror the platform's
	// WAIT_* constants so raw wait results map directly.
	if WaitSignaled != 0 || WaitAbandoned != 0x80 || WaitTimeout != 0x102 || WaitFailed != 0xFFFFFFFF {
		t.Error("WaitStatus values drifted from the platform constants")
	}
}
