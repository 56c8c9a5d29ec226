package winproc

import (
	"time"

	"golang.org/x/sys/windows"
)

// Thread exclusively owns one kernel thread handle and its cached thread id.
// The zero value is an empty Thread that owns nothing; every operation on an
// empty Thread returns its documented failure value without side effects.
//
// Ownership is move-only: use Release to transfer the handle out, Swap to
// exchange state between instances, and Reset to close. Thread must not be
// copied by value once populated; two copies would both claim closing rights
// over the same kernel object.
type Thread struct {
	handle windows.Handle
	id     uint32
}

// NewThread adopts an externally obtained thread handle. If id is 0 it is
// resolved from the handle; if resolution fails the handle is closed and an
// empty Thread is returned. Adoption is all-or-nothing: the result is either
// valid with a known id, or empty.
func NewThread(handle windows.Handle, id uint32) *Thread {
	t := &Thread{}
	t.ResetHandle(handle, id)
	return t
}

// CreateThread spawns a kernel thread running the routine at entry with the
// given opaque parameter. The entry address must be a native callable
// routine, for example one produced by windows.NewCallback. On success the
// returned Thread is valid and outID, if non-nil, receives the new thread
// id; on failure the returned Thread is empty. CreateThread never panics.
//
// A thread started this way runs outside the Go scheduler. Flags may include
// CREATE_SUSPENDED to start the thread suspended.
func CreateThread(attrs *windows.SecurityAttributes, stackSize uintptr, entry uintptr, param uintptr, flags uint32, outID *uint32) *Thread {
	var tid uint32
	h := createThread(attrs, stackSize, entry, param, flags, &tid)
	if !isValidHandle(h) {
		return &Thread{}
	}

	if outID != nil {
		*outID = tid
	}
	return NewThread(h, tid)
}

// setZero clears both fields without closing anything
func (t *Thread) setZero() {
	t.handle = 0
	t.id = 0
}

// initialize enforces the adoption invariant: a valid handle must have a
// known id. A handle whose id cannot be resolved is closed and the Thread
// reverts to empty.
func (t *Thread) initialize() {
	if !isValidHandle(t.handle) {
		t.setZero()
		return
	}
	if t.id == 0 {
		t.id = getThreadID(t.handle)
	}
	if t.id == 0 {
		t.Reset()
	}
}

// Valid reports whether the Thread owns an open thread handle
func (t *Thread) Valid() bool {
	return isValidHandle(t.handle)
}

// Joinable reports whether a synchronization target exists; it is an alias
// for Valid.
func (t *Thread) Joinable() bool {
	return t.Valid()
}

// ID returns the cached thread identifier, or 0 if the Thread is empty
func (t *Thread) ID() uint32 {
	return t.id
}

// Handle returns the raw thread handle for interop. Ownership is not
// transferred; the caller must not close it.
func (t *Thread) Handle() windows.Handle {
	return t.handle
}

// Release transfers the raw handle to the caller and clears the Thread
// without closing anything. The caller now owns the handle and must close it.
func (t *Thread) Release() windows.Handle {
	h := t.handle
	t.setZero()
	return h
}

// Reset closes the owned handle, if any, and clears state. Calling Reset on
// an empty Thread is a no-op, so a double Reset never double-closes.
func (t *Thread) Reset() {
	closeHandle(t.handle)
	t.setZero()
}

// ResetHandle is Reset followed by adoption of a new handle/id pair, with
// the same resolve-or-discard rule as NewThread.
func (t *Thread) ResetHandle(handle windows.Handle, id uint32) {
	t.Reset()
	t.handle = handle
	t.id = id
	t.initialize()
}

// Swap exchanges the held state of two Threads in constant time
func (t *Thread) Swap(other *Thread) {
	t.handle, other.handle = other.handle, t.handle
	t.id, other.id = other.id, t.id
}

// Join blocks until the owned thread terminates, then closes the handle.
// No-op on an empty Thread.
func (t *Thread) Join() {
	if t.Valid() {
		_, _ = windows.WaitForSingleObject(t.handle, Infinite)
		t.Reset()
	}
}

// Detach drops the local handle without affecting the target thread's
// execution; the OS keeps the thread alive. After Detach the Thread is empty
// and the thread is no longer observable through it.
func (t *Thread) Detach() {
	t.Reset()
}

// Wait blocks indefinitely until the thread terminates. Returns WaitFailed
// immediately if the Thread is empty.
func (t *Thread) Wait() WaitStatus {
	if !t.Valid() {
		return WaitFailed
	}
	return waitOn(t.handle, Infinite)
}

// WaitFor blocks up to timeout for the thread to terminate. Timeouts at or
// above the Infinite sentinel are clamped down so they are never
// misinterpreted as an unbounded wait. Returns WaitFailed immediately if the
// Thread is empty.
func (t *Thread) WaitFor(timeout time.Duration) WaitStatus {
	if !t.Valid() {
		return WaitFailed
	}
	return waitOn(t.handle, clampWaitMillis(timeout))
}

// TryExitCode returns the thread's exit code if it has terminated. The
// second return is false while the thread is running, if the Thread is
// empty, or if the probe fails. A thread that really exited with code
// StillActive is reported as not terminated; the platform makes the two
// indistinguishable.
func (t *Thread) TryExitCode() (uint32, bool) {
	if !t.Valid() {
		return 0, false
	}

	var code uint32
	if !getExitCodeThread(t.handle, &code) || code == StillActive {
		return 0, false
	}
	return code, true
}

// IsRunning reports whether the thread is valid and has not terminated
func (t *Thread) IsRunning() bool {
	if !t.Valid() {
		return false
	}

	var code uint32
	return getExitCodeThread(t.handle, &code) && code == StillActive
}

// Terminate forcibly stops the thread with the given exit code. This is
// unsafe by nature: the target's stack is not unwound and any lock it holds
// stays held. Returns false if the Thread is empty or the call fails.
func (t *Thread) Terminate(code uint32) bool {
	if !t.Valid() {
		return false
	}
	return terminateThread(t.handle, code)
}

// Suspend increments the thread's suspend counter. The thread only runs
// while the counter is zero.
func (t *Thread) Suspend() bool {
	if !t.Valid() {
		return false
	}
	_, err := windows.SuspendThread(t.handle)
	return err == nil
}

// Resume decrements the thread's suspend counter
func (t *Thread) Resume() bool {
	if !t.Valid() {
		return false
	}
	_, err := windows.ResumeThread(t.handle)
	return err == nil
}

// SetPriority adjusts the thread's scheduling priority relative to its
// process's priority class; use the ThreadPriority* constants.
func (t *Thread) SetPriority(priority int32) bool {
	if !t.Valid() {
		return false
	}
	return setThreadPriority(t.handle, priority)
}

// Priority returns the thread's scheduling priority, or 0 on failure.
// A real priority of ThreadPriorityNormal (0) is indistinguishable from the
// failure return.
func (t *Thread) Priority() int32 {
	if t.Valid() {
		if p := getThreadPriority(t.handle); p != threadPriorityErrorReturn {
			return p
		}
	}
	return 0
}

// SetAffinity restricts the thread to the logical processors set in mask.
// Returns the previous affinity mask, or 0 on failure or if the Thread is
// empty.
func (t *Thread) SetAffinity(mask uintptr) uintptr {
	if !t.Valid() {
		return 0
	}
	return setThreadAffinityMask(t.handle, mask)
}
