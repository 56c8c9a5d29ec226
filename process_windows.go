package winproc

import (
	"time"

	"golang.org/x/sys/windows"
)

// Process exclusively owns a process handle together with the handle of its
// primary thread, plus both cached identifiers. The two handles are owned as
// a unit: they become valid together during adoption or not at all, and
// Reset closes them in reverse acquisition order (thread first, then
// process). The zero value is an empty Process.
//
// Validity is defined by the process handle alone; the primary thread handle
// rides along and is only consulted by Suspend and Resume.
//
// Like Thread, Process is move-only: Release hands both handles to the
// caller atomically, Swap exchanges state, and a populated Process must not
// be copied by value.
type Process struct {
	process windows.Handle
	thread  windows.Handle
	pid     uint32
	tid     uint32
}

// NewProcess adopts a process handle / primary thread handle pair. Unknown
// identifiers (0) are resolved from the handles; if either resolution fails,
// both handles are closed and an empty Process is returned. No partially
// initialized state is ever observable.
func NewProcess(process, thread windows.Handle, pid, tid uint32) *Process {
	p := &Process{}
	p.ResetHandles(process, thread, pid, tid)
	return p
}

// NewProcessFromInformation adopts the four-field result of a successful
// process creation call.
func NewProcessFromInformation(pi *windows.ProcessInformation) *Process {
	if pi == nil {
		return &Process{}
	}
	return NewProcess(pi.Process, pi.Thread, pi.ProcessId, pi.ThreadId)
}

// CreateProcess spawns a process through the native creation call. All
// parameters map one to one onto the platform surface: appName and cmdLine
// are wide-string pointers (cmdLine's buffer may be written to by the
// platform and must be mutable), env is an optional environment block (a
// non-nil wide block requires CREATE_UNICODE_ENVIRONMENT in flags), and
// si must be size-initialized (see StartupInfo). On failure an empty Process
// is returned; CreateProcess never panics.
func CreateProcess(appName *uint16, cmdLine *uint16, procSec, threadSec *windows.SecurityAttributes, inheritHandles bool, flags uint32, env *uint16, curDir *uint16, si *windows.StartupInfo) *Process {
	var pi windows.ProcessInformation
	err := windows.CreateProcess(appName, cmdLine, procSec, threadSec, inheritHandles, flags, env, curDir, si, &pi)
	if err != nil {
		return &Process{}
	}
	return NewProcessFromInformation(&pi)
}

// CreateProcessWide is CreateProcess over owned wide-string buffers. Empty
// slices are translated to nil so callers do not need to reason about the
// platform's null-versus-empty convention; cmdLine keeps the mutable-buffer
// requirement by being passed through as its backing array.
func CreateProcessWide(appName, cmdLine []uint16, procSec, threadSec *windows.SecurityAttributes, inheritHandles bool, flags uint32, env *uint16, curDir []uint16, si *windows.StartupInfo) *Process {
	return CreateProcess(widePtr(appName), widePtr(cmdLine), procSec, threadSec, inheritHandles, flags, env, widePtr(curDir), si)
}

// CreateProcessUTF8 bridges UTF-8 text parameters to the platform's native
// wide encoding and delegates to CreateProcessWide. Empty strings become
// "use default" (nil): an empty appName means the executable is taken from
// cmdLine, an empty curDir means the child inherits the current directory.
func CreateProcessUTF8(appName, cmdLine string, procSec, threadSec *windows.SecurityAttributes, inheritHandles bool, flags uint32, env *uint16, curDir string, si *windows.StartupInfo) *Process {
	return CreateProcessWide(utf8ToWide(appName), utf8ToWide(cmdLine), procSec, threadSec, inheritHandles, flags, env, utf8ToWide(curDir), si)
}

// setZero clears all four fields without closing anything
func (p *Process) setZero() {
	p.process = 0
	p.thread = 0
	p.pid = 0
	p.tid = 0
}

// initialize enforces the both-or-neither invariant: both handles must be
// present and both identifiers resolvable, otherwise everything is closed
// and the Process reverts to empty.
func (p *Process) initialize() {
	if !isValidHandle(p.process) || !isValidHandle(p.thread) {
		p.Reset()
		return
	}
	if p.pid == 0 {
		p.pid, _ = windows.GetProcessId(p.process)
	}
	if p.pid == 0 {
		p.Reset()
		return
	}
	if p.tid == 0 {
		p.tid = getThreadID(p.thread)
	}
	if p.tid == 0 {
		p.Reset()
	}
}

// Valid reports whether the Process owns an open process handle
func (p *Process) Valid() bool {
	return isValidHandle(p.process)
}

// Handle returns the raw process handle for interop without transferring
// ownership
func (p *Process) Handle() windows.Handle {
	return p.process
}

// ThreadHandle returns the raw primary thread handle for interop without
// transferring ownership
func (p *Process) ThreadHandle() windows.Handle {
	return p.thread
}

// PID returns the cached process identifier, or 0 if the Process is empty
func (p *Process) PID() uint32 {
	return p.pid
}

// TID returns the cached primary thread identifier, or 0 if the Process is
// empty
func (p *Process) TID() uint32 {
	return p.tid
}

// Release transfers both handles to the caller atomically and clears the
// Process. The caller now owns both and must close them itself.
func (p *Process) Release() (process, thread windows.Handle) {
	process, thread = p.process, p.thread
	p.setZero()
	return process, thread
}

// Reset closes the thread handle, then the process handle (reverse
// acquisition order), and clears all fields. Idempotent.
func (p *Process) Reset() {
	closeHandle(p.thread)
	closeHandle(p.process)
	p.setZero()
}

// ResetHandles is Reset followed by adoption of a new handle quadruple, with
// the same resolve-or-discard rule as NewProcess.
func (p *Process) ResetHandles(process, thread windows.Handle, pid, tid uint32) {
	p.Reset()
	p.process = process
	p.thread = thread
	p.pid = pid
	p.tid = tid
	p.initialize()
}

// Swap exchanges the held state of two Processes in constant time
func (p *Process) Swap(other *Process) {
	p.process, other.process = other.process, p.process
	p.thread, other.thread = other.thread, p.thread
	p.pid, other.pid = other.pid, p.pid
	p.tid, other.tid = other.tid, p.tid
}

// Wait blocks indefinitely until the process terminates. Returns WaitFailed
// immediately if the Process is empty.
func (p *Process) Wait() WaitStatus {
	if !p.Valid() {
		return WaitFailed
	}
	return waitOn(p.process, Infinite)
}

// WaitFor blocks up to timeout for the process to terminate, with the same
// Infinite-sentinel clamp as Thread.WaitFor.
func (p *Process) WaitFor(timeout time.Duration) WaitStatus {
	if !p.Valid() {
		return WaitFailed
	}
	return waitOn(p.process, clampWaitMillis(timeout))
}

// TryExitCode returns the process's exit code if it has terminated. Subject
// to the StillActive ambiguity documented on Thread.TryExitCode.
func (p *Process) TryExitCode() (uint32, bool) {
	if !p.Valid() {
		return 0, false
	}

	var code uint32
	if err := windows.GetExitCodeProcess(p.process, &code); err != nil || code == StillActive {
		return 0, false
	}
	return code, true
}

// IsRunning reports whether the process is valid and has not terminated
func (p *Process) IsRunning() bool {
	if !p.Valid() {
		return false
	}

	var code uint32
	return windows.GetExitCodeProcess(p.process, &code) == nil && code == StillActive
}

// Terminate forcibly stops the process with the given exit code. The target
// gets no chance to clean up. Returns false if the Process is empty or the
// call fails.
func (p *Process) Terminate(code uint32) bool {
	if !p.Valid() {
		return false
	}
	return windows.TerminateProcess(p.process, code) == nil
}

// Suspend increments the suspend counter of the primary thread. This is the
// closest approximation of suspending "the process" this primitive set
// offers; threads the process spawned itself keep running.
func (p *Process) Suspend() bool {
	if !p.Valid() {
		return false
	}
	_, err := windows.SuspendThread(p.thread)
	return err == nil
}

// Resume decrements the suspend counter of the primary thread
func (p *Process) Resume() bool {
	if !p.Valid() {
		return false
	}
	_, err := windows.ResumeThread(p.thread)
	return err == nil
}

// SetPriorityClass sets the process's scheduling priority class (for example
// windows.HIGH_PRIORITY_CLASS)
func (p *Process) SetPriorityClass(class uint32) bool {
	if !p.Valid() {
		return false
	}
	return windows.SetPriorityClass(p.process, class) == nil
}

// PriorityClass returns the process's priority class, or 0 on failure.
// A real class value of 0 cannot occur on current platforms but the failure
// return is shared with the platform's, so 0 stays ambiguous by contract.
func (p *Process) PriorityClass() uint32 {
	if !p.Valid() {
		return 0
	}
	class, err := windows.GetPriorityClass(p.process)
	if err != nil {
		return 0
	}
	return class
}
