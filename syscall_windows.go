package winproc

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// kernel32 entry points not exported by golang.org/x/sys/windows
var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procCreateThread          = kernel32.NewProc("CreateThread")
	procGetThreadId           = kernel32.NewProc("GetThreadId")
	procGetExitCodeThread     = kernel32.NewProc("GetExitCodeThread")
	procTerminateThread       = kernel32.NewProc("TerminateThread")
	procSetThreadPriority     = kernel32.NewProc("SetThreadPriority")
	procGetThreadPriority     = kernel32.NewProc("GetThreadPriority")
	procSetThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	procGetSystemInfo         = kernel32.NewProc("GetSystemInfo")
)

// GetThreadPriority failure return (THREAD_PRIORITY_ERROR_RETURN, MAXLONG)
const threadPriorityErrorReturn = 0x7FFFFFFF

func createThread(attrs *windows.SecurityAttributes, stackSize uintptr, entry uintptr, param uintptr, flags uint32, id *uint32) windows.Handle {
	h, _, _ := procCreateThread.Call(
		uintptr(unsafe.Pointer(attrs)),
		stackSize,
		entry,
		param,
		uintptr(flags),
		uintptr(unsafe.Pointer(id)),
	)
	return windows.Handle(h)
}

func getThreadID(h windows.Handle) uint32 {
	r, _, _ := procGetThreadId.Call(uintptr(h))
	return uint32(r)
}

func getExitCodeThread(h windows.Handle, code *uint32) bool {
	r, _, _ := procGetExitCodeThread.Call(uintptr(h), uintptr(unsafe.Pointer(code)))
	return r != 0
}

func terminateThread(h windows.Handle, code uint32) bool {
	r, _, _ := procTerminateThread.Call(uintptr(h), uintptr(code))
	return r != 0
}

func setThreadPriority(h windows.Handle, priority int32) bool {
	r, _, _ := procSetThreadPriority.Call(uintptr(h), uintptr(priority))
	return r != 0
}

func getThreadPriority(h windows.Handle) int32 {
	r, _, _ := procGetThreadPriority.Call(uintptr(h))
	return int32(r)
}

func setThreadAffinityMask(h windows.Handle, mask uintptr) uintptr {
	r, _, _ := procSetThreadAffinityMask.Call(uintptr(h), mask)
	return r
}

// systemInfo mirrors the platform's SYSTEM_INFO layout
type systemInfo struct {
	processorArchitecture     uint16
	reserved                  uint16
	pageSize                  uint32
	minimumApplicationAddress uintptr
	maximumApplicationAddress uintptr
	activeProcessorMask       uintptr
	numberOfProcessors        uint32
	processorType             uint32
	allocationGranularity     uint32
	processorLevel            uint16
	processorRevision         uint16
}

func getSystemInfo(si *systemInfo) {
	_, _, _ = procGetSystemInfo.Call(uintptr(unsafe.Pointer(si)))
}
