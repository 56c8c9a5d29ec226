package winproc

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// isValidHandle reports whether h is a real, open handle. The platform uses
// two distinct sentinels for "no handle" (a null handle and
// INVALID_HANDLE_VALUE), inconsistently across APIs; both are rejected here.
func isValidHandle(h windows.Handle) bool {
	return h != 0 && h != windows.InvalidHandle
}

// closeHandle closes h if it is valid; closing a sentinel is a no-op
func closeHandle(h windows.Handle) {
	if isValidHandle(h) {
		_ = windows.CloseHandle(h)
	}
}

// waitOn blocks on h for up to ms milliseconds and maps the platform result
// into the WaitStatus vocabulary
func waitOn(h windows.Handle, ms uint32) WaitStatus {
	event, err := windows.WaitForSingleObject(h, ms)
	if err != nil {
		return WaitFailed
	}
	return WaitStatus(event)
}

// clampWaitMillis converts a duration to platform milliseconds. Durations at
// or above the Infinite sentinel are clamped to Infinite-1 so a finite
// request is never misread as "wait forever"; negative durations wait 0 ms.
func clampWaitMillis(d time.Duration) uint32 {
	if d < 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms >= int64(Infinite) {
		return Infinite - 1
	}
	return uint32(ms)
}

// utf8ToWide converts a UTF-8 string to the platform's native wide encoding.
// An empty input yields a nil slice (which creation calls translate to "use
// default"). The conversion includes the source terminator so the platform
// appends one, then strips it, keeping round-trips terminator transparent.
// Returns nil if the conversion fails.
func utf8ToWide(s string) []uint16 {
	if s == "" {
		return nil
	}

	src := append([]byte(s), 0)
	n, err := windows.MultiByteToWideChar(windows.CP_UTF8, 0, &src[0], int32(len(src)), nil, 0)
	if err != nil || n <= 0 {
		return nil
	}

	out := make([]uint16, n)
	if _, err := windows.MultiByteToWideChar(windows.CP_UTF8, 0, &src[0], int32(len(src)), &out[0], n); err != nil {
		return nil
	}

	if out[len(out)-1] == 0 {
		out = out[:len(out)-1]
	}
	return out
}

// widePtr returns a pointer to the first element of w, or nil for an empty
// slice. The pointed-to buffer stays mutable, which CreateProcess requires
// for its command-line argument.
func widePtr(w []uint16) *uint16 {
	if len(w) == 0 {
		return nil
	}
	return &w[0]
}

// StartupInfo returns a size-initialized startup-info descriptor for the
// process creation calls.
func StartupInfo() *windows.StartupInfo {
	si := &windows.StartupInfo{}
	si.Cb = uint32(unsafe.Sizeof(*si))
	return si
}

// HardwareConcurrency returns the number of logical processors visible to
// the calling process.
func HardwareConcurrency() int {
	var si systemInfo
	getSystemInfo(&si)
	return int(si.numberOfProcessors)
}
