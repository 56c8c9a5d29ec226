package winproc

import (
	"io"

	"golang.org/x/sys/windows"
)

// File is a thin owning wrapper over a byte-oriented file handle. It is a
// deliberate pass-through: no buffering, no text decoding, just the raw
// read/write/seek surface with the same validity rules as Thread and
// Process. The zero value is a closed File.
type File struct {
	handle windows.Handle
}

// NewFile adopts an externally obtained file handle
func NewFile(handle windows.Handle) *File {
	return &File{handle: handle}
}

// OpenFile opens path through the native creation call, exposing its full
// parameter surface. On failure a closed File is returned.
func OpenFile(path string, access, shareMode uint32, sec *windows.SecurityAttributes, disposition, attrs uint32, template windows.Handle) *File {
	wide, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return &File{}
	}

	h, err := windows.CreateFile(wide, access, shareMode, sec, disposition, attrs, template)
	if err != nil {
		return &File{}
	}
	return &File{handle: h}
}

// Opened reports whether the File owns an open handle
func (f *File) Opened() bool {
	return isValidHandle(f.handle)
}

// Handle returns the raw file handle without transferring ownership
func (f *File) Handle() windows.Handle {
	return f.handle
}

// Write writes buf to the file. Returns true only if the call succeeded and
// at least one byte was written.
func (f *File) Write(buf []byte) bool {
	var written uint32
	if err := windows.WriteFile(f.handle, buf, &written, nil); err != nil {
		return false
	}
	return written > 0
}

// Read fills buf from the file. Returns true only if the call succeeded and
// at least one byte was read; false at end of file.
func (f *File) Read(buf []byte) bool {
	var read uint32
	if err := windows.ReadFile(f.handle, buf, &read, nil); err != nil {
		return false
	}
	return read > 0
}

// GetCh reads a single byte. The second return is false at end of file or on
// error.
func (f *File) GetCh() (byte, bool) {
	var b [1]byte
	if !f.Read(b[:]) {
		return 0, false
	}
	return b[0], true
}

// Ignore consumes bytes until delim is read, max bytes were consumed, or the
// file ends, whichever comes first. max of 0 consumes nothing.
func (f *File) Ignore(delim byte, max int) {
	for ; max > 0; max-- {
		b, ok := f.GetCh()
		if !ok || b == delim {
			return
		}
	}
}

// FilePointer returns the current file position. The second return is false
// on failure or if the File is closed.
func (f *File) FilePointer() (int64, bool) {
	if !f.Opened() {
		return 0, false
	}
	pos, err := windows.Seek(f.handle, 0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	return pos, true
}

// SetFilePointer moves the file position to the absolute offset pos
func (f *File) SetFilePointer(pos int64) bool {
	if !f.Opened() {
		return false
	}
	_, err := windows.Seek(f.handle, pos, io.SeekStart)
	return err == nil
}

// Size returns the file's size in bytes. The second return is false on
// failure or if the File is closed.
func (f *File) Size() (int64, bool) {
	if !f.Opened() {
		return 0, false
	}

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(f.handle, &info); err != nil {
		return 0, false
	}
	return int64(info.FileSizeHigh)<<32 | int64(info.FileSizeLow), true
}

// Close closes the handle and clears state. The first call on an open File
// returns true; closing an already closed File is a no-op that returns
// false, never a double close.
func (f *File) Close() bool {
	if !f.Opened() {
		return false
	}
	closeHandle(f.handle)
	f.handle = 0
	return true
}
