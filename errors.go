package winproc

import (
	"errors"
	"fmt"
)

// Common errors returned by winproc operations
var (
	// ErrDecode indicates a binary record could not be decoded
	ErrDecode = errors.New("winproc: record decode")

	// ErrSpawn indicates the child process could not be created
	ErrSpawn = errors.New("winproc: spawn failed")

	// ErrTooManyRestarts indicates the supervisor hit its restart limit
	ErrTooManyRestarts = errors.New("winproc: restart limit reached")

	// ErrWaitFailed indicates a kernel wait could not be performed, usually
	// because the wrapper was empty
	ErrWaitFailed = errors.New("winproc: wait failed")

	// ErrTerminateFailed indicates forced termination was rejected
	ErrTerminateFailed = errors.New("winproc: terminate failed")
)

// OpError represents an error from a winproc operation
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// Path is the command line or file path involved, if any
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("winproc %s: %v", e.Op.String(), e.Err)
	}
	return fmt.Sprintf("winproc %s %q: %v", e.Op.String(), e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}
