package winproc

import (
	"context"
	"sync"
	"time"
)

// Manager handles operations on multiple processes concurrently. It provides
// bulk operations with configurable concurrency and per-operation timeouts.
//
// Every Process passed to a bulk call must be exclusively available to the
// Manager for the duration of the call; the core types are single-owner and
// unsynchronized.
type Manager struct {
	// Concurrency is the maximum number of concurrent operations
	Concurrency int
	// Timeout is the per-operation timeout; 0 means no timeout
	Timeout time.Duration
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithConcurrency sets the maximum number of concurrent operations
func WithConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		m.Concurrency = n
	}
}

// WithTimeout sets the per-operation timeout
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.Timeout = d
	}
}

// NewManager creates a new Manager with default settings
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		Concurrency: 10,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.Concurrency < 1 {
		m.Concurrency = 1
	}

	return m
}

func (m *Manager) execute(ctx context.Context, procs []*Process, op func(context.Context, *Process) error) error {
	if len(procs) == 0 {
		return nil
	}

	// Semaphore for concurrency control
	sem := make(chan struct{}, m.Concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	merr := &MultiError{}

	for _, proc := range procs {
		wg.Add(1)
		go func(p *Process) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				merr.Add(ctx.Err())
				mu.Unlock()
				return
			}

			opCtx := ctx
			if m.Timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, m.Timeout)
				defer cancel()
			}

			if err := op(opCtx, p); err != nil {
				mu.Lock()
				merr.Add(err)
				mu.Unlock()
			}
		}(proc)
	}

	wg.Wait()

	return merr.Err()
}

// waitProcess blocks until p terminates, the context is done, or the wait
// fails. The kernel wait is re-armed in slices so cancellation stays
// responsive.
func waitProcess(ctx context.Context, p *Process) error {
	for {
		switch p.WaitFor(waitSlice) {
		case WaitSignaled, WaitAbandoned:
			return nil
		case WaitFailed:
			return &OpError{Op: OpWait, Err: ErrWaitFailed}
		case WaitTimeout:
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
}

// WaitAll blocks until every process has terminated, the per-operation
// timeout elapses, or ctx is cancelled. Errors are aggregated per process.
func (m *Manager) WaitAll(ctx context.Context, procs ...*Process) error {
	return m.execute(ctx, procs, waitProcess)
}

// TerminateAll forcibly stops every process with the given exit code
func (m *Manager) TerminateAll(ctx context.Context, code uint32, procs ...*Process) error {
	return m.execute(ctx, procs, func(_ context.Context, p *Process) error {
		if !p.Terminate(code) {
			return &OpError{Op: OpTerminate, Err: ErrTerminateFailed}
		}
		return nil
	})
}

// ExitCodes collects the exit codes of the given processes, keyed by PID.
// Processes that are still running, empty, or terminated with the
// StillActive sentinel are omitted.
func (m *Manager) ExitCodes(ctx context.Context, procs ...*Process) (map[uint32]uint32, error) {
	if len(procs) == 0 {
		return map[uint32]uint32{}, nil
	}

	var mu sync.Mutex
	results := make(map[uint32]uint32)

	err := m.execute(ctx, procs, func(_ context.Context, p *Process) error {
		if code, ok := p.TryExitCode(); ok {
			mu.Lock()
			results[p.PID()] = code
			mu.Unlock()
		}
		return nil
	})

	return results, err
}
