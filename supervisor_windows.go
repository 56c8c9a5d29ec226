package winproc

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// Event is a supervisor state transition delivered on the event channel.
// Error-only events (watcher failures) carry StateUnknown.
type Event struct {
	// State is the supervisor state after the transition
	State ProcState
	// PID is the child's process ID, when one exists
	PID uint32
	// ExitCode is the child's exit code; only meaningful when HasExit
	ExitCode uint32
	// HasExit indicates ExitCode was observed
	HasExit bool
	// Err is set for spawn failures, watcher errors, and the restart limit
	Err error
}

// StopFunc stops a running supervisor and blocks until its goroutines have
// exited and the event channel is closed.
type StopFunc func() error

// exit code used when the supervisor itself takes the child down
const stopExitCode = 1

// Supervisor keeps one child process alive: it spawns the configured command
// line, waits for it to exit, and restarts it with exponential backoff. When
// reload paths are configured, a change to any of them restarts the child
// without counting against the restart limit.
//
// A Supervisor is single-use: create, Run, Stop.
type Supervisor struct {
	// CmdLine is the UTF-8 command line of the child
	CmdLine string

	// AppName optionally pins the executable path; empty means the
	// executable is taken from CmdLine
	AppName string

	// Dir is the child's working directory; empty inherits the parent's
	Dir string

	// Flags are extra process creation flags applied to every spawn
	Flags uint32

	// BackoffMin is the minimum delay before a restart attempt
	BackoffMin time.Duration

	// BackoffMax is the maximum delay between restart attempts
	BackoffMax time.Duration

	// MaxRestarts limits restarts (reload restarts excluded); 0 means
	// unlimited
	MaxRestarts int

	// ReloadPaths are files or directories whose changes trigger a restart
	ReloadPaths []string

	// ReloadDebounce coalesces rapid file change events
	ReloadDebounce time.Duration

	// StatePath, when set, is where the binary state record is persisted
	StatePath string

	// EventBuffer is the capacity of the event channel
	EventBuffer int

	// mu protects child and reload below
	mu     sync.Mutex
	child  *Process
	reload bool
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*Supervisor)

// WithAppName pins the executable path instead of deriving it from the
// command line
func WithAppName(name string) SupervisorOption {
	return func(s *Supervisor) {
		s.AppName = name
	}
}

// WithDir sets the child's working directory
func WithDir(dir string) SupervisorOption {
	return func(s *Supervisor) {
		s.Dir = dir
	}
}

// WithCreationFlags sets extra process creation flags for every spawn
func WithCreationFlags(flags uint32) SupervisorOption {
	return func(s *Supervisor) {
		s.Flags = flags
	}
}

// WithBackoff sets the minimum and maximum restart backoff durations
func WithBackoff(minBackoff, maxBackoff time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.BackoffMin = minBackoff
		s.BackoffMax = maxBackoff
	}
}

// WithMaxRestarts limits how many times the child is restarted before the
// supervisor gives up; reload restarts do not count. 0 means unlimited.
func WithMaxRestarts(n int) SupervisorOption {
	return func(s *Supervisor) {
		s.MaxRestarts = n
	}
}

// WithReloadPaths sets files or directories that restart the child when they
// change
func WithReloadPaths(paths ...string) SupervisorOption {
	return func(s *Supervisor) {
		s.ReloadPaths = paths
	}
}

// WithReloadDebounce sets the debounce for reload file events
func WithReloadDebounce(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.ReloadDebounce = d
	}
}

// WithStatePath enables state-record persistence at the given path
func WithStatePath(path string) SupervisorOption {
	return func(s *Supervisor) {
		s.StatePath = path
	}
}

// WithEventBuffer sets the event channel capacity
func WithEventBuffer(n int) SupervisorOption {
	return func(s *Supervisor) {
		if n > 0 {
			s.EventBuffer = n
		}
	}
}

// NewSupervisor creates a Supervisor for the given command line with default
// settings and applies any provided options.
func NewSupervisor(cmdLine string, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		CmdLine:        cmdLine,
		BackoffMin:     DefaultBackoffMin,
		BackoffMax:     DefaultBackoffMax,
		ReloadDebounce: DefaultReloadDebounce,
		EventBuffer:    DefaultEventBuffer,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts supervising. It returns a channel of state transition events
// and a StopFunc that terminates the child, stops all goroutines, and closes
// the channel. The channel is also closed when ctx is cancelled or the
// restart limit is reached.
func (s *Supervisor) Run(ctx context.Context) (<-chan Event, StopFunc, error) {
	if s.CmdLine == "" {
		return nil, nil, &OpError{Op: OpSpawn, Err: ErrSpawn}
	}

	var watcher *fsnotify.Watcher
	if len(s.ReloadPaths) > 0 {
		var err error
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return nil, nil, &OpError{Op: OpWatch, Err: err}
		}
		for _, p := range s.ReloadPaths {
			if err := watcher.Add(p); err != nil {
				_ = watcher.Close()
				return nil, nil, &OpError{Op: OpWatch, Path: p, Err: err}
			}
		}
	}

	ch := make(chan Event, s.EventBuffer)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		if watcher != nil {
			_ = watcher.Close()
		}
		close(ch)
	})

	stop := func() error {
		sctx.Stop(DefaultStopGrace)
		s.killChild()
		return sctx.Wait()
	}

	if watcher != nil {
		s.watchReloadPaths(sctx, watcher, ch)
	}

	sctx.Go(func(sctx *stopper.Context) error {
		s.runLoop(sctx, ch)
		// The run loop can exit on its own (restart limit); stopping here
		// makes sure the watcher goroutine exits and the channel closes.
		sctx.Stop(DefaultStopGrace)
		return nil
	})

	return ch, stop, nil
}

// runLoop is the spawn/wait/restart cycle
func (s *Supervisor) runLoop(sctx *stopper.Context, ch chan<- Event) {
	backoff := s.BackoffMin
	restarts := 0

	for !sctx.IsStopping() {
		s.emit(sctx, ch, Event{State: StateStarting})
		s.writeState(StateRecord{Since: time.Now(), State: StateStarting})

		child := CreateProcessUTF8(s.AppName, s.CmdLine, nil, nil, false, s.Flags, nil, s.Dir, StartupInfo())
		if !child.Valid() {
			s.emit(sctx, ch, Event{State: StateCrashed, Err: &OpError{Op: OpSpawn, Path: s.CmdLine, Err: ErrSpawn}})
			s.writeState(StateRecord{Since: time.Now(), State: StateCrashed})

			restarts++
			if s.MaxRestarts > 0 && restarts >= s.MaxRestarts {
				s.emit(sctx, ch, Event{State: StateCrashed, Err: ErrTooManyRestarts})
				return
			}
			if !s.sleep(sctx, backoff) {
				return
			}
			backoff = growBackoff(backoff, s.BackoffMax)
			continue
		}

		s.setChild(child)
		started := time.Now()
		s.emit(sctx, ch, Event{State: StateRunning, PID: child.PID()})
		s.writeState(StateRecord{Since: started, State: StateRunning, PID: child.PID(), TID: child.TID()})

		// Wait in slices so Stop stays responsive. Wait and Terminate only
		// read the process handle, so the stop path may fire Terminate while
		// this loop is blocked here.
		status := child.WaitFor(waitSlice)
		for status == WaitTimeout && !sctx.IsStopping() {
			status = child.WaitFor(waitSlice)
		}

		if sctx.IsStopping() {
			s.writeState(StateRecord{Since: time.Now(), State: StateStopping, PID: child.PID()})
			s.clearChild()
			return
		}

		code, hasExit := child.TryExitCode()
		pid := child.PID()
		s.clearChild()

		reloaded := s.consumeReload()
		state := StateCrashed
		if reloaded || (hasExit && code == 0) {
			state = StateExited
		}

		s.emit(sctx, ch, Event{State: state, PID: pid, ExitCode: code, HasExit: hasExit})
		s.writeState(StateRecord{Since: time.Now(), State: state, ExitCode: code, HasExit: hasExit})

		if reloaded {
			// Reload restarts are intentional; they reset the backoff and do
			// not count against the restart limit.
			backoff = s.BackoffMin
			continue
		}

		restarts++
		if s.MaxRestarts > 0 && restarts >= s.MaxRestarts {
			s.emit(sctx, ch, Event{State: StateCrashed, Err: ErrTooManyRestarts})
			return
		}

		if time.Since(started) >= stableRunThreshold {
			backoff = s.BackoffMin
		}
		if !s.sleep(sctx, backoff) {
			return
		}
		backoff = growBackoff(backoff, s.BackoffMax)
	}
}

// watchReloadPaths runs the fsnotify loop with debounced reload triggers
func (s *Supervisor) watchReloadPaths(sctx *stopper.Context, watcher *fsnotify.Watcher, ch chan<- Event) {
	sctx.Go(func(sctx *stopper.Context) error {
		var mu sync.Mutex
		var debounce *time.Timer

		sctx.Defer(func() {
			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			mu.Unlock()
		})

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				mu.Lock()
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(s.ReloadDebounce, s.requestReload)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					s.emit(sctx, ch, Event{Err: &OpError{Op: OpWatch, Err: err}})
				}
			}
		}
		return nil
	})
}

// emit delivers an event unless the supervisor is stopping
func (s *Supervisor) emit(sctx *stopper.Context, ch chan<- Event, ev Event) {
	if sctx.IsStopping() {
		return
	}
	select {
	case ch <- ev:
	case <-sctx.Stopping():
	}
}

// sleep waits for d, returning false if stopping was requested first
func (s *Supervisor) sleep(sctx *stopper.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-sctx.Stopping():
		return false
	}
}

// writeState persists the state record when a path is configured
func (s *Supervisor) writeState(rec StateRecord) {
	if s.StatePath != "" {
		_ = WriteStateFile(s.StatePath, rec)
	}
}

func (s *Supervisor) setChild(p *Process) {
	s.mu.Lock()
	s.child = p
	// A reload requested while no child was running is satisfied by this
	// fresh spawn; clearing it here keeps the next natural exit from being
	// labeled a reload restart.
	s.reload = false
	s.mu.Unlock()
}

func (s *Supervisor) clearChild() {
	s.mu.Lock()
	if s.child != nil {
		s.child.Reset()
		s.child = nil
	}
	s.mu.Unlock()
}

// killChild terminates the current child, if any, without clearing it; the
// run loop observes the exit and owns the Reset
func (s *Supervisor) killChild() {
	s.mu.Lock()
	if s.child != nil && s.child.Valid() {
		_ = s.child.Terminate(stopExitCode)
	}
	s.mu.Unlock()
}

// requestReload marks a pending reload and takes the child down so the run
// loop respawns it
func (s *Supervisor) requestReload() {
	s.mu.Lock()
	s.reload = true
	if s.child != nil && s.child.Valid() {
		_ = s.child.Terminate(stopExitCode)
	}
	s.mu.Unlock()
}

// consumeReload reads and clears the pending reload flag
func (s *Supervisor) consumeReload() bool {
	s.mu.Lock()
	r := s.reload
	s.reload = false
	s.mu.Unlock()
	return r
}

// growBackoff doubles d up to the configured cap
func growBackoff(d, maxBackoff time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
