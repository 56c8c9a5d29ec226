package winproc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager()
	assert.Equal(t, 10, m.Concurrency)
	assert.Zero(t, m.Timeout)

	m = NewManager(WithConcurrency(3), WithTimeout(time.Second))
	assert.Equal(t, 3, m.Concurrency)
	assert.Equal(t, time.Second, m.Timeout)

	// Non-positive concurrency is clamped
	m = NewManager(WithConcurrency(0))
	assert.Equal(t, 1, m.Concurrency)
}

func TestManagerEmpty(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.WaitAll(context.Background()))
	require.NoError(t, m.TerminateAll(context.Background(), 1))

	codes, err := m.ExitCodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestManagerWaitAll(t *testing.T) {
	procs := []*Process{
		spawnCmd(t, `exit 11`),
		spawnCmd(t, `exit 12`),
		spawnCmd(t, `exit 13`),
	}
	defer func() {
		for _, p := range procs {
			p.Reset()
		}
	}()

	m := NewManager(WithConcurrency(2))
	require.NoError(t, m.WaitAll(context.Background(), procs...))

	codes, err := m.ExitCodes(context.Background(), procs...)
	require.NoError(t, err)
	require.Len(t, codes, 3)

	want := map[uint32]uint32{
		procs[0].PID(): 11,
		procs[1].PID(): 12,
		procs[2].PID(): 13,
	}
	assert.Equal(t, want, codes)
}

func TestManagerTerminateAll(t *testing.T) {
	procs := []*Process{
		spawnCmd(t, sleepCmd(8)),
		spawnCmd(t, sleepCmd(8)),
	}
	defer func() {
		for _, p := range procs {
			p.Reset()
		}
	}()

	m := NewManager()
	require.NoError(t, m.TerminateAll(context.Background(), 77, procs...))
	require.NoError(t, m.WaitAll(context.Background(), procs...))

	for _, p := range procs {
		code, ok := p.TryExitCode()
		assert.True(t, ok)
		assert.Equal(t, uint32(77), code)
	}
}

func TestManagerWaitAllTimeout(t *testing.T) {
	p := spawnCmd(t, sleepCmd(8))
	defer p.Reset()

	m := NewManager(WithTimeout(100 * time.Millisecond))
	err := m.WaitAll(context.Background(), p)
	require.Error(t, err)

	var merr *MultiError
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 1)
	assert.ErrorIs(t, merr.Errors[0], context.DeadlineExceeded)

	// The child is untouched by the failed wait
	assert.True(t, p.IsRunning())
	assert.True(t, p.Terminate(0))
	assert.Equal(t, WaitSignaled, p.Wait())
}

func TestManagerExitCodesSkipsRunning(t *testing.T) {
	running := spawnCmd(t, sleepCmd(8))
	exited := spawnCmd(t, `exit 42`)
	defer running.Reset()
	defer exited.Reset()

	require.Equal(t, WaitSignaled, exited.Wait())

	m := NewManager()
	codes, err := m.ExitCodes(context.Background(), running, exited)
	require.NoError(t, err)

	require.Len(t, codes, 1)
	assert.Equal(t, uint32(42), codes[exited.PID()])

	require.True(t, running.Terminate(0))
	require.Equal(t, WaitSignaled, running.Wait())
}

func TestManagerWaitAllCancel(t *testing.T) {
	p := spawnCmd(t, sleepCmd(8))
	defer p.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := NewManager().WaitAll(ctx, p)
	require.Error(t, err)

	var merr *MultiError
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 1)
	assert.ErrorIs(t, merr.Errors[0], context.Canceled)

	require.True(t, p.Terminate(0))
	require.Equal(t, WaitSignaled, p.Wait())
}
