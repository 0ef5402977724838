package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPollerRunsImmediatelyAndOnInterval(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	p := New("test", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("ignored")
	}, zerolog.Nop())

	p.Start(context.Background())
	p.Start(context.Background())
	require.True(t, p.Running())

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	require.False(t, p.Running())

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, stopped, calls.Load())
}

func TestPollerStopWaitsForTick(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})

	var finished atomic.Bool

	p := New("slow", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished.Store(true)

		return ctx.Err()
	}, zerolog.Nop())

	p.Start(context.Background())
	<-started
	p.Stop()

	require.True(t, finished.Load())
}

func TestPollerRun(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	p := New("run", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	require.False(t, p.Running())
}
