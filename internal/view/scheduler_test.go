package view

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollTaskRunsOnEachTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32
	done := make(chan struct{}, 8)

	task := newPollTask("test", time.Second, clock, func(ctx context.Context) {
		calls.Add(1)
		done <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.loop(ctx)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("fetch did not run after tick")
		}
		// Wait for the fetch goroutine to fully retire before the next tick
		// so it cannot be mistaken for still-in-flight.
		require.Eventually(t, func() bool { return !task.inFlight.Load() },
			5*time.Second, time.Millisecond)
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestPollTaskSkipsTickWhileFetchInFlight(t *testing.T) {
	clock := clockwork.NewFakeClock()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	task := newPollTask("test", time.Second, clock, func(ctx context.Context) {
		calls.Add(1)
		started <- struct{}{}
		<-release
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.loop(ctx)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Second)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first fetch did not start")
	}

	// Ticks arriving while the fetch is outstanding are dropped, not queued:
	// no second fetch may start until the first one returns.
	clock.Advance(time.Second)
	clock.Advance(time.Second)
	select {
	case <-started:
		t.Fatal("second fetch started while the first was still in flight")
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	// Wait for the fetch goroutine to fully retire before the next tick
	// so it cannot be mistaken for still-in-flight.
	require.Eventually(t, func() bool { return !task.inFlight.Load() },
		5*time.Second, time.Millisecond)
	clock.Advance(time.Second)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not resume after previous one finished")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(2))

	// Let any trailing fetches finish instead of blocking on the report
	// channel after the test returns.
	go func() {
		for range started {
		}
	}()
}

func TestPollTaskStopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32

	task := newPollTask("test", time.Second, clock, func(ctx context.Context) {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		task.loop(ctx)
		close(loopDone)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	cancel()

	select {
	case <-loopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not exit on cancel")
	}

	clock.Advance(10 * time.Second)
	assert.Equal(t, int32(0), calls.Load())
}
