package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func TestPacerFirstWaitReturnsImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	pacer := NewPacer(600*time.Millisecond, clock)

	var slept []time.Duration
	pacer.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	require.NoError(t, pacer.Wait(context.Background()))
	assert.Empty(t, slept)
}

func TestPacerEnforcesMinimumGap(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	pacer := NewPacer(600*time.Millisecond, clock)

	var slept []time.Duration
	pacer.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock.now = clock.now.Add(d)
		return nil
	}

	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))
	require.Equal(t, []time.Duration{600 * time.Millisecond}, slept)

	// A caller that already spent part of the interval only sleeps the rest.
	clock.now = clock.now.Add(200 * time.Millisecond)
	require.NoError(t, pacer.Wait(context.Background()))
	require.Equal(t, []time.Duration{600 * time.Millisecond, 400 * time.Millisecond}, slept)
}

func TestPacerSkipsSleepWhenIntervalAlreadyElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	pacer := NewPacer(600*time.Millisecond, clock)

	var slept int
	pacer.sleep = func(_ context.Context, _ time.Duration) error {
		slept++
		return nil
	}

	require.NoError(t, pacer.Wait(context.Background()))
	clock.now = clock.now.Add(time.Second)
	require.NoError(t, pacer.Wait(context.Background()))
	assert.Zero(t, slept)
}

func TestPacerPropagatesCancellation(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	pacer := NewPacer(600*time.Millisecond, clock)
	pacer.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	require.NoError(t, pacer.Wait(context.Background()))
	err := pacer.Wait(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}
