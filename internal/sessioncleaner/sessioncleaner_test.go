package sessioncleaner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	calls   atomic.Int64
	removed int64
	err     error
}

func (f *fakeDeleter) DeleteExpired(_ context.Context) (int64, error) {
	f.calls.Add(1)
	return f.removed, f.err
}

func TestRunSweepsPeriodically(t *testing.T) {
	deleter := &fakeDeleter{removed: 2}
	cleaner := New(deleter, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleaner.Run(ctx)

	require.Eventually(t, func() bool {
		return deleter.calls.Load() >= 2
	}, time.Second, time.Millisecond)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	deleter := &fakeDeleter{}
	cleaner := New(deleter, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cleaner.Run(ctx)

	require.Eventually(t, func() bool {
		return deleter.calls.Load() >= 1
	}, time.Second, time.Millisecond)

	cancel()

	// After cancellation the error channel gets closed and the sweep
	// count settles.
	assert.Eventually(t, func() bool {
		settled := deleter.calls.Load()
		time.Sleep(20 * time.Millisecond)
		return deleter.calls.Load() == settled
	}, time.Second, 10*time.Millisecond)
}

func TestListenErrorsReceivesSweepErrors(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("store is down")}
	cleaner := New(deleter, 5*time.Millisecond)

	received := make(chan error, 1)
	cleaner.ListenErrors(func(err error) {
		select {
		case received <- err:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleaner.Run(ctx)

	select {
	case err := <-received:
		assert.EqualError(t, err, "store is down")
	case <-time.After(time.Second):
		t.Fatal("no error surfaced from the sweep loop")
	}
}
