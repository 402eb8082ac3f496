package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "baybook/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReleaser struct {
	mu      sync.Mutex
	calls   int
	results []releaseResult
	started chan struct{}
	proceed chan struct{}
}

type releaseResult struct {
	released int
	err      error
}

func (f *fakeReleaser) ReleaseExpired(ctx context.Context) (int, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.proceed != nil {
		<-f.proceed
	}

	if n <= len(f.results) {
		r := f.results[n-1]
		return r.released, r.err
	}
	return 0, nil
}

func (f *fakeReleaser) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCleanupSweepsOnce(t *testing.T) {
	releaser := &fakeReleaser{results: []releaseResult{{released: 2}}}
	h := NewCleanupHandler(releaser)

	require.NoError(t, h.ProcessTask(context.Background(), NewCleanupTask()))
	assert.Equal(t, 1, releaser.callCount())
}

func TestCleanupSkipsOverlappingSweep(t *testing.T) {
	releaser := &fakeReleaser{
		started: make(chan struct{}, 1),
		proceed: make(chan struct{}),
	}
	h := NewCleanupHandler(releaser)

	done := make(chan error, 1)
	go func() { done <- h.ProcessTask(context.Background(), NewCleanupTask()) }()
	<-releaser.started

	// Second tick lands while the first sweep is still inside storage: it
	// must return without calling the releaser.
	require.NoError(t, h.ProcessTask(context.Background(), NewCleanupTask()))
	assert.Equal(t, 1, releaser.callCount())

	close(releaser.proceed)
	require.NoError(t, <-done)

	// Once the first sweep finishes the flag is clear again.
	require.NoError(t, h.ProcessTask(context.Background(), NewCleanupTask()))
	assert.Equal(t, 2, releaser.callCount())
}

func TestCleanupRetriesOnceOnTransientError(t *testing.T) {
	releaser := &fakeReleaser{results: []releaseResult{
		{err: context.DeadlineExceeded},
		{released: 1},
	}}
	h := NewCleanupHandler(releaser)
	h.backoff = time.Millisecond

	require.NoError(t, h.ProcessTask(context.Background(), NewCleanupTask()))
	assert.Equal(t, 2, releaser.callCount())
}

func TestCleanupRetriesTaggedTransientError(t *testing.T) {
	releaser := &fakeReleaser{results: []releaseResult{
		{err: apperrors.NewAppError(apperrors.ErrStorageTransient, "failed to scan stale bookings", nil)},
		{released: 1},
	}}
	h := NewCleanupHandler(releaser)
	h.backoff = time.Millisecond

	require.NoError(t, h.ProcessTask(context.Background(), NewCleanupTask()))
	assert.Equal(t, 2, releaser.callCount())
}

func TestCleanupDoesNotRetryPersistentTransientError(t *testing.T) {
	releaser := &fakeReleaser{results: []releaseResult{
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
	}}
	h := NewCleanupHandler(releaser)
	h.backoff = time.Millisecond

	err := h.ProcessTask(context.Background(), NewCleanupTask())
	require.Error(t, err)
	// One retry only, not a loop.
	assert.Equal(t, 2, releaser.callCount())
}

func TestCleanupSafetyTimeoutUnblocksNextTick(t *testing.T) {
	h := NewCleanupHandler(&fakeReleaser{})
	// Simulate a wedged sweep that never cleared its flag.
	h.running.Store(true)
	guardFired := atomic.Bool{}
	guard := time.AfterFunc(10*time.Millisecond, func() {
		h.running.Store(false)
		guardFired.Store(true)
	})
	defer guard.Stop()

	assert.Eventually(t, func() bool { return guardFired.Load() && !h.running.Load() },
		time.Second, 5*time.Millisecond)

	releaser := &fakeReleaser{}
	h.bookingService = releaser
	require.NoError(t, h.ProcessTask(context.Background(), NewCleanupTask()))
	assert.Equal(t, 1, releaser.callCount())
}
