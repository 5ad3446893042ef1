package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepresentativeLocker_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires and releases", func(t *testing.T) {
		locker := NewInMemoryRepresentativeLocker(50 * time.Millisecond)
		repID := uuid.New()

		release, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)
		release()

		// Lock is free again
		release2, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)
		release2()
	})

	t.Run("contention on same representative times out", func(t *testing.T) {
		locker := NewInMemoryRepresentativeLocker(30 * time.Millisecond)
		repID := uuid.New()

		release, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)
		defer release()

		_, err = locker.Acquire(ctx, repID)
		assert.ErrorIs(t, err, shared.ErrAllocationInProgress)
	})

	t.Run("different representatives do not contend", func(t *testing.T) {
		locker := NewInMemoryRepresentativeLocker(30 * time.Millisecond)

		release1, err := locker.Acquire(ctx, uuid.New())
		require.NoError(t, err)
		defer release1()

		release2, err := locker.Acquire(ctx, uuid.New())
		require.NoError(t, err)
		defer release2()
	})

	t.Run("waiter acquires after release", func(t *testing.T) {
		locker := NewInMemoryRepresentativeLocker(500 * time.Millisecond)
		repID := uuid.New()

		release, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(1)
		acquired := make(chan struct{})
		go func() {
			defer wg.Done()
			release2, err := locker.Acquire(ctx, repID)
			if err == nil {
				close(acquired)
				release2()
			}
		}()

		time.Sleep(30 * time.Millisecond)
		release()
		wg.Wait()

		select {
		case <-acquired:
		default:
			t.Fatal("waiter never acquired the lock")
		}
	})

	t.Run("release is idempotent", func(t *testing.T) {
		locker := NewInMemoryRepresentativeLocker(30 * time.Millisecond)
		repID := uuid.New()

		release, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)

		release()
		release() // Second call must not release someone else's lock

		release2, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)
		defer release2()

		_, err = locker.Acquire(ctx, repID)
		assert.ErrorIs(t, err, shared.ErrAllocationInProgress)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		locker := NewInMemoryRepresentativeLocker(time.Second)
		repID := uuid.New()

		release, err := locker.Acquire(ctx, repID)
		require.NoError(t, err)
		defer release()

		cancelCtx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err = locker.Acquire(cancelCtx, repID)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
