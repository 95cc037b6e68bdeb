package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockoutStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_UnknownAddressIsZero", func(t *testing.T) {
		store := NewMemoryLockoutStore()
		state, err := store.Get(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.Zero(t, state.Attempts)
		assert.False(t, state.IsLocked(repoStart))
	})

	t.Run("Success_RecordFailureGetDelete", func(t *testing.T) {
		store := NewMemoryLockoutStore()
		state, err := store.RecordFailure(ctx, "203.0.113.7", repoStart, 1, 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, state.Attempts)

		got, err := store.Get(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Attempts)
		assert.True(t, got.IsLocked(repoStart))

		*got.LockedUntil = repoStart
		again, err := store.Get(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, again.IsLocked(repoStart))

		require.NoError(t, store.Delete(ctx, "203.0.113.7"))
		got, err = store.Get(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.Zero(t, got.Attempts)
	})

	t.Run("Success_RecordFailureConcurrent", func(t *testing.T) {
		store := NewMemoryLockoutStore()

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.RecordFailure(ctx, "203.0.113.7", repoStart, 5, 15*time.Minute)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		state, err := store.Get(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.Equal(t, 50, state.Attempts)
		assert.True(t, state.IsLocked(repoStart))
	})

	t.Run("Success_Prune", func(t *testing.T) {
		store := NewMemoryLockoutStore()

		record := func(address string, now time.Time, maxAttempts int) {
			_, err := store.RecordFailure(ctx, address, now, maxAttempts, 15*time.Minute)
			require.NoError(t, err)
		}
		record("locked", repoStart.Add(50*time.Minute), 1)
		record("elapsed", repoStart, 1)
		record("recent", repoStart.Add(55*time.Minute), 5)
		record("old", repoStart, 5)

		removed, err := store.Prune(ctx, repoStart.Add(time.Hour), 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		state, err := store.Get(ctx, "locked")
		require.NoError(t, err)
		assert.Equal(t, 1, state.Attempts)
		state, err = store.Get(ctx, "recent")
		require.NoError(t, err)
		assert.Equal(t, 1, state.Attempts)
	})
}
