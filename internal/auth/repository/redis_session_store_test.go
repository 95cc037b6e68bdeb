package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/database"
)

// newRedisStore connects to REDIS_TEST_ADDR and skips the test when no server is available.
func newRedisStore(t *testing.T, idleTimeout time.Duration) *RedisSessionStore {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := database.ConnectRedis(context.Background(), database.RedisConfig{
		Addr:    addr,
		Timeout: time.Second,
	})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			_ = client.Del(ctx, keys...).Err()
		}
	})

	return NewRedisSessionStore(client, idleTimeout, prefix)
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, time.Minute)

	session := newTestSession(uuid.New(), time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Roles, got.Roles)
	assert.True(t, session.LastActivityAt.Equal(got.LastActivityAt))

	got.IPAddress = "198.51.100.4"
	require.NoError(t, store.Touch(ctx, got))
	touched, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.4", touched.IPAddress)

	require.NoError(t, store.Delete(ctx, session.ID))
	require.NoError(t, store.Delete(ctx, session.ID))

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.Touch(ctx, session), domain.ErrSessionNotFound)
}

func TestRedisSessionStore_DeleteByUser(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, time.Minute)
	owner := uuid.New()

	require.NoError(t, store.Create(ctx, newTestSession(owner, time.Now().UTC())))
	require.NoError(t, store.Create(ctx, newTestSession(owner, time.Now().UTC())))
	other := newTestSession(uuid.New(), time.Now().UTC())
	require.NoError(t, store.Create(ctx, other))

	removed, err := store.DeleteByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.Get(ctx, other.ID)
	assert.NoError(t, err)
}

func TestRedisSessionStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, time.Minute)
	now := time.Now().UTC()

	live := newTestSession(uuid.New(), now)
	tokenExpired := newTestSession(uuid.New(), now)
	tokenExpired.ExpiresAt = now.Add(-time.Second)
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, tokenExpired))

	removed, err := store.DeleteExpired(ctx, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
	_, err = store.Get(ctx, tokenExpired.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
