package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, instrument.NewNoop()), mr
}

func TestCache_RoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	mr.SetTime(now)

	rec := entity.Record{Email: "a@example.com", Code: "123456", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute), Attempts: 0}
	require.NoError(t, c.Upsert(ctx, rec))

	got, err := c.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, &rec, got)

	ttl := mr.TTL(key("a@example.com"))
	assert.InDelta(t, (10*time.Minute + Grace).Seconds(), ttl.Seconds(), 2)

	n, err := c.IncrementAttempts(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// re-issuing resets attempts
	rec.Code = "654321"
	require.NoError(t, c.Upsert(ctx, rec))
	got, err = c.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "654321", got.Code)
	assert.Zero(t, got.Attempts)

	require.NoError(t, c.Delete(ctx, "a@example.com"))
	require.NoError(t, c.Delete(ctx, "a@example.com"))
	_, err = c.Get(ctx, "a@example.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestCache_IncrementMissing(t *testing.T) {
	c, mr := newCache(t)

	_, err := c.IncrementAttempts(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.False(t, mr.Exists(key("nobody@example.com")))
}

func TestCache_ExpiredStillReadable(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, c.Upsert(ctx, entity.Record{Email: "a@example.com", Code: "1", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	mr.FastForward(2 * time.Minute)
	got, err := c.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, got.ExpiredAt(now.Add(2*time.Minute)))

	mr.FastForward(Grace)
	_, err = c.Get(ctx, "a@example.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	n, err := c.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_Corrupt(t *testing.T) {
	c, mr := newCache(t)

	mr.HSet(key("bad@example.com"), fieldCode, "1", fieldAttempts, "x")
	_, err := c.Get(context.Background(), "bad@example.com")
	assert.ErrorIs(t, err, errCorruptRecord)
}
