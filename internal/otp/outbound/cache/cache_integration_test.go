//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
)

func TestCache_Redis(t *testing.T) {
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	c := NewCache(client, instrument.NewNoop())
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := entity.Record{Email: "it@example.com", Code: "112233", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)}

	require.NoError(t, c.Upsert(ctx, rec))
	for i := 1; i <= 3; i++ {
		n, err := c.IncrementAttempts(ctx, rec.Email)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	got, err := c.Get(ctx, rec.Email)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, rec.ExpiresAt, got.ExpiresAt)

	require.NoError(t, c.Delete(ctx, rec.Email))
	_, err = c.IncrementAttempts(ctx, rec.Email)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
