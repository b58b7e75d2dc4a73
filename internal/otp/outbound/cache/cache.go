// Package cache is the redis driver of the OTP store. Each email maps to one
// hash; the key outlives the code by a grace period so an expired code is
// still reported as expired rather than missing.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix = "xceltrack:otp:"

	// Grace keeps the hash around after ExpiresAt.
	Grace = time.Hour

	fieldCode      = "code"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
)

var errCorruptRecord = errors.New("otp cache: corrupt record")

// incrementScript bumps attempts only when the hash still exists.
var incrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

type Cache struct {
	client redis.Cmdable
	ins    instrument.Instrumentation
}

func NewCache(client redis.Cmdable, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func key(email string) string {
	return keyPrefix + email
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("otp.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Upsert replaces the hash inside MULTI/EXEC.
func (c *Cache) Upsert(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := c.startSpan(ctx, "Upsert")
	defer func() { c.endSpan(span, err) }()

	k := key(rec.Email)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			fieldCode, rec.Code,
			fieldCreatedAt, rec.CreatedAt.UnixNano(),
			fieldExpiresAt, rec.ExpiresAt.UnixNano(),
			fieldAttempts, rec.Attempts,
		)
		pipe.ExpireAt(ctx, k, rec.ExpiresAt.Add(Grace))
		return nil
	})

	return err
}

func (c *Cache) Get(ctx context.Context, email string) (_ *entity.Record, err error) {
	ctx, span := c.startSpan(ctx, "Get")
	defer func() { c.endSpan(span, err) }()

	fields, err := c.client.HGetAll(ctx, key(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}

	return decode(email, fields)
}

func decode(email string, fields map[string]string) (*entity.Record, error) {
	created, err1 := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	expires, err2 := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	attempts, err3 := strconv.Atoi(fields[fieldAttempts])
	if err := errors.Join(err1, err2, err3); err != nil || fields[fieldCode] == "" {
		return nil, errors.Join(errCorruptRecord, err)
	}

	return &entity.Record{
		Email:     email,
		Code:      fields[fieldCode],
		CreatedAt: time.Unix(0, created).UTC(),
		ExpiresAt: time.Unix(0, expires).UTC(),
		Attempts:  attempts,
	}, nil
}

func (c *Cache) IncrementAttempts(ctx context.Context, email string) (_ int, err error) {
	ctx, span := c.startSpan(ctx, "IncrementAttempts")
	defer func() { c.endSpan(span, err) }()

	n, err := incrementScript.Run(ctx, c.client, []string{key(email)}).Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, goerror.ErrNotFound
	}

	return n, nil
}

func (c *Cache) Delete(ctx context.Context, email string) (err error) {
	ctx, span := c.startSpan(ctx, "Delete")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, key(email)).Err()
}

// DeleteExpired is a no-op: redis drops keys on its own.
func (c *Cache) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
