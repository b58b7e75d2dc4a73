package db

import (
	"context"
	"time"

	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
)

const (
	queryUpsert = `INSERT INTO otp_verifications (email, otp_code, created_at, expires_at, attempts)
VALUES ($1, $2, $3, $4, 0)
ON CONFLICT (email) DO UPDATE
SET otp_code = EXCLUDED.otp_code, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at, attempts = 0`

	queryGet = `SELECT email, otp_code, created_at, expires_at, attempts FROM otp_verifications WHERE email = $1`

	queryIncrementAttempts = `UPDATE otp_verifications SET attempts = attempts + 1 WHERE email = $1 RETURNING attempts`

	queryDelete = `DELETE FROM otp_verifications WHERE email = $1`

	queryDeleteExpired = `DELETE FROM otp_verifications WHERE expires_at <= $1`
)

// Upsert replaces the outstanding record for rec.Email in one statement.
func (s *DB) Upsert(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "Upsert")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryUpsert, rec.Email, rec.Code, rec.CreatedAt, rec.ExpiresAt)
	return s.mapError(err)
}

func (s *DB) Get(ctx context.Context, email string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	var rec entity.Record
	if err = s.conn.QueryRow(ctx, queryGet, email).Scan(
		&rec.Email,
		&rec.Code,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.Attempts,
	); err != nil {
		return nil, s.mapError(err)
	}

	return &rec, nil
}

func (s *DB) IncrementAttempts(ctx context.Context, email string) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempts")
	defer func() { s.endSpan(span, err) }()

	var attempts int
	if err = s.conn.QueryRow(ctx, queryIncrementAttempts, email).Scan(&attempts); err != nil {
		return 0, s.mapError(err)
	}

	return attempts, nil
}

// Delete is idempotent.
func (s *DB) Delete(ctx context.Context, email string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryDelete, email)
	return s.mapError(err)
}

func (s *DB) DeleteExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteExpired, now)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
