package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

const userColumns = `id, firebase_uid, email, name, role, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u    entity.User
		role string
	)
	if err := row.Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

func (s *DB) GetUserByUID(ctx context.Context, uid string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1`

	u, err := scanUser(s.conn.QueryRow(ctx, query, uid))
	if err != nil {
		return nil, s.mapError(err)
	}

	return u, nil
}

func (s *DB) CreateUser(ctx context.Context, u entity.User) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	query := `INSERT INTO users (id, firebase_uid, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	out, err := scanUser(s.conn.QueryRow(ctx, query,
		u.ID, u.FirebaseUID, u.Email, u.Name, string(u.Role), u.CreatedAt, u.UpdatedAt))
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

// ListUsers returns one page ordered newest first plus the total row count.
func (s *DB) ListUsers(ctx context.Context, limit, offset int) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListUsers")
	defer func() { s.endSpan(span, err) }()

	var total int64
	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	query := `SELECT ` + userColumns + ` FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.conn.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.User, error) {
		u, scanErr := scanUser(row)
		if scanErr != nil {
			return entity.User{}, scanErr
		}
		return *u, nil
	})
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	return users, total, nil
}

// UpdateUser overwrites email, name and role where the given value is not
// empty.
func (s *DB) UpdateUser(ctx context.Context, u entity.User) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "UpdateUser")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE users SET
			email = COALESCE(NULLIF($2, ''), email),
			name = COALESCE(NULLIF($3, ''), name),
			role = COALESCE(NULLIF($4, ''), role),
			updated_at = $5
		WHERE firebase_uid = $1
		RETURNING ` + userColumns

	out, err := scanUser(s.conn.QueryRow(ctx, query, u.FirebaseUID, u.Email, u.Name, string(u.Role), u.UpdatedAt))
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) DeleteUser(ctx context.Context, uid string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM users WHERE firebase_uid = $1`, uid)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
