package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xceltrack/xceltrack-api/internal/account/outbound/idp"
	"github.com/xceltrack/xceltrack-api/internal/pkg/authz"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
	"google.golang.org/api/option"
)

type fixedID int64

func (f fixedID) Generate() int64 { return int64(f) }

var now = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newDependency(t *testing.T) (Dependency, pgxmock.PgxPoolIface) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  account:\n    default_role: user\n"))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	e, err := authz.New()
	require.NoError(t, err)
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	client, err := idp.New(context.Background(), instrument.NewNoop(),
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	ins := instrument.NewNoop()
	return Dependency{
		DBConn:     pool,
		IDP:        client,
		Enforcer:   e,
		Router:     router.NewRouter(router.Config{Config: cfg, Instrument: ins}),
		Config:     cfg,
		Instrument: ins,
		Validator:  v,
		UID:        fixedID(77),
		Clock:      clock.NewManual(now),
	}, pool
}

func TestNew_Validation(t *testing.T) {
	dep, _ := newDependency(t)
	dep.IDP = nil
	assert.Error(t, New(dep))
}

func TestNew_SyncUserFlow(t *testing.T) {
	dep, pool := newDependency(t)
	require.NoError(t, New(dep))

	columns := []string{"id", "firebase_uid", "email", "name", "role", "created_at", "updated_at"}
	pool.ExpectQuery("FROM users WHERE firebase_uid").WithArgs("fb-carol").WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery("INSERT INTO users").
		WithArgs(int64(77), "fb-carol", "carol@example.com", "Carol", "user", now, now).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(77), "fb-carol", "carol@example.com", "Carol", "user", now, now))

	rec := httptest.NewRecorder()
	dep.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync-user",
		strings.NewReader(`{"uid":"fb-carol","email":"carol@example.com","name":"Carol"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User synced successfully", body.Message)
	assert.Equal(t, "77", body.Data["id"])
	assert.Equal(t, "user", body.Data["role"])
	assert.NoError(t, pool.ExpectationsWereMet())

	rec = httptest.NewRecorder()
	dep.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/users/fb-carol", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
