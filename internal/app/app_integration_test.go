//go:build integration

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const configTemplate = `
app:
  env: test
  tz: UTC
  server:
    http:
      address: "127.0.0.1:0"
    max_goroutine: 10
instrument:
  enabled: false
  log_level: error
database:
  url: %q
  migrate: true
redis:
  url: %q
mail:
  host: localhost
  port: 2525
  from: "XcelTrack <noreply@xceltrack.test>"
  tls: none
auth:
  driver: hmac
  hmac:
    secret: %q
    issuer: xceltrack-test
    ttl_minutes: 60
idp:
  endpoint: %q
  without_auth: true
ratelimit:
  enabled: true
  requests: 50
  window_seconds: 60
modules:
  otp:
    enabled: true
    store: redis
  account:
    enabled: true
    default_role: user
`

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func TestApp_EndToEnd(t *testing.T) {
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("xceltrack"),
		postgres.WithUsername("xceltrack"),
		postgres.WithPassword("xceltrack"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)
	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rc, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, rc)
	require.NoError(t, err)
	redisURL, err := rc.ConnectionString(ctx)
	require.NoError(t, err)

	toolkit := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "signupNewUser") {
			_, _ = io.WriteString(w, `{"localId":"fb-created"}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(toolkit.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf(configTemplate, dsn, redisURL, testSecret, toolkit.URL+"/")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	t.Setenv("CONFIG_PATH", path)

	a := New()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a.Serve(l)
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Stop(stopCtx)
	})

	base := "http://" + l.Addr().String()
	signer, err := jwt.NewSymmetric(jwt.SymmetricConfig{
		Secret: []byte(testSecret), Issuer: "xceltrack-test", TTL: time.Hour, Clock: clock.New(),
	})
	require.NoError(t, err)
	token, err := signer.Generate("fb-admin", "admin@example.com")
	require.NoError(t, err)

	call := func(method, path, body string, auth bool) (int, envelope) {
		t.Helper()

		var rd io.Reader
		if body != "" {
			rd = strings.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, base+path, rd)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if auth {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		return resp.StatusCode, env
	}

	code, env := call(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", env.Message)

	code, env = call(http.MethodPost, "/api/verify-otp", `{"email":"nobody@example.com","otp":"123456"}`, false)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, env.Error)

	sync := `{"uid":"fb-admin","email":"admin@example.com","name":"Admin"}`
	code, env = call(http.MethodPost, "/api/sync-user", sync, false)
	assert.Equal(t, http.StatusCreated, code)
	code, env = call(http.MethodPost, "/api/sync-user", sync, false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User already synced", env.Message)

	code, env = call(http.MethodGet, "/api/user-role/fb-admin", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"role":"user"}`, string(env.Data))

	code, _ = call(http.MethodGet, "/api/users", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = call(http.MethodGet, "/api/users", "", true)
	assert.Equal(t, http.StatusForbidden, code)

	_, err = a.dbConn.Exec(ctx, `UPDATE users SET role = 'admin' WHERE firebase_uid = $1`, "fb-admin")
	require.NoError(t, err)

	code, env = call(http.MethodGet, "/api/users", "", true)
	assert.Equal(t, http.StatusOK, code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)

	code, env = call(http.MethodPost, "/api/admin/users", `{"email":"new@example.com","password":"secret123","name":"New"}`, true)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User created successfully", env.Message)

	code, env = call(http.MethodPut, "/api/admin/users/fb-created", `{"role":"admin"}`, true)
	assert.Equal(t, http.StatusOK, code)

	code, env = call(http.MethodDelete, "/api/admin/users/fb-created", "", true)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User deleted successfully", env.Message)
}
