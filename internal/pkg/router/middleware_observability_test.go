package router

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}

func logLine(t *testing.T, buf *bytes.Buffer, msg string) map[string]any {
	t.Helper()

	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		if line["msg"] == msg {
			return line
		}
	}

	t.Fatalf("no %q log line", msg)
	return nil
}

func TestObservability_MasksSecretsWithoutConfig(t *testing.T) {
	buf := captureLogs(t)

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  env: production\n"))
	require.NoError(t, err)

	var seen string
	h := middlewareObservability(cfg, instrument.NewNoop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = string(raw)
		w.WriteHeader(http.StatusBadRequest)
	}))

	body := `{"email":"a@example.com","otp":"123456","password":"hunter22","code":"654321"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify-otp", strings.NewReader(body))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, body, seen)

	line := logLine(t, buf, "request received")
	assert.Equal(t, map[string]any{
		"email":    "a@example.com",
		"otp":      "***",
		"password": "***",
		"code":     "***",
	}, line["body"])
}

func TestObservability_NilConfig(t *testing.T) {
	buf := captureLogs(t)

	h := middlewareObservability(nil, instrument.NewNoop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/send-otp", strings.NewReader(`{"otp":"000000"}`))
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(httptest.NewRecorder(), req)

	line := logLine(t, buf, "request received")
	assert.Equal(t, map[string]any{"otp": "***"}, line["body"])
	assert.Equal(t, "***", line["headers"].(map[string]any)["Authorization"])
}
