package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestHandler_MasksAndTags(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "xceltrack-api", slog.LevelInfo, nil, []string{"otp", " Password "}))

	ctx := SetCorrelationID(context.Background(), "cid-123")
	logger.InfoContext(ctx, "request received",
		"email", "alice@example.com",
		"otp", "123456",
		"body", `{"email":"alice@example.com","password":"hunter22"}`,
		"headers", map[string]string{"Password": "x", "Accept": "json"},
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "request received", line["msg"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Contains(t, line, "ts")
	assert.Equal(t, "cid-123", line["_cID"])
	assert.Equal(t, "xceltrack-api", line["service"])
	assert.Equal(t, "alice@example.com", line["email"])
	assert.Equal(t, "***", line["otp"])
	assert.JSONEq(t, `{"email":"alice@example.com","password":"***"}`, line["body"].(string))
	assert.Equal(t, map[string]any{"Password": "***", "Accept": "json"}, line["headers"])
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "", slog.LevelWarn, nil, nil))

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept", "code", "654321")
	line := decodeLine(t, &buf)
	assert.Equal(t, "654321", line["code"])
	assert.NotContains(t, line, "service")
}

func TestHandler_WithAttrsMasked(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "svc", slog.LevelInfo, nil, []string{"code"})).With("code", "111111")

	logger.Info("with attrs")
	line := decodeLine(t, &buf)
	assert.Equal(t, "***", line["code"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestMaskData_Nested(t *testing.T) {
	keys := MaskKeys([]string{"otp"})
	in := map[string]any{
		"items": []any{map[string]any{"otp": "1", "email": "a"}},
	}

	assert.Equal(t, map[string]any{
		"items": []any{map[string]any{"otp": "***", "email": "a"}},
	}, MaskData(in, keys))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "abc", GetCorrelationID(SetCorrelationID(context.Background(), "abc")))
}

func TestNewNoop(t *testing.T) {
	ins, err := New(context.Background(), &Config{Enabled: false, LogLevel: "info"})
	require.NoError(t, err)

	_, span := ins.Tracer("test").Start(context.Background(), "span")
	span.End()

	counter, err := ins.Meter("test").Int64Counter("count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.NoError(t, ins.Shutdown(context.Background()))
}
