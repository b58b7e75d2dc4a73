package instrument

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskedValue = "***"

func initLogging(serviceName string, level slog.Level, lp *sdklog.LoggerProvider, maskFields []string) {
	var bridge slog.Handler
	if lp != nil {
		bridge = otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp))
	}

	slog.SetDefault(slog.New(newHandler(os.Stdout, serviceName, level, bridge, maskFields)))
}

// newHandler builds the chain: correlation/service attributes, then
// masking, then fan-out to JSON output and the optional OTLP bridge.
func newHandler(w io.Writer, serviceName string, level slog.Level, bridge slog.Handler, maskFields []string) slog.Handler {
	var out slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: renameAttr,
	})

	if bridge != nil {
		out = fanout{out, bridge}
	}

	return &contextHandler{
		Handler:     &maskHandler{next: out, keys: buildMaskKeys(maskFields)},
		serviceName: serviceName,
	}
}

func renameAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", fmt.Sprintf("internal/%s:%d", rel, src.Line))
	}

	return a
}

type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if h.serviceName != "" {
		r.AddAttrs(slog.String("service", h.serviceName))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

type maskHandler struct {
	next slog.Handler
	keys map[string]struct{}
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.keys) == 0 {
		return h.next.Handle(ctx, r)
	}

	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(MaskAttr(a, h.keys))
		return true
	})

	return h.next.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = MaskAttr(a, h.keys)
	}
	return &maskHandler{next: h.next.WithAttrs(out), keys: h.keys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func buildMaskKeys(fields []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keys[f] = struct{}{}
		}
	}
	return keys
}

// MaskAttr hides the value of a when its key is sensitive, and walks into
// groups, maps and JSON strings to hide nested sensitive keys.
func MaskAttr(a slog.Attr, keys map[string]struct{}) slog.Attr {
	if _, found := keys[strings.ToLower(a.Key)]; found {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = MaskAttr(ga, keys)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s, ok := maskJSON([]byte(a.Value.String()), keys); ok {
			a.Value = slog.StringValue(s)
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(MaskData(v, keys))
		case map[string]string:
			m := make(map[string]any, len(v))
			for k, s := range v {
				m[k] = s
			}
			a.Value = slog.AnyValue(MaskData(m, keys))
		case []byte:
			if s, ok := maskJSON(v, keys); ok {
				a.Value = slog.StringValue(s)
			}
		}
	}

	return a
}

func maskJSON(payload []byte, keys map[string]struct{}) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(MaskData(body, keys))
	if err != nil {
		return "", false
	}

	return string(out), true
}

// MaskData returns a copy of a decoded JSON value with sensitive keys hidden.
func MaskData(v any, keys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if _, found := keys[strings.ToLower(k)]; found {
				out[k] = maskedValue
				continue
			}
			out[k] = MaskData(item, keys)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = MaskData(item, keys)
		}
		return out
	default:
		return v
	}
}

// MaskKeys normalizes a configured field list for MaskAttr and MaskData.
func MaskKeys(fields []string) map[string]struct{} {
	return buildMaskKeys(fields)
}
