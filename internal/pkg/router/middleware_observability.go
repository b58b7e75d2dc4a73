package router

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxLoggedBodyBytes = 16 * 1024

// alwaysMasked is hidden in request logs whatever instrument.log_mask_fields says.
var alwaysMasked = []string{"authorization", "cookie", "otp", "code", "password"}

var errHijackUnsupported = errors.New("router: hijack not supported")

type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
	err    error
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - w.body.Len(); room > 0 {
		if len(p) > room {
			w.body.Write(p[:room])
			w.capped = true
		} else {
			w.body.Write(p)
		}
	} else if len(p) > 0 {
		w.capped = true
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// SetError lets the endpoint adapter hand the handler error to the span.
func (w *recorder) SetError(err error) { w.err = err }

func (w *recorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}
	return h.Hijack()
}

func (w *recorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBodyBytes and restores r.Body for the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	return head
}

func loggableBody(raw []byte, keys map[string]struct{}, truncated bool) any {
	if len(raw) == 0 {
		return nil
	}

	var out any
	var decoded any
	switch {
	case json.Unmarshal(raw, &decoded) == nil:
		out = instrument.MaskData(decoded, keys)
	case utf8.Valid(raw):
		out = string(raw)
	default:
		out = "<binary body omitted>"
	}

	if truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

func loggableHeaders(h http.Header, keys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return instrument.MaskData(out, keys).(map[string]any)
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	fields := append([]string{}, alwaysMasked...)
	if cfg != nil {
		fields = append(fields, cfg.GetArray("instrument.log_mask_fields")...)
	}
	keys := instrument.MaskKeys(fields)

	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			reqBody := peekBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"client_ip", r.RemoteAddr,
				"headers", loggableHeaders(r.Header, keys),
				"body", loggableBody(reqBody, keys, len(reqBody) == maxLoggedBodyBytes),
			)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.SetAttributes(append(attrs,
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", rec.bytes),
			)...)

			elapsed := time.Since(start)
			if requests != nil {
				requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if duration != nil {
				duration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", loggableBody(rec.body.Bytes(), keys, rec.capped),
			)
		})
	}
}
