// Package router wraps julienschmidt/httprouter with the application handler
// signature, JSON envelopes and the standard middleware stack.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/julienschmidt/httprouter"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/jwt"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler returns a payload to encode as JSON, or an error.
//
// A payload may implement Message() string to set the envelope message and
// StatusCode() int to replace 200. Payload structs without fields are sent
// as a bare {"message": ...}.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

// Router is an http.Handler over httprouter plus a middleware chain.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// publicEndpoints skip authentication.
var publicEndpoints = map[string]map[string]struct{}{
	http.MethodGet: {
		"/":                   {},
		"/health":             {},
		"/api/user-role/:uid": {},
	},
	http.MethodPost: {
		"/api/send-otp":   {},
		"/api/verify-otp": {},
		"/api/sync-user":  {},
	},
}

func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Error: "Endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Error: "Method not allowed"}, http.StatusMethodNotAllowed)
		}),
		PanicHandler: func(w http.ResponseWriter, r *http.Request, rvr any) {
			slog.ErrorContext(r.Context(), "panic outside middleware chain", "because", rvr)
			writeJSON(w, errorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
		},
	}

	hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, successResponse{Message: "XcelTrack API"}, http.StatusOK)
	})

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP(cfg.Config),
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
			middlewareAuthentication(cfg.JWT, publicEndpoints),
		},
	}
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	all := make([]Middleware, 0, len(r.mws)+len(mws))
	all = append(all, r.mws...)
	all = append(all, mws...)

	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			encodeError(req.Context(), w, err)
			return
		}
		encodeSuccess(w, resp)
	}), all...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func encodeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unclassified error reached the router", "error", err)
		writeJSON(w, errorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Error: gerr.Msg()}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Fields = gerr.Fields()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func encodeSuccess(w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}

	msg := "Request processed successfully"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}

	data := resp
	if isEmptyStruct(resp) {
		data = nil
	}

	writeJSON(w, successResponse{Message: msg, Data: data}, code)
}

func isEmptyStruct(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct && rv.NumField() == 0
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response body", "error", err)
	}
}
