package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xceltrack/xceltrack-api/internal/pkg/jwt"
)

func middlewareAuthentication(verifier jwt.JWT, public map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := public[r.Method][matchedRoutePath(r)]; skip {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" || verifier == nil {
				writeJSON(w, errorResponse{Error: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				if !errors.Is(err, jwt.ErrTokenExpired) {
					slog.WarnContext(r.Context(), "bearer token rejected", "error", err)
				}
				writeJSON(w, errorResponse{Error: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
