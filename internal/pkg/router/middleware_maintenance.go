package router

import (
	"net/http"

	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
)

// middlewareMaintenance answers 503 for route patterns listed in
// app.maintenance.endpoints. The list is read per request so it follows
// config reloads.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg != nil {
				route := matchedRoutePath(r)
				for _, blocked := range cfg.GetArray("app.maintenance.endpoints") {
					if blocked == route {
						writeJSON(w, errorResponse{Error: "Service is under maintenance"}, http.StatusServiceUnavailable)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
