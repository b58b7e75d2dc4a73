package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
)

type healthResponse struct{}

func (healthResponse) Message() string {
	return "ok"
}

func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.dbConn.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "name", "database", "error", err)
		return nil, goerror.NewBusinessCause(err, "Service unavailable", goerror.CodeUnavailable)
	}

	if a.cacheConn != nil {
		if err := a.cacheConn.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "health check failed", "name", "redis", "error", err)
			return nil, goerror.NewBusinessCause(err, "Service unavailable", goerror.CodeUnavailable)
		}
	}

	return healthResponse{}, nil
}
