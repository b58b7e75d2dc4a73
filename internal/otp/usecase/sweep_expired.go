package usecase

import (
	"context"
	"log/slog"
)

// SweepExpired removes records that can only ever fail verification.
func (s *Usecase) SweepExpired(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "SweepExpired")
	defer span.End()

	n, err := s.store.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired otp", "error", err)
		return 0, err
	}

	if n > 0 {
		slog.InfoContext(ctx, "expired otp records removed", "count", n)
	}

	return n, nil
}
