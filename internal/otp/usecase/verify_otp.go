package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const msgVerifyFailed = "Failed to verify OTP. Please try again."

type VerifyOTPInput struct {
	Email string `validate:"required,max=255"`
	OTP   string `validate:"required,max=16"`
}

// VerifyOTP checks, in order: presence, expiry, attempt limit, code. The
// limit is compared before the mismatch increment, so it trips on the call
// after the last allowed failure.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) error {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	result := entity.ResultError
	defer func() {
		if s.verified != nil {
			s.verified.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(result))))
		}
	}()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewValidation("Email and OTP are required", err)
	}

	rec, err := s.store.Get(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		result = entity.ResultNotFound
		return goerror.NewBusinessCause(entity.ErrOTPNotFound, "No OTP found for this email. Please request a new one.", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp", "email", in.Email, "error", err)
		return goerror.NewServer(err, msgVerifyFailed)
	}

	if rec.ExpiredAt(s.clock.Now()) {
		s.discard(ctx, in.Email, "expired")
		result = entity.ResultExpired
		return goerror.NewBusinessCause(entity.ErrOTPExpired, "OTP has expired. Please request a new one.", goerror.CodeBadRequest)
	}

	if rec.Exhausted(s.maxAttempts) {
		s.discard(ctx, in.Email, "too_many_attempts")
		result = entity.ResultTooManyAttempts
		return goerror.NewBusinessCause(entity.ErrOTPTooManyAttempts, "Too many failed attempts. Please request a new OTP.", goerror.CodeTooManyRequest)
	}

	if subtle.ConstantTimeCompare([]byte(in.OTP), []byte(rec.Code)) != 1 {
		attempts, err := s.store.IncrementAttempts(ctx, in.Email)
		if err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo increment otp attempts", "email", in.Email, "error", err)
			return goerror.NewServer(err, msgVerifyFailed)
		}

		slog.WarnContext(ctx, "otp mismatch", "email", in.Email, "attempts", attempts)
		result = entity.ResultInvalidCode
		return goerror.NewBusinessCause(entity.ErrOTPInvalidCode, "Invalid OTP. Please try again.", goerror.CodeBadRequest)
	}

	if err := s.store.Delete(ctx, in.Email); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete verified otp", "email", in.Email, "error", err)
		return goerror.NewServer(err, msgVerifyFailed)
	}

	result = entity.ResultVerified
	return nil
}

// discard deletes a record that can no longer be used. A failed delete is
// only logged; the next verification detects the same state again.
func (s *Usecase) discard(ctx context.Context, email, reason string) {
	if err := s.store.Delete(ctx, email); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete otp", "email", email, "reason", reason, "error", err)
	}
}
