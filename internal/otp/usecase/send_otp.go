package usecase

import (
	"context"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

const msgSendFailed = "Failed to send OTP. Please try again."

type SendOTPInput struct {
	Email string `validate:"required,max=255"`
	Name  string `validate:"required,max=255"`
}

// SendOTP replaces the outstanding code for the email and mails the new one.
// A mail failure fails the call but leaves the record; the next SendOTP
// overwrites it.
func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) error {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewValidation("Email and name are required", err)
	}

	now := s.clock.Now()
	rec := entity.Record{
		Email:     in.Email,
		Code:      s.code.Generate(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Attempts:  0,
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert otp", "email", in.Email, "error", err)
		return goerror.NewServer(err, msgSendFailed)
	}

	if s.debugLogCode {
		slog.DebugContext(ctx, "otp issued", "email", in.Email, "debug_code", rec.Code, "expires_at", rec.ExpiresAt)
	}

	if err := s.mail.SendOTP(ctx, entity.Delivery{
		To:   in.Email,
		Name: in.Name,
		Code: rec.Code,
		TTL:  s.ttl,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send otp mail", "email", in.Email, "error", err)
		return goerror.NewServer(err, msgSendFailed)
	}

	if s.issued != nil {
		s.issued.Add(ctx, 1)
	}

	return nil
}
