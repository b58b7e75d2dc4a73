package inbound

import (
	"context"

	"github.com/xceltrack/xceltrack-api/internal/otp/usecase"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) error
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) error
}

// RegisterHTTPEndpoint mounts the OTP routes. mws apply to both routes and
// carry the rate limiter when it is enabled.
func RegisterHTTPEndpoint(r *router.Router, uc uc, mws ...router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/send-otp", end.SendOTP, mws...)
	r.POST("/api/verify-otp", end.VerifyOTP, mws...)
}
