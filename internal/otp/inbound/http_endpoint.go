package inbound

import (
	"github.com/xceltrack/xceltrack-api/internal/otp/usecase"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// SendOTP issues a code for the email and mails it.
func (h *HTTPEndpoint) SendOTP(r *router.Request) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.SendOTP(r.Context(), usecase.SendOTPInput{
		Email: req.Email,
		Name:  req.Name,
	}); err != nil {
		return nil, err
	}

	return SendOTPResponse{}, nil
}

func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		OTP:   req.OTP,
	}); err != nil {
		return nil, err
	}

	return VerifyOTPResponse{}, nil
}
