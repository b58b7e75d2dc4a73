package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(nil, "email", "required"), want: http.StatusBadRequest},
		{name: "bad request", err: NewBusiness("bad", CodeBadRequest), want: http.StatusBadRequest},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "too many", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "unauthorized", err: NewBusiness("who", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "forbidden", err: NewBusiness("no", CodeForbidden), want: http.StatusForbidden},
		{name: "conflict", err: NewBusiness("dup", CodeConflict), want: http.StatusConflict},
		{name: "server", err: NewServer(errors.New("db down")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewServer_HidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServer(cause)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Internal server error", gerr.Msg())
	assert.ErrorIs(t, err, cause)

	err = NewServer(cause, "Failed to send OTP. Please try again.")
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Failed to send OTP. Please try again.", gerr.Msg())
}

func TestNewBusinessCause_KeepsSentinel(t *testing.T) {
	sentinel := errors.New("otp expired")
	err := NewBusinessCause(sentinel, "OTP has expired", CodeBadRequest)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "otp expired", err.Error())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "email", "email is required", "name", "name is required")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, TypeValidation, gerr.Type())
	assert.Equal(t, map[string]string{
		"email": "email is required",
		"name":  "name is required",
	}, gerr.Fields())

	err = NewInvalidInput(nil, "dangling")
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, CodeInvalidFormat, gerr.Code())
}
