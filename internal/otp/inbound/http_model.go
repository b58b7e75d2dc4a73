package inbound

type SendOTPRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SendOTPResponse struct{}

func (SendOTPResponse) Message() string {
	return "OTP sent successfully"
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyOTPResponse struct{}

func (VerifyOTPResponse) Message() string {
	return "OTP verified successfully"
}
