package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type WaitlistJoinResponse struct {
	OK      bool `json:"ok"`
	OTPSent bool `json:"otp_sent"`
}

type GuardDecisionResponse struct {
	Redirect       bool   `json:"redirect"`
	Target         string `json:"target,omitempty"`
	FullNavigation bool   `json:"full_navigation,omitempty"`
}
