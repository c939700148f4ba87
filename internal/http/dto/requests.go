package dto

type SignUpRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ReportPaymentRequest struct {
	Evidence string `json:"evidence,omitempty"`
}

type RedeemAccessCodeRequest struct {
	Code string `json:"code"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type UpsertMerchantProfileRequest struct {
	Slug        string  `json:"slug"`
	DisplayName string  `json:"display_name"`
	Bio         *string `json:"bio,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

type ChangeListingStatusRequest struct {
	Status string `json:"status"`
}

type GuardEvaluateRequest struct {
	ClientID        string `json:"client_id,omitempty"` // browsing-context key; falls back to caller IP
	Path            string `json:"path"`
	IsAuthenticated *bool  `json:"is_authenticated"` // null while the session check is in flight
	WalletAddress   string `json:"wallet_address,omitempty"`
	WalletConnected bool   `json:"wallet_connected"`
}

type GuardResetRequest struct {
	ClientID string `json:"client_id,omitempty"`
}
