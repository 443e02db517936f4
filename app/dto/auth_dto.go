package dto

// CaptchaChallengeResponse returns a rotate captcha challenge for the login page
type CaptchaChallengeResponse struct {
	ChallengeID string `json:"challenge_id"`
	MasterImage string `json:"master_image"`
	ThumbImage  string `json:"thumb_image"`
}

// StaffLoginRequest carries staff credentials plus the solved captcha
type StaffLoginRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required"`
	CaptchaID    string  `json:"captcha_id" validate:"required"`
	CaptchaAngle float64 `json:"captcha_angle" validate:"required"`
}

// StaffDTO represents a staff user in API responses
type StaffDTO struct {
	ID           uint    `json:"id"`
	UUID         string  `json:"uuid"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	CompanyID    uint    `json:"company_id"`
	DepartmentID *uint   `json:"department_id,omitempty"`
	IsActive     bool    `json:"is_active"`
	LastLoginAt  *string `json:"last_login_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// StaffSessionDTO represents issued tokens in authentication responses
type StaffSessionDTO struct {
	SessionToken string `json:"session_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	CreatedAt    string `json:"created_at"`
}

// StaffLoginResponse returns the authenticated staff user and session tokens
type StaffLoginResponse struct {
	Message string          `json:"message"`
	Staff   StaffDTO        `json:"staff"`
	Session StaffSessionDTO `json:"session"`
}

// RefreshTokenRequest carries a refresh token to exchange for new tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse returns the new session tokens
type RefreshTokenResponse struct {
	Message string          `json:"message"`
	Session StaffSessionDTO `json:"session"`
}

// LogoutRequest expires the current session
type LogoutRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
}

// LogoutResponse confirms session expiry
type LogoutResponse struct {
	Message string `json:"message"`
}

// ChangePasswordRequest carries the current and new password
type ChangePasswordRequest struct {
	StaffID         uint   `json:"-"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordResponse confirms the password change
type ChangePasswordResponse struct {
	Message string `json:"message"`
}
