package api

import "github.com/purplesanya/tg-bot/shared/domain"

// Request DTOs

type StartAuthRequest struct {
	Phone   string `json:"phone" validate:"required"`
	ApiId   string `json:"api_id,omitempty"`
	ApiHash string `json:"api_hash,omitempty"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type VerifyTwoFactorRequest struct {
	Password string `json:"password" validate:"required"`
}

type SwitchAccountRequest struct {
	TelegramId domain.UserId `json:"telegram_id"`
}

// Response DTOs

type VerifyResponse struct {
	Success  bool         `json:"success"`
	Needs2FA bool         `json:"needs_2fa,omitempty"`
	User     *domain.User `json:"user,omitempty"`
}

type UserInfoResponse struct {
	LoggedIn bool         `json:"logged_in"`
	User     *domain.User `json:"user,omitempty"`
}

// ErrorResponse is the body of every non-2xx backend response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
}
