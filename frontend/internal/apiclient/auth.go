package apiclient

import (
	"context"

	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
)

// StartAuth asks the backend to send a login code to the phone. Without
// api credentials the backend uses the ones it stored for simplified login.
func (c *APIClient) StartAuth(ctx context.Context, req api.StartAuthRequest) error {
	return c.postJSON(ctx, "/api/auth/start", "/api/auth/start", req, nil)
}

func (c *APIClient) VerifyCode(ctx context.Context, code string) (api.VerifyResponse, error) {
	var resp api.VerifyResponse
	err := c.postJSON(ctx, "/api/auth/verify_code", "/api/auth/verify_code", api.VerifyCodeRequest{Code: code}, &resp)
	return resp, err
}

func (c *APIClient) VerifyTwoFactor(ctx context.Context, password string) (api.VerifyResponse, error) {
	var resp api.VerifyResponse
	err := c.postJSON(ctx, "/api/auth/verify_2fa", "/api/auth/verify_2fa", api.VerifyTwoFactorRequest{Password: password}, &resp)
	return resp, err
}

// SwitchAccount makes the backend session act for another stored account.
func (c *APIClient) SwitchAccount(ctx context.Context, id domain.UserId) error {
	return c.postJSON(ctx, "/api/auth/switch_account", "/api/auth/switch_account", api.SwitchAccountRequest{TelegramId: id}, nil)
}

// AuthStatus is the liveness probe. Its only useful outcome is the 401 side
// effect; callers usually ignore the error.
func (c *APIClient) AuthStatus(ctx context.Context) error {
	return c.getJSON(ctx, "/api/auth/status", "/api/auth/status", nil)
}

func (c *APIClient) UserInfo(ctx context.Context) (api.UserInfoResponse, error) {
	var resp api.UserInfoResponse
	err := c.getJSON(ctx, "/api/user/info", "/api/user/info", &resp)
	return resp, err
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/logout", "/api/logout", nil, nil)
}
