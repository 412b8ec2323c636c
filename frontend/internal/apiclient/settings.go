package apiclient

import (
	"context"

	"github.com/purplesanya/tg-bot/shared/api"
)

const (
	notificationsPath   = "/api/settings/notifications"
	simplifiedLoginPath = "/api/settings/simplified_login"
)

func (c *APIClient) GetNotifications(ctx context.Context) (bool, error) {
	return c.getSetting(ctx, notificationsPath)
}

func (c *APIClient) SetNotifications(ctx context.Context, enabled bool) error {
	return c.postJSON(ctx, notificationsPath, notificationsPath, api.EnabledSetting{Enabled: enabled}, nil)
}

func (c *APIClient) GetSimplifiedLogin(ctx context.Context) (bool, error) {
	return c.getSetting(ctx, simplifiedLoginPath)
}

func (c *APIClient) SetSimplifiedLogin(ctx context.Context, enabled bool) error {
	return c.postJSON(ctx, simplifiedLoginPath, simplifiedLoginPath, api.EnabledSetting{Enabled: enabled}, nil)
}

func (c *APIClient) getSetting(ctx context.Context, path string) (bool, error) {
	var resp api.EnabledSetting
	if err := c.getJSON(ctx, path, path, &resp); err != nil {
		return false, err
	}
	return resp.Enabled, nil
}
