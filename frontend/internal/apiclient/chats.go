package apiclient

import (
	"context"

	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
)

func (c *APIClient) GetChats(ctx context.Context) ([]domain.Chat, error) {
	var resp api.ChatsResponse
	if err := c.getJSON(ctx, "/api/chats", "/api/chats", &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// RefreshChats makes the backend re-read the account's dialogs.
func (c *APIClient) RefreshChats(ctx context.Context) error {
	return c.postJSON(ctx, "/api/chats/refresh", "/api/chats/refresh", nil, nil)
}
