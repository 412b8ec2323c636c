package apiclient

import (
	"context"
	"strconv"

	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
)

func (c *APIClient) GetAdminStats(ctx context.Context) (domain.AdminStats, error) {
	var stats domain.AdminStats
	err := c.getJSON(ctx, "/api/admin/stats", "/api/admin/stats", &stats)
	return stats, err
}

func (c *APIClient) GetAdminUsers(ctx context.Context) ([]domain.AdminUser, error) {
	var resp api.AdminUsersResponse
	if err := c.getJSON(ctx, "/api/admin/users", "/api/admin/users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetAdminUserTasks lists every task of one user, archive included.
func (c *APIClient) GetAdminUserTasks(ctx context.Context, userId domain.UserId, timezone string) ([]domain.Task, error) {
	path := withTimezone("/api/admin/tasks/"+strconv.FormatInt(userId, 10), timezone)
	var resp api.TasksResponse
	if err := c.getJSON(ctx, "/api/admin/tasks/{userId}", path, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}
