package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
)

func withTimezone(path, timezone string) string {
	if timezone == "" {
		return path
	}
	return path + "?timezone=" + url.QueryEscape(timezone)
}

// GetTasks lists the active account's tasks; archived selects the archive.
func (c *APIClient) GetTasks(ctx context.Context, archived bool, timezone string) ([]domain.Task, error) {
	route := "/api/tasks"
	if archived {
		route = "/api/tasks/archived"
	}
	var resp api.TasksResponse
	if err := c.getJSON(ctx, route, withTimezone(route, timezone), &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *APIClient) GetTask(ctx context.Context, id domain.TaskId, timezone string) (domain.Task, error) {
	var resp api.TaskResponse
	path := withTimezone("/api/tasks/"+url.PathEscape(id), timezone)
	if err := c.getJSON(ctx, "/api/tasks/{id}", path, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.Task, nil
}

// Schedule creates a task.
func (c *APIClient) Schedule(ctx context.Context, form TaskForm) (api.ScheduleResponse, error) {
	var resp api.ScheduleResponse
	err := c.postMultipart(ctx, "/api/schedule", "/api/schedule", form, false, &resp)
	return resp, err
}

func (c *APIClient) UpdateTask(ctx context.Context, id domain.TaskId, form TaskForm) error {
	path := fmt.Sprintf("/api/tasks/%s/update", url.PathEscape(id))
	return c.postMultipart(ctx, "/api/tasks/{id}/update", path, form, true, nil)
}

func (c *APIClient) PauseTask(ctx context.Context, id domain.TaskId) error {
	return c.taskCommand(ctx, id, "pause")
}

func (c *APIClient) ResumeTask(ctx context.Context, id domain.TaskId) error {
	return c.taskCommand(ctx, id, "resume")
}

func (c *APIClient) ArchiveTask(ctx context.Context, id domain.TaskId) error {
	return c.taskCommand(ctx, id, "archive")
}

func (c *APIClient) UnarchiveTask(ctx context.Context, id domain.TaskId) error {
	return c.taskCommand(ctx, id, "unarchive")
}

func (c *APIClient) DeleteTask(ctx context.Context, id domain.TaskId) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/tasks/" + url.PathEscape(id),
		route:  "/api/tasks/{id}",
	}, nil)
}

func (c *APIClient) taskCommand(ctx context.Context, id domain.TaskId, command string) error {
	path := fmt.Sprintf("/api/tasks/%s/%s", url.PathEscape(id), command)
	return c.postJSON(ctx, "/api/tasks/{id}/"+command, path, nil, nil)
}

func (c *APIClient) GetStats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := c.getJSON(ctx, "/api/stats", "/api/stats", &stats)
	return stats, err
}
