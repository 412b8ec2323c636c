package api

import "github.com/purplesanya/tg-bot/shared/domain"

// Multipart field names of /api/schedule and /api/tasks/{id}/update.
const (
	FieldChatIds         = "chat_ids"
	FieldMessage         = "message"
	FieldTaskName        = "task_name"
	FieldIntervalValue   = "interval_value"
	FieldIntervalUnit    = "interval_unit"
	FieldFiles           = "files"
	FieldFinalOrder      = "final_order"
	FieldKeepExisting    = "keep_existing"
	FieldSendImmediately = "send_immediately"
)

type TasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type TaskResponse struct {
	Task domain.Task `json:"task"`
}

type ChatsResponse struct {
	Chats []domain.Chat `json:"chats"`
}

type AdminUsersResponse struct {
	Users []domain.AdminUser `json:"users"`
}

type ScheduleResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	TaskId  domain.TaskId `json:"task_id,omitempty"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// EnabledSetting is the body of the notification and simplified-login
// settings endpoints, both directions.
type EnabledSetting struct {
	Enabled bool `json:"enabled"`
}
