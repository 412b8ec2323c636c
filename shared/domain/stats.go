package domain

import "time"

type Stats struct {
	TotalTasks      int `json:"total_tasks"`
	ActiveTasks     int `json:"active_tasks"`
	ArchivedTasks   int `json:"archived_tasks"`
	TotalExecutions int `json:"total_executions"`
}

type AdminStats struct {
	TotalUsers      int `json:"total_users"`
	TotalTasks      int `json:"total_tasks"`
	TotalExecutions int `json:"total_executions"`
}

type AdminUser struct {
	Id        UserId     `json:"id"`
	FirstName string     `json:"first_name"`
	Username  string     `json:"username,omitempty"`
	IsAdmin   bool       `json:"is_admin"`
	TaskCount int        `json:"task_count"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
