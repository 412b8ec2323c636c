package handler

import (
	"net/http"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/tasksync"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
	"github.com/purplesanya/tg-bot/shared/utils"
)

// StateResponse is the JSON form of the latest sync snapshot.
type StateResponse struct {
	Version  uint64 `json:"version"`
	Auth     string `json:"auth"`
	Visible  string `json:"visible"`
	Archived bool   `json:"archived"`

	Tasks          []domain.Task      `json:"tasks"`
	Stats          *domain.Stats      `json:"stats,omitempty"`
	AdminStats     *domain.AdminStats `json:"admin_stats,omitempty"`
	AdminUsers     []domain.AdminUser `json:"admin_users,omitempty"`
	AdminUserId    *domain.UserId     `json:"admin_user_id,omitempty"`
	AdminUserTasks []domain.Task      `json:"admin_user_tasks,omitempty"`
	Loading        []string           `json:"loading"`
	Error          string             `json:"error,omitempty"`
	FetchedAt      *time.Time         `json:"fetched_at,omitempty"`
	Accounts       []domain.User      `json:"accounts"`
	ActiveAccount  *domain.UserId     `json:"active_account_id,omitempty"`
}

func stateResponse(snap tasksync.Snapshot) StateResponse {
	resp := StateResponse{
		Version:        snap.Version,
		Visible:        snap.Visible.String(),
		Archived:       snap.Archived,
		Tasks:          snap.Tasks,
		Stats:          snap.Stats,
		AdminStats:     snap.AdminStats,
		AdminUsers:     snap.AdminUsers,
		AdminUserId:    snap.AdminUserId,
		AdminUserTasks: snap.AdminUserTasks,
		Loading:        []string{},
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	for _, v := range tasksync.Views {
		if snap.IsLoading(v) {
			resp.Loading = append(resp.Loading, v.String())
		}
	}
	if msg, show := internal_errors.UserMessage(snap.Err); show {
		resp.Error = msg
	}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt
		resp.FetchedAt = &at
	}
	return resp
}

// StateHandler serves the latest snapshot without fetching anything.
func (h *Handler) StateHandler(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse(h.Sync.Snapshot())
	resp.Auth = h.Auth.Status().State.String()

	data := h.Accounts.Snapshot()
	resp.Accounts = data.Accounts
	if resp.Accounts == nil {
		resp.Accounts = []domain.User{}
	}
	resp.ActiveAccount = data.ActiveAccountId
	utils.WriteJSON(w, http.StatusOK, resp)
}
