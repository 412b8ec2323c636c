package handler

import (
	"fmt"
	"net/http"

	frontend_domain "github.com/purplesanya/tg-bot/frontend/internal/domain"
	"github.com/purplesanya/tg-bot/frontend/internal/tasksync"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
)

// refreshed shows a refresh failure on the page being rendered, unless a
// flash already carries a message.
func refreshed(common *frontend_domain.CommonTemplateData, err error) {
	if msg, show := internal_errors.UserMessage(err); show && common.Error == "" {
		common.Error = msg
	}
}

// TasksGetHandler selects the task list and refreshes it. Auto-refresh
// reads (?poll=1) only render what the loop last fetched.
func (h *Handler) TasksGetHandler(w http.ResponseWriter, r *http.Request) {
	archived := r.URL.Query().Get("archived") == "1"

	var err error
	if snap := h.Sync.Snapshot(); !isPoll(r) || snap.Archived != archived || snap.Visible != tasksync.ViewTasks {
		err = h.Sync.SetArchived(r.Context(), archived)
	}
	if h.afterNavigation(w, r) {
		return
	}

	rv := h.renderer()
	common := h.initCommonTemplateData(w, r, rv, tasksync.ViewTasks.String())
	refreshed(common, err)
	url := "/tasks?poll=1"
	if archived {
		url = "/tasks?archived=1&poll=1"
	}
	h.autoRefresh(common, url)

	snap := h.Sync.Snapshot()
	data := frontend_domain.TasksPageData{
		Archived: archived,
		Tasks: frontend_domain.TaskListData{
			Loading: snap.IsLoading(tasksync.ViewTasks) || !snap.TasksLoaded,
			Common:  common,
		},
	}
	if snap.TasksLoaded {
		data.Tasks.List = rv.TaskCards(snap.Tasks, archived, h.now())
	}
	h.renderTemplate(w, "tasks.html", common, data)
}

func (h *Handler) DashboardGetHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	if snap := h.Sync.Snapshot(); !isPoll(r) || snap.Visible != tasksync.ViewDashboard {
		err = h.Sync.SwitchTab(r.Context(), tasksync.ViewDashboard)
	}
	if h.afterNavigation(w, r) {
		return
	}

	rv := h.renderer()
	common := h.initCommonTemplateData(w, r, rv, tasksync.ViewDashboard.String())
	refreshed(common, err)
	h.autoRefresh(common, "/dashboard?poll=1")

	snap := h.Sync.Snapshot()
	data := frontend_domain.DashboardPageData{Loading: snap.Stats == nil || snap.IsLoading(tasksync.ViewDashboard)}
	if snap.Stats != nil {
		data.Stats = rv.StatCards(*snap.Stats)
	}
	h.renderTemplate(w, "dashboard.html", common, data)
}

// AdminGetHandler shows global stats and users; ?user=ID opens the tasks of
// one user.
func (h *Handler) AdminGetHandler(w http.ResponseWriter, r *http.Request) {
	var selected *domain.UserId
	if raw := r.URL.Query().Get("user"); raw != "" {
		id, err := parseInt64Param(raw, "user")
		if err != nil {
			h.fail(w, r, "/admin", err)
			return
		}
		selected = &id
	}

	var err error
	snap := h.Sync.Snapshot()
	if !isPoll(r) || snap.Visible != tasksync.ViewAdmin {
		err = h.Sync.SwitchTab(r.Context(), tasksync.ViewAdmin)
	}
	if selected != nil && err == nil && (!isPoll(r) || snap.AdminUserId == nil || *snap.AdminUserId != *selected) {
		err = h.Sync.LoadAdminUserTasks(r.Context(), *selected)
	}
	if h.afterNavigation(w, r) {
		return
	}

	rv := h.renderer()
	common := h.initCommonTemplateData(w, r, rv, tasksync.ViewAdmin.String())
	refreshed(common, err)
	url := "/admin?poll=1"
	if selected != nil {
		url = fmt.Sprintf("/admin?user=%d&poll=1", *selected)
	}
	h.autoRefresh(common, url)

	snap = h.Sync.Snapshot()
	data := frontend_domain.AdminPageData{
		Users:   rv.AdminUserRows(snap.AdminUsers, selected, h.now()),
		Loading: snap.AdminStats == nil || snap.IsLoading(tasksync.ViewAdmin),
	}
	if snap.AdminStats != nil {
		data.Stats = rv.AdminStatCards(*snap.AdminStats)
	}
	if selected != nil && snap.AdminUserId != nil && *snap.AdminUserId == *selected {
		data.UserTasks = &frontend_domain.TaskListData{
			List:     rv.AdminTaskCards(snap.AdminUserTasks, h.now()),
			Common:   common,
			ReadOnly: true,
		}
		for _, u := range snap.AdminUsers {
			if u.Id == *selected {
				data.UserName = u.FirstName
				break
			}
		}
	}
	h.renderTemplate(w, "admin.html", common, data)
}
