package frontend_domain

import (
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/authflow"
	"github.com/purplesanya/tg-bot/frontend/internal/view"
	"github.com/purplesanya/tg-bot/shared/domain"
)

type LoginPageData struct {
	State      authflow.State
	Simplified bool
	Adding     bool
	Phone      domain.Phone
	// Step is the form to show: "phone", "code" or "password".
	Step string
}

type TasksPageData struct {
	Tasks    TaskListData
	Archived bool
}

type DashboardPageData struct {
	Stats   []view.StatCard
	Loading bool
}

type AdminPageData struct {
	Stats     []view.StatCard
	Users     []view.AdminUserRow
	UserName  string
	UserTasks *TaskListData
	Loading   bool
}

type ComposePageData struct {
	Form TaskFormData
}

type SettingsPageData struct {
	Notifications   bool
	SimplifiedLogin bool
	Language        domain.LanguageTag
	Languages       []domain.LanguageTag
}

type RedirectPageData struct {
	Target  string
	Seconds int
	Delay   time.Duration
}
