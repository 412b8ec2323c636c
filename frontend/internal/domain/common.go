package frontend_domain

import (
	"github.com/purplesanya/tg-bot/frontend/internal/view"
	"github.com/purplesanya/tg-bot/shared/domain"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error     string
	Success   string
	Info      string
	CSRFToken string

	User     *domain.User
	IsAdmin  bool
	Accounts []view.AccountEntry
	// Text translates labels: {{.Common.Text.T "tasks_tab"}}.
	Text view.Catalog
	Tab  string

	// RefreshSeconds > 0 makes the page re-read the latest snapshot.
	RefreshSeconds int
	RefreshURL     string

	Validation ValidationData
}

// ValidationData holds the form limits shown next to inputs.
type ValidationData struct {
	NameMaxLen       int
	MessageMaxLen    int
	MaxAttachments   int
	MaxUploadSizeMB  int64
	IntervalUnits    []domain.IntervalUnit
	AllowedLanguages []domain.LanguageTag
}
