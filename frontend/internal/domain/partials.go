package frontend_domain

import (
	"github.com/purplesanya/tg-bot/frontend/internal/view"
	"github.com/purplesanya/tg-bot/shared/domain"
)

// TaskListData is the typed data for the "task_list" partial.
type TaskListData struct {
	List     view.TaskList
	Loading  bool
	Common   *CommonTemplateData
	ReadOnly bool
}

// TaskFormData is the typed data for the "task_form" partial shared by the
// create and edit pages. Action prefixes every form route of the page.
type TaskFormData struct {
	Action          string
	SubmitURL       string
	ResetURL        string
	Edit            bool
	TaskId          domain.TaskId
	Name            string
	Message         string
	IntervalValue   int
	IntervalUnit    domain.IntervalUnit
	SendImmediately bool
	Chats           []view.ChatOption
	Selected        int
	Files           []view.AttachmentTile
	Dragging        *int
	Common          *CommonTemplateData
}
