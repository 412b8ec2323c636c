// Package view turns sync snapshots and form state into display fragments.
// Everything here is a pure function of its inputs; user-supplied text is
// passed through a strict sanitizer and handed to templates as template.HTML.
package view

import (
	"encoding/base64"
	"html/template"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
	"github.com/purplesanya/tg-bot/frontend/internal/attachments"
	"github.com/purplesanya/tg-bot/shared/domain"
)

const MessagePreviewRunes = 120

type Renderer struct {
	Catalog
	policy *bluemonday.Policy
	// mediaBase resolves relative file references of existing attachments.
	mediaBase *url.URL
}

func New(lang domain.LanguageTag, mediaBase string) *Renderer {
	r := &Renderer{Catalog: NewCatalog(lang), policy: bluemonday.StrictPolicy()}
	if u, err := url.Parse(mediaBase); err == nil && mediaBase != "" {
		r.mediaBase = u
	}
	return r
}

// Sanitize strips all markup from user text.
func (r *Renderer) Sanitize(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s))
}

type Action struct {
	Command string
	Label   string
	Style   string
	// Confirm is the question asked before the command is sent; empty when
	// the command runs straight away.
	Confirm string
}

type TaskCard struct {
	Id         domain.TaskId
	Name       template.HTML
	Status     domain.TaskStatus
	Message    template.HTML
	Interval   string
	Chats      int
	Files      int
	Executions int
	LastRun    string
	NextRun    string
	Actions    []Action
}

type EmptyState struct {
	Header      string
	Description string
}

type TaskList struct {
	Cards []TaskCard
	Empty *EmptyState
}

// TaskCards renders the task list of the tasks tab.
func (r *Renderer) TaskCards(tasks []domain.Task, archived bool, now time.Time) TaskList {
	if len(tasks) == 0 {
		if archived {
			return TaskList{Empty: &EmptyState{Header: r.T("no_archived_tasks_header"), Description: r.T("no_archived_tasks_desc")}}
		}
		return TaskList{Empty: &EmptyState{Header: r.T("no_tasks_header"), Description: r.T("no_tasks_desc")}}
	}
	cards := make([]TaskCard, 0, len(tasks))
	for _, t := range tasks {
		card := r.card(t, now)
		card.Actions = r.actions(t, archived)
		cards = append(cards, card)
	}
	return TaskList{Cards: cards}
}

// AdminTaskCards renders another user's tasks. They are read-only.
func (r *Renderer) AdminTaskCards(tasks []domain.Task, now time.Time) TaskList {
	if len(tasks) == 0 {
		return TaskList{Empty: &EmptyState{Description: r.T("no_user_tasks")}}
	}
	cards := make([]TaskCard, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, r.card(t, now))
	}
	return TaskList{Cards: cards}
}

func (r *Renderer) card(t domain.Task, now time.Time) TaskCard {
	card := TaskCard{
		Id:         t.Id,
		Name:       r.Sanitize(t.Name),
		Status:     t.Status,
		Message:    r.Sanitize(truncate(t.Message, MessagePreviewRunes)),
		Interval:   r.T("every") + " " + strconv.Itoa(t.IntervalValue) + " " + r.T(t.IntervalUnit),
		Chats:      len(t.ChatIds),
		Files:      t.FileCount,
		Executions: t.ExecutionCount,
	}
	if t.LastRun != nil {
		card.LastRun = r.T("last_run") + " " + FormatTimeAgo(r.Catalog, t.LastRun, now)
	} else {
		card.LastRun = r.T("not_executed_yet")
	}
	if t.NextRun != nil && t.Status == domain.TaskActive {
		card.NextRun = r.T("next_run") + " " + FormatNextRun(r.Catalog, t.NextRun, now)
	}
	return card
}

func (r *Renderer) actions(t domain.Task, archived bool) []Action {
	if archived {
		return []Action{
			{Command: "unarchive", Label: r.T("unarchive_btn"), Style: "success", Confirm: r.T("unarchive_task_confirm")},
			{Command: "delete", Label: r.T("delete_btn"), Style: "danger", Confirm: r.T("delete_task_confirm")},
		}
	}
	out := []Action{{Command: "edit", Label: r.T("edit_btn"), Style: "secondary"}}
	switch t.Status {
	case domain.TaskActive:
		out = append(out, Action{Command: "pause", Label: r.T("pause_btn"), Style: "secondary"})
	case domain.TaskPaused:
		out = append(out, Action{Command: "resume", Label: r.T("resume_btn"), Style: "success"})
	}
	return append(out,
		Action{Command: "archive", Label: r.T("archive_btn"), Style: "warning", Confirm: r.T("archive_task_confirm")},
		Action{Command: "delete", Label: r.T("delete_btn"), Style: "danger", Confirm: r.T("delete_task_confirm")},
	)
}

type StatCard struct {
	Value int
	Label string
}

func (r *Renderer) StatCards(s domain.Stats) []StatCard {
	return []StatCard{
		{Value: s.TotalTasks, Label: r.T("total_tasks")},
		{Value: s.ActiveTasks, Label: r.T("active_tasks")},
		{Value: s.ArchivedTasks, Label: r.T("archived_tasks")},
		{Value: s.TotalExecutions, Label: r.T("total_executions")},
	}
}

func (r *Renderer) AdminStatCards(s domain.AdminStats) []StatCard {
	return []StatCard{
		{Value: s.TotalUsers, Label: r.T("total_users")},
		{Value: s.TotalTasks, Label: r.T("total_active_tasks")},
		{Value: s.TotalExecutions, Label: r.T("total_executions")},
	}
}

type AdminUserRow struct {
	Id        domain.UserId
	Name      template.HTML
	Username  template.HTML
	IsAdmin   bool
	TaskCount int
	LastLogin string
	Selected  bool
}

// AdminUserRows renders the user list of the admin tab. selected marks the
// user whose tasks are open, if any.
func (r *Renderer) AdminUserRows(users []domain.AdminUser, selected *domain.UserId, now time.Time) []AdminUserRow {
	rows := make([]AdminUserRow, 0, len(users))
	for _, u := range users {
		username := u.Username
		if username == "" {
			username = "N/A"
		}
		last := r.T("never")
		if u.LastLogin != nil {
			last = FormatTimeAgo(r.Catalog, u.LastLogin, now)
		}
		rows = append(rows, AdminUserRow{
			Id:        u.Id,
			Name:      r.Sanitize(u.FirstName),
			Username:  r.Sanitize(username),
			IsAdmin:   u.IsAdmin,
			TaskCount: u.TaskCount,
			LastLogin: last,
			Selected:  selected != nil && *selected == u.Id,
		})
	}
	return rows
}

type AccountEntry struct {
	Id       domain.UserId
	Name     template.HTML
	Initial  string
	PhotoURL template.URL
	Current  bool
}

// AccountMenu lists the stored accounts with the active one flagged.
func (r *Renderer) AccountMenu(data accounts.Data) []AccountEntry {
	out := make([]AccountEntry, 0, len(data.Accounts))
	for _, u := range data.Accounts {
		out = append(out, AccountEntry{
			Id:       u.Id,
			Name:     r.Sanitize(u.DisplayName()),
			Initial:  u.Initial(),
			PhotoURL: photoURL(u.Photo),
			Current:  data.IsActive(u.Id),
		})
	}
	return out
}

// photoURL accepts only well-formed base64 so the data URI cannot carry
// anything but image bytes.
func photoURL(photo string) template.URL {
	if photo == "" {
		return ""
	}
	if _, err := base64.StdEncoding.DecodeString(photo); err != nil {
		return ""
	}
	return template.URL("data:image/jpeg;base64," + photo)
}

type ChatOption struct {
	Id       domain.ChatId
	Name     template.HTML
	Type     string
	Selected bool
}

func (r *Renderer) ChatOptions(chats []domain.Chat, selected func(domain.ChatId) bool) []ChatOption {
	out := make([]ChatOption, 0, len(chats))
	for _, c := range chats {
		out = append(out, ChatOption{
			Id:       c.Id,
			Name:     r.Sanitize(c.Name),
			Type:     c.Type,
			Selected: selected(c.Id),
		})
	}
	return out
}

type AttachmentTile struct {
	Index   int
	Number  int
	Name    template.HTML
	IsVideo bool
	Src     template.URL
	Width   *int
	Height  *int
}

// AttachmentTiles renders the ordered preview grid of a form.
func (r *Renderer) AttachmentTiles(list attachments.List) []AttachmentTile {
	items := list.Items()
	out := make([]AttachmentTile, 0, len(items))
	for i, it := range items {
		out = append(out, AttachmentTile{
			Index:   i,
			Number:  i + 1,
			Name:    r.Sanitize(path.Base(it.Identifier())),
			IsVideo: it.Meta.IsVideo(),
			Src:     r.previewSrc(it),
			Width:   it.Meta.Width,
			Height:  it.Meta.Height,
		})
	}
	return out
}

func (r *Renderer) previewSrc(it attachments.Item) template.URL {
	if it.Kind == attachments.Existing {
		ref, err := url.Parse(it.Reference)
		if err != nil {
			return ""
		}
		if scheme := strings.ToLower(ref.Scheme); scheme != "" && scheme != "http" && scheme != "https" {
			return ""
		}
		if r.mediaBase != nil && !ref.IsAbs() {
			ref = r.mediaBase.ResolveReference(ref)
		}
		return template.URL(ref.String())
	}
	if !it.Meta.IsImage() && !it.Meta.IsVideo() {
		return ""
	}
	return template.URL("data:" + it.Meta.MimeType + ";base64," + base64.StdEncoding.EncodeToString(it.Data))
}
