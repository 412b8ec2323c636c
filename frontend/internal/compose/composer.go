// Package compose owns the create and edit forms and submits them. Every
// mutation of a server record is a confirmed round-trip followed by fresh
// fetches of the affected views.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/purplesanya/tg-bot/frontend/internal/apiclient"
	"github.com/purplesanya/tg-bot/frontend/internal/attachments"
	"github.com/purplesanya/tg-bot/frontend/internal/tasksync"
	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
	"github.com/purplesanya/tg-bot/shared/logger"
)

type Form int

const (
	FormCreate Form = iota
	FormEdit
)

var (
	ErrNotConfirmed = errors.New("action not confirmed")
	ErrNotEditing   = errors.New("no task is being edited")
)

type API interface {
	GetChats(ctx context.Context) ([]domain.Chat, error)
	RefreshChats(ctx context.Context) error
	Schedule(ctx context.Context, form apiclient.TaskForm) (api.ScheduleResponse, error)
	UpdateTask(ctx context.Context, id domain.TaskId, form apiclient.TaskForm) error
	GetTask(ctx context.Context, id domain.TaskId, timezone string) (domain.Task, error)
	PauseTask(ctx context.Context, id domain.TaskId) error
	ResumeTask(ctx context.Context, id domain.TaskId) error
	ArchiveTask(ctx context.Context, id domain.TaskId) error
	UnarchiveTask(ctx context.Context, id domain.TaskId) error
	DeleteTask(ctx context.Context, id domain.TaskId) error
}

// Refresher is the sync loop as seen from the forms.
type Refresher interface {
	Refresh(ctx context.Context, view tasksync.View, showLoader bool) error
	SwitchTab(ctx context.Context, view tasksync.View) error
}

// Fields are the plain inputs of a form.
type Fields struct {
	Name            string
	Message         string
	IntervalValue   int
	IntervalUnit    domain.IntervalUnit
	SendImmediately bool
}

type Composer struct {
	api      API
	sync     Refresher
	timezone string
	log      *slog.Logger

	mu     sync.Mutex
	drafts [2]Draft
	drags  [2]attachments.DragState
	editId domain.TaskId
	chats  []domain.Chat
}

func New(client API, refresher Refresher, timezone string) *Composer {
	return &Composer{
		api:      client,
		sync:     refresher,
		timezone: timezone,
		log:      logger.Component("compose"),
		drafts:   [2]Draft{NewDraft(), NewDraft()},
	}
}

func (c *Composer) Draft(form Form) Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[form]
}

// Editing returns the id of the task open in the edit form.
func (c *Composer) Editing() (domain.TaskId, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editId, c.editId != ""
}

func (c *Composer) Chats() []domain.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chats
}

func (c *Composer) update(form Form, fn func(Draft) (Draft, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(c.drafts[form])
	c.drafts[form] = next
	return err
}

func (c *Composer) SetFields(form Form, f Fields) {
	c.update(form, func(d Draft) (Draft, error) {
		d.Name = f.Name
		d.Message = f.Message
		d.IntervalValue = f.IntervalValue
		d.IntervalUnit = f.IntervalUnit
		if form == FormCreate {
			d.SendImmediately = f.SendImmediately
		}
		return d, nil
	})
}

func (c *Composer) ToggleChat(form Form, id domain.ChatId) {
	c.update(form, func(d Draft) (Draft, error) {
		d.Chats = d.Chats.Toggle(id)
		return d, nil
	})
}

// AddFiles appends uploads. On overflow the accepted part is kept and
// attachments.ErrTooManyAttachments is returned as the warning.
func (c *Composer) AddFiles(form Form, items ...attachments.Item) error {
	return c.update(form, func(d Draft) (Draft, error) {
		files, err := d.Files.Append(items...)
		d.Files = files
		return d, err
	})
}

func (c *Composer) RemoveFile(form Form, i int) error {
	return c.update(form, func(d Draft) (Draft, error) {
		files, err := d.Files.Remove(i)
		if err != nil {
			return d, err
		}
		d.Files = files
		return d, nil
	})
}

func (c *Composer) MoveFile(form Form, from, to int) (bool, error) {
	var changed bool
	err := c.update(form, func(d Draft) (Draft, error) {
		files, moved, err := d.Files.Reorder(from, to)
		if err != nil {
			return d, err
		}
		changed = moved
		d.Files = files
		return d, nil
	})
	return changed, err
}

func (c *Composer) StartDrag(form Form, i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drags[form].Start(i)
}

// Dragging reports the index picked up for a drag gesture, if any.
func (c *Composer) Dragging(form Form) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drags[form].Dragging()
}

// DropOn finishes a drag gesture over target.
func (c *Composer) DropOn(form Form, target int) (bool, error) {
	c.mu.Lock()
	from, to, ok := c.drags[form].Drop(target)
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return c.MoveFile(form, from, to)
}

func (c *Composer) EndDrag(form Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drags[form].End()
}

// ResetCreate empties the create form.
func (c *Composer) ResetCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[FormCreate] = NewDraft()
	c.drags[FormCreate].End()
}

// CloseEdit discards the edit form.
func (c *Composer) CloseEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[FormEdit] = NewDraft()
	c.drags[FormEdit].End()
	c.editId = ""
}

// Reset drops both forms and the chat directory for a new session scope.
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts = [2]Draft{NewDraft(), NewDraft()}
	c.drags = [2]attachments.DragState{}
	c.editId = ""
	c.chats = nil
}

// Create submits the create form, then refreshes the task list and stats.
func (c *Composer) Create(ctx context.Context) (domain.TaskId, error) {
	draft := c.Draft(FormCreate)
	if err := draft.Validate(); err != nil {
		return "", err
	}

	resp, err := c.api.Schedule(ctx, draft.form(false))
	if err != nil {
		return "", err
	}
	c.log.Info("task scheduled", "task_id", resp.TaskId, "chats", draft.Chats.Len(), "files", draft.Files.Len())
	c.ResetCreate()

	c.refresh(ctx, tasksync.ViewDashboard)
	if err := c.sync.SwitchTab(ctx, tasksync.ViewTasks); err != nil {
		c.log.Debug("task list refresh failed", "error", err)
	}
	return resp.TaskId, nil
}

// LoadForEdit opens the edit form for a task.
func (c *Composer) LoadForEdit(ctx context.Context, id domain.TaskId) error {
	task, err := c.api.GetTask(ctx, id, c.timezone)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[FormEdit] = DraftFromTask(task)
	c.drags[FormEdit].End()
	c.editId = task.Id
	if c.editId == "" {
		c.editId = id
	}
	return nil
}

// SaveEdit submits the edit form, closes it and refreshes tasks and stats.
func (c *Composer) SaveEdit(ctx context.Context) error {
	id, ok := c.Editing()
	if !ok {
		return ErrNotEditing
	}
	draft := c.Draft(FormEdit)
	if err := draft.Validate(); err != nil {
		return err
	}

	if err := c.api.UpdateTask(ctx, id, draft.form(true)); err != nil {
		return err
	}
	c.log.Info("task updated", "task_id", id)
	c.CloseEdit()
	c.refresh(ctx, tasksync.ViewTasks, tasksync.ViewDashboard)
	return nil
}

type Command string

const (
	Pause     Command = "pause"
	Resume    Command = "resume"
	Archive   Command = "archive"
	Unarchive Command = "unarchive"
	Delete    Command = "delete"
)

// NeedsConfirmation reports whether the command is destructive enough to ask.
func (cmd Command) NeedsConfirmation() bool {
	switch cmd {
	case Archive, Unarchive, Delete:
		return true
	}
	return false
}

// Run executes a lifecycle command. Pause and resume refresh the task list;
// the others also refresh stats.
func (c *Composer) Run(ctx context.Context, cmd Command, id domain.TaskId, confirmed bool) error {
	if cmd.NeedsConfirmation() && !confirmed {
		return ErrNotConfirmed
	}

	var err error
	views := []tasksync.View{tasksync.ViewTasks, tasksync.ViewDashboard}
	switch cmd {
	case Pause:
		err = c.api.PauseTask(ctx, id)
		views = views[:1]
	case Resume:
		err = c.api.ResumeTask(ctx, id)
		views = views[:1]
	case Archive:
		err = c.api.ArchiveTask(ctx, id)
	case Unarchive:
		err = c.api.UnarchiveTask(ctx, id)
	case Delete:
		err = c.api.DeleteTask(ctx, id)
	default:
		return fmt.Errorf("unknown task command %q", cmd)
	}
	if err != nil {
		return err
	}
	c.log.Info("task command", "command", string(cmd), "task_id", id)
	c.refresh(ctx, views...)
	return nil
}

func (c *Composer) refresh(ctx context.Context, views ...tasksync.View) {
	for _, v := range views {
		if err := c.sync.Refresh(ctx, v, true); err != nil {
			c.log.Debug("refresh after mutation failed", "view", v.String(), "error", err)
		}
	}
}

// LoadChats fetches the chat directory used by both forms.
func (c *Composer) LoadChats(ctx context.Context) ([]domain.Chat, error) {
	chats, err := c.api.GetChats(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	return chats, nil
}

// RefreshChats asks the backend to re-read the dialogs, then reloads them.
func (c *Composer) RefreshChats(ctx context.Context) ([]domain.Chat, error) {
	if err := c.api.RefreshChats(ctx); err != nil {
		return nil, err
	}
	return c.LoadChats(ctx)
}
