package compose

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/purplesanya/tg-bot/frontend/internal/apiclient"
	"github.com/purplesanya/tg-bot/frontend/internal/attachments"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
)

const defaultUnit = domain.UnitHours

// Draft is the content of the create or edit form.
type Draft struct {
	Name            string              `validate:"max=100"`
	Message         string              `validate:"max=4096"`
	IntervalValue   int                 `validate:"gte=1"`
	IntervalUnit    domain.IntervalUnit `validate:"oneof=minutes hours days weeks"`
	SendImmediately bool

	Chats Selection        `validate:"-"`
	Files attachments.List `validate:"-"`
}

// NewDraft is an empty create form.
func NewDraft() Draft {
	return Draft{IntervalUnit: defaultUnit, Chats: NewSelection()}
}

// DraftFromTask prefills the edit form.
func DraftFromTask(task domain.Task) Draft {
	return Draft{
		Name:          task.Name,
		Message:       task.Message,
		IntervalValue: task.IntervalValue,
		IntervalUnit:  task.IntervalUnit,
		Chats:         NewSelection(task.ChatIds...),
		Files:         attachments.FromTask(task.FileURLs),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Name":          "Task name is too long",
	"Message":       "Message is too long",
	"IntervalValue": "Please enter a valid interval",
	"IntervalUnit":  "Please choose a valid interval unit",
}

// Validate checks the form before anything is sent. The messages are the
// ones shown to the user.
func (d Draft) Validate() error {
	if d.Chats.Len() == 0 {
		return &internal_errors.ValidationError{Field: "chats", Message: "Please select at least one chat"}
	}
	if strings.TrimSpace(d.Message) == "" && d.Files.Len() == 0 {
		return &internal_errors.ValidationError{Field: "message", Message: "Please enter a message or attach a file"}
	}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].Field()
			return &internal_errors.ValidationError{Field: field, Message: fieldMessages[field]}
		}
		return err
	}
	return nil
}

// form builds the multipart body in the list's current order.
func (d Draft) form(update bool) apiclient.TaskForm {
	form := apiclient.TaskForm{
		ChatIds:       d.Chats.IDs(),
		Message:       d.Message,
		Name:          d.Name,
		IntervalValue: d.IntervalValue,
		IntervalUnit:  d.IntervalUnit,
		FinalOrder:    d.Files.Serialize(),
	}
	for _, it := range d.Files.NewFiles() {
		form.Files = append(form.Files, apiclient.FilePart{Name: it.Name, ContentType: it.Meta.MimeType, Data: it.Data})
	}
	if update {
		form.KeepExisting = d.Files.KeepExisting()
	} else {
		send := d.SendImmediately
		form.SendImmediately = &send
	}
	return form
}
