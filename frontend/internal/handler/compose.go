package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/purplesanya/tg-bot/frontend/internal/attachments"
	"github.com/purplesanya/tg-bot/frontend/internal/compose"
	frontend_domain "github.com/purplesanya/tg-bot/frontend/internal/domain"
	"github.com/purplesanya/tg-bot/shared/domain"
	"github.com/purplesanya/tg-bot/shared/validation"
)

const composePath = "/compose"

// formRoute is one of the two forms together with the page it lives on.
// Every form route of that page is prefixed with base.
type formRoute struct {
	form compose.Form
	id   domain.TaskId
	base string
}

func editPath(id domain.TaskId) string {
	return "/tasks/" + url.PathEscape(id) + "/edit"
}

// formOf resolves the form a request works on. Edit routes for a task that
// is not open in the edit form are sent to its edit page, which loads it.
func (h *Handler) formOf(w http.ResponseWriter, r *http.Request) (formRoute, bool) {
	id := taskIdParam(r)
	if id == "" {
		return formRoute{form: compose.FormCreate, base: composePath}, true
	}
	route := formRoute{form: compose.FormEdit, id: id, base: editPath(id)}
	if editing, ok := h.Composer.Editing(); !ok || editing != id {
		http.Redirect(w, r, route.base, http.StatusSeeOther)
		return route, false
	}
	return route, true
}

// saveFields keeps what was typed before the button was pressed.
func (h *Handler) saveFields(r *http.Request, route formRoute) {
	h.Composer.SetFields(route.form, formFields(r))
}

func (h *Handler) ensureChats(r *http.Request) error {
	if h.Composer.Chats() != nil {
		return nil
	}
	_, err := h.Composer.LoadChats(r.Context())
	return err
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, route formRoute, loadErr error) {
	if h.afterNavigation(w, r) {
		return
	}

	rv := h.renderer()
	tab := "compose"
	page := "compose.html"
	if route.form == compose.FormEdit {
		tab = "tasks"
		page = "edit.html"
	}
	common := h.initCommonTemplateData(w, r, rv, tab)
	refreshed(common, loadErr)

	draft := h.Composer.Draft(route.form)
	form := frontend_domain.TaskFormData{
		Action:          route.base,
		SubmitURL:       composePath + "/submit",
		ResetURL:        composePath + "/reset",
		Edit:            route.form == compose.FormEdit,
		TaskId:          route.id,
		Name:            draft.Name,
		Message:         draft.Message,
		IntervalValue:   draft.IntervalValue,
		IntervalUnit:    draft.IntervalUnit,
		SendImmediately: draft.SendImmediately,
		Chats:           rv.ChatOptions(h.Composer.Chats(), draft.Chats.Has),
		Selected:        draft.Chats.Len(),
		Files:           rv.AttachmentTiles(draft.Files),
		Common:          common,
	}
	if form.Edit {
		form.SubmitURL = "/tasks/" + url.PathEscape(route.id) + "/update"
		form.ResetURL = route.base + "/cancel"
	}
	if i, ok := h.Composer.Dragging(route.form); ok {
		form.Dragging = &i
	}
	h.renderTemplate(w, page, common, frontend_domain.ComposePageData{Form: form})
}

func (h *Handler) ComposeGetHandler(w http.ResponseWriter, r *http.Request) {
	err := h.ensureChats(r)
	h.renderForm(w, r, formRoute{form: compose.FormCreate, base: composePath}, err)
}

// EditGetHandler opens a task in the edit form. A task already open keeps
// its unsaved changes.
func (h *Handler) EditGetHandler(w http.ResponseWriter, r *http.Request) {
	id := taskIdParam(r)
	if editing, ok := h.Composer.Editing(); !ok || editing != id {
		if err := h.Composer.LoadForEdit(r.Context(), id); err != nil {
			if h.afterNavigation(w, r) {
				return
			}
			h.fail(w, r, "/tasks", err)
			return
		}
	}
	err := h.ensureChats(r)
	h.renderForm(w, r, formRoute{form: compose.FormEdit, id: id, base: editPath(id)}, err)
}

func (h *Handler) ToggleChatHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	h.saveFields(r, route)

	chatId, err := parseInt64Param(chi.URLParam(r, "chat"), "chat id")
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	h.Composer.ToggleChat(route.form, chatId)
	http.Redirect(w, r, route.base, http.StatusSeeOther)
}

// chosenFiles drops the empty part browsers send for an untouched file input.
func chosenFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range form.File["files"] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		out = append(out, fh)
	}
	return out
}

func (h *Handler) AddFilesHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	if err := validation.ValidateAndParseMultipart(r, w, MaxRequestSize); err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	h.saveFields(r, route)

	// an oversized batch keeps what fits, like List.Append
	headers := chosenFiles(r.MultipartForm)
	overflow := len(headers) > attachments.MaxItems
	if overflow {
		headers = headers[:attachments.MaxItems]
	}
	uploads, err := validation.ReadUploads(headers, attachments.MaxItems, MaxFileSize)
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}

	items := make([]attachments.Item, 0, len(uploads))
	for _, up := range uploads {
		item := attachments.NewItem(up.Filename, up.ContentType, up.Data)
		if !item.Meta.IsImage() && !item.Meta.IsVideo() {
			h.fail(w, r, route.base, validation.ErrInvalidMimeType)
			return
		}
		items = append(items, item)
	}

	err = h.Composer.AddFiles(route.form, items...)
	if overflow || errors.Is(err, attachments.ErrTooManyAttachments) {
		h.redirectWithFlash(w, r, route.base, flashCookieError, h.renderer().T("max_files_error"))
		return
	}
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	http.Redirect(w, r, route.base, http.StatusSeeOther)
}

func (h *Handler) fileIndex(r *http.Request) (int, error) {
	return parseIntParam(chi.URLParam(r, "index"), "file index")
}

func (h *Handler) RemoveFileHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	h.saveFields(r, route)

	i, err := h.fileIndex(r)
	if err == nil {
		err = h.Composer.RemoveFile(route.form, i)
	}
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	h.Composer.EndDrag(route.form)
	http.Redirect(w, r, route.base, http.StatusSeeOther)
}

// MoveFileHandler moves the file at ?from= to position ?to=.
func (h *Handler) MoveFileHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	h.saveFields(r, route)

	q := r.URL.Query()
	from, err := parseIntParam(q.Get("from"), "from")
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	to, err := parseIntParam(q.Get("to"), "to")
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	if _, err := h.Composer.MoveFile(route.form, from, to); err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	http.Redirect(w, r, route.base, http.StatusSeeOther)
}

// StartDragHandler picks up a file; the next DropHandler call places it.
func (h *Handler) StartDragHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	h.saveFields(r, route)

	i, err := h.fileIndex(r)
	if err == nil && (i < 0 || i >= h.Composer.Draft(route.form).Files.Len()) {
		err = attachments.ErrIndexOutOfRange
	}
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	h.Composer.StartDrag(route.form, i)
	http.Redirect(w, r, route.base, http.StatusSeeOther)
}

func (h *Handler) DropHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	h.saveFields(r, route)

	i, err := h.fileIndex(r)
	if err == nil {
		_, err = h.Composer.DropOn(route.form, i)
	}
	if err != nil {
		h.fail(w, r, route.base, err)
		return
	}
	http.Redirect(w, r, route.base, http.StatusSeeOther)
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	route := formRoute{form: compose.FormCreate, base: composePath}
	h.saveFields(r, route)

	if _, err := h.Composer.Create(r.Context()); err != nil {
		if h.afterNavigation(w, r) {
			return
		}
		h.fail(w, r, route.base, err)
		return
	}
	if h.afterNavigation(w, r) {
		return
	}
	h.redirectWithFlash(w, r, "/tasks", flashCookieSuccess, h.renderer().T("task_scheduled"))
}

func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	h.Composer.ResetCreate()
	http.Redirect(w, r, composePath, http.StatusSeeOther)
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := h.formOf(w, r)
	if !ok {
		return
	}
	h.saveFields(r, route)

	if err := h.Composer.SaveEdit(r.Context()); err != nil {
		if h.afterNavigation(w, r) {
			return
		}
		h.fail(w, r, route.base, err)
		return
	}
	if h.afterNavigation(w, r) {
		return
	}
	h.redirectWithFlash(w, r, "/tasks", flashCookieSuccess, h.renderer().T("task_updated"))
}

func (h *Handler) CancelEditHandler(w http.ResponseWriter, r *http.Request) {
	h.Composer.CloseEdit()
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

var commandMessages = map[compose.Command]string{
	compose.Pause:     "task_paused",
	compose.Resume:    "task_resumed",
	compose.Archive:   "task_archived",
	compose.Unarchive: "task_unarchived",
	compose.Delete:    "task_deleted",
}

// TaskCommandHandler runs pause, resume, archive, unarchive or delete.
// Destructive commands need confirm=1.
func (h *Handler) TaskCommandHandler(w http.ResponseWriter, r *http.Request) {
	cmd := compose.Command(chi.URLParam(r, "command"))
	msgKey, known := commandMessages[cmd]
	if !known {
		http.NotFound(w, r)
		return
	}

	back := "/tasks"
	if h.Sync.Snapshot().Archived {
		back = "/tasks?archived=1"
	}

	err := h.Composer.Run(r.Context(), cmd, taskIdParam(r), confirmed(r))
	if errors.Is(err, compose.ErrNotConfirmed) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if h.afterNavigation(w, r) {
		return
	}
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.redirectWithFlash(w, r, back, flashCookieSuccess, h.renderer().T(msgKey))
}

// RefreshChatsHandler re-reads the chat directory for the form named by the
// return field, keeping what was typed in it.
func (h *Handler) RefreshChatsHandler(w http.ResponseWriter, r *http.Request) {
	back := safeReturn(r.FormValue("return"), composePath)
	if back == composePath {
		h.saveFields(r, formRoute{form: compose.FormCreate})
	} else if id, ok := h.Composer.Editing(); ok && back == editPath(id) {
		h.saveFields(r, formRoute{form: compose.FormEdit})
	}

	if _, err := h.Composer.RefreshChats(r.Context()); err != nil {
		if h.afterNavigation(w, r) {
			return
		}
		h.fail(w, r, back, err)
		return
	}
	h.redirectWithFlash(w, r, back, flashCookieSuccess, h.renderer().T("chats_refreshed"))
}
