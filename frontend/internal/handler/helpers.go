package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/purplesanya/tg-bot/frontend/internal/compose"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
	"github.com/purplesanya/tg-bot/shared/utils"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
	flashCookieInfo    = "flash_info"
)

func (h *Handler) flashOptions() utils.FlashOptions {
	return utils.FlashOptions{TTL: h.Public.FlashTTL, SecureCookies: h.Public.SecureCookies}
}

func (h *Handler) setFlash(w http.ResponseWriter, name, msg string) {
	utils.SetFlash(w, name, msg, h.flashOptions())
}

func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	return utils.PopFlash(w, r, name)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, targetURL, name, msg string) {
	h.setFlash(w, name, msg)
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// fail reports err on targetURL. Session expiry is already being handled by
// a navigation and shows nothing.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, targetURL string, err error) {
	if msg, show := internal_errors.UserMessage(err); show {
		h.log.Debug("request failed", "path", r.URL.Path, "error", err)
		h.setFlash(w, flashCookieError, msg)
	}
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// afterNavigation redirects to the app root when the request queued a page
// navigation, so the navigation middleware consumes it on the next load.
func (h *Handler) afterNavigation(w http.ResponseWriter, r *http.Request) bool {
	if h.Session.Pending().None() {
		return false
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return true
}

func parseIntParam(value, name string) (int, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, &internal_errors.ValidationError{Field: name, Message: fmt.Sprintf("Invalid %s", name)}
	}
	return i, nil
}

func parseInt64Param(value, name string) (int64, error) {
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &internal_errors.ValidationError{Field: name, Message: fmt.Sprintf("Invalid %s", name)}
	}
	return i, nil
}

func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "1"
}

func isPoll(r *http.Request) bool {
	return r.URL.Query().Get("poll") == "1"
}

// safeReturn accepts only local paths as redirect targets.
func safeReturn(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.ContainsAny(target, "\\\r\n") {
		return fallback
	}
	return target
}

// formFields reads the text inputs of the create or edit form.
func formFields(r *http.Request) compose.Fields {
	value, err := strconv.Atoi(strings.TrimSpace(r.FormValue("interval_value")))
	if err != nil {
		value = 0
	}
	return compose.Fields{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Message:         r.FormValue("message"),
		IntervalValue:   value,
		IntervalUnit:    domain.IntervalUnit(r.FormValue("interval_unit")),
		SendImmediately: r.FormValue("send_immediately") == "1",
	}
}

func taskIdParam(r *http.Request) domain.TaskId {
	return domain.TaskId(chi.URLParam(r, "id"))
}
