package handler

import (
	"net/http"

	"github.com/purplesanya/tg-bot/frontend/internal/authflow"
	frontend_domain "github.com/purplesanya/tg-bot/frontend/internal/domain"
	"github.com/purplesanya/tg-bot/frontend/internal/view"
)

const settingsPath = "/settings"

func (h *Handler) SettingsGetHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Auth.Settings(r.Context())
	if h.afterNavigation(w, r) {
		return
	}

	rv := h.renderer()
	common := h.initCommonTemplateData(w, r, rv, "settings")
	refreshed(common, err)
	h.renderTemplate(w, "settings.html", common, frontend_domain.SettingsPageData{
		Notifications:   settings.Notifications,
		SimplifiedLogin: settings.SimplifiedLogin,
		Language:        rv.Lang(),
		Languages:       authflow.Languages(),
	})
}

func enabled(r *http.Request) bool {
	return r.FormValue("enabled") == "1"
}

func (h *Handler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	on := enabled(r)
	if err := h.Auth.SetNotifications(r.Context(), on); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	key := "notifications_disabled"
	if on {
		key = "notifications_enabled"
	}
	h.redirectWithFlash(w, r, settingsPath, flashCookieSuccess, h.renderer().T(key))
}

func (h *Handler) SimplifiedLoginHandler(w http.ResponseWriter, r *http.Request) {
	on := enabled(r)
	if err := h.Auth.SetSimplifiedLogin(r.Context(), on); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	key := "simplified_disabled"
	if on {
		key = "simplified_enabled"
	}
	h.redirectWithFlash(w, r, settingsPath, flashCookieSuccess, h.renderer().T(key))
}

// LanguageHandler stores the display language. The notice is already shown
// in the new language.
func (h *Handler) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	tag := r.FormValue("language")
	if err := h.Auth.SetLanguage(tag); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	h.redirectWithFlash(w, r, settingsPath, flashCookieSuccess, view.NewCatalog(tag).T("language_changed"))
}
