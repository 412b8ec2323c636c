package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/purplesanya/tg-bot/frontend/internal/authflow"
	frontend_domain "github.com/purplesanya/tg-bot/frontend/internal/domain"
	"github.com/purplesanya/tg-bot/shared/api"
)

// IndexGetHandler bootstraps the session scope and sends the visitor to the
// app or the login form.
func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	if h.Authenticated(r) {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	if h.afterNavigation(w, r) {
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginStep(state authflow.State) string {
	switch state {
	case authflow.CodeRequested:
		return "code"
	case authflow.TwoFactorRequired:
		return "password"
	case authflow.Unauthenticated, authflow.AddingAccount:
		return "phone"
	}
	return ""
}

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	if h.Authenticated(r) {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	if h.afterNavigation(w, r) {
		return
	}

	st := h.Auth.Status()
	common := h.initCommonTemplateData(w, r, h.renderer(), "login")
	h.renderTemplate(w, "login.html", common, frontend_domain.LoginPageData{
		State:      st.State,
		Simplified: st.Mode == authflow.Simplified,
		Adding:     st.Adding,
		Phone:      st.Phone,
		Step:       loginStep(st.State),
	})
}

func (h *Handler) LoginStartHandler(w http.ResponseWriter, r *http.Request) {
	req := api.StartAuthRequest{
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		ApiId:   strings.TrimSpace(r.FormValue("api_id")),
		ApiHash: strings.TrimSpace(r.FormValue("api_hash")),
	}

	err := h.Auth.RequestCode(r.Context(), req)
	if errors.Is(err, authflow.ErrFullLoginRequired) {
		h.redirectWithFlash(w, r, "/login", flashCookieInfo, h.renderer().T("full_login_required"))
		return
	}
	if err != nil {
		h.fail(w, r, "/login", err)
		return
	}
	h.redirectWithFlash(w, r, "/login", flashCookieSuccess, h.renderer().T("code_sent"))
}

func (h *Handler) LoginCodeHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.VerifyCode(r.Context(), strings.TrimSpace(r.FormValue("code"))); err != nil {
		h.fail(w, r, "/login", err)
		return
	}
	h.loggedIn(w, r)
}

func (h *Handler) LoginTwoFactorHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.VerifyTwoFactor(r.Context(), r.FormValue("password")); err != nil {
		h.fail(w, r, "/login", err)
		return
	}
	h.loggedIn(w, r)
}

// loggedIn follows a verification step. Without a queued reload the flow
// still needs the two-factor password.
func (h *Handler) loggedIn(w http.ResponseWriter, r *http.Request) {
	if h.Session.Pending().None() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.redirectWithFlash(w, r, "/", flashCookieSuccess, h.renderer().T("login_success"))
}

func (h *Handler) LoginModeHandler(w http.ResponseWriter, r *http.Request) {
	mode := authflow.Full
	if r.FormValue("mode") == authflow.Simplified.String() {
		mode = authflow.Simplified
	}
	if err := h.Auth.SetMode(mode); err != nil {
		h.fail(w, r, "/login", err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) SwitchAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(chi.URLParam(r, "id"), "account id")
	if err != nil {
		h.fail(w, r, "/tasks", err)
		return
	}

	err = h.Auth.SwitchAccount(r.Context(), id)
	if errors.Is(err, authflow.ErrAccountLost) {
		h.setFlash(w, flashCookieError, h.renderer().T("switch_failed"))
	} else if err != nil {
		h.fail(w, r, "/tasks", err)
		return
	}
	if h.afterNavigation(w, r) {
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (h *Handler) AddAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.BeginAddAccount(); err != nil {
		h.fail(w, r, "/tasks", err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) CancelAddAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.CancelAddAccount(); err != nil {
		h.fail(w, r, "/login", err)
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Auth.Logout(r.Context(), confirmed(r))
	if errors.Is(err, authflow.ErrNotConfirmed) {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	if errors.Is(err, authflow.ErrAccountLost) {
		h.setFlash(w, flashCookieError, h.renderer().T("switch_failed"))
	} else if err != nil {
		h.log.Warn("logout failed", "error", err)
	}
	if h.afterNavigation(w, r) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginRateLimited answers a code request for a phone that asked too often.
func (h *Handler) LoginRateLimited(w http.ResponseWriter, r *http.Request) {
	h.redirectWithFlash(w, r, "/login", flashCookieError, "Too many code requests, try again later.")
}
