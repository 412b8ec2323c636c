package middleware

import (
	"net/http"

	"github.com/purplesanya/tg-bot/shared/utils"
)

const flashCookieError = "flash_error"

// Auth guards app pages. authenticated bootstraps the stored account when
// needed and reports whether a session is live; admin reports the admin flag
// of the active account.
type Auth struct {
	authenticated func(r *http.Request) bool
	admin         func(r *http.Request) bool
	flash         utils.FlashOptions
}

func NewAuth(authenticated, admin func(r *http.Request) bool, flash utils.FlashOptions) *Auth {
	return &Auth{authenticated: authenticated, admin: admin, flash: flash}
}

// NeedAuth sends unauthenticated visitors to the login page.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.authenticated(r) {
				http.Redirect(w, r, EntryTarget, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly keeps the admin tab to admin accounts.
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.authenticated(r) {
				http.Redirect(w, r, EntryTarget, http.StatusSeeOther)
				return
			}
			if !a.admin(r) {
				utils.SetFlash(w, flashCookieError, "Access denied", a.flash)
				http.Redirect(w, r, "/tasks", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
