package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/purplesanya/tg-bot/shared/csrf"
	"github.com/purplesanya/tg-bot/shared/logger"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
)

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf_token"

type CSRFConfig struct {
	SecureCookies bool
	// MaxMultipartMemory bounds the in-memory part of upload forms parsed
	// while looking for the token.
	MaxMultipartMemory int64
}

// GenerateCSRFToken makes sure every visitor carries a token cookie and
// exposes it to templates.
func GenerateCSRFToken(config CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				token, err = csrf.GenerateToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   config.SecureCookies,
					SameSite: http.SameSiteStrictMode,
					MaxAge:   86400,
				})
			}

			ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateCSRFToken checks state-changing requests. The token comes from the
// form field or, for scripted calls, the X-CSRF-Token header.
func ValidateCSRFToken(config CSRFConfig) func(http.Handler) http.Handler {
	maxMemory := config.MaxMultipartMemory
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(csrfCookieName)
			if err != nil {
				logger.Log.Warn("CSRF token cookie missing", "path", r.URL.Path)
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			token := r.Header.Get(csrfHeader)
			if token == "" {
				if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
					if err := r.ParseMultipartForm(maxMemory); err != nil {
						logger.Log.Warn("failed to parse multipart form", "error", err)
						http.Error(w, "Invalid form data", http.StatusBadRequest)
						return
					}
				} else if err := r.ParseForm(); err != nil {
					logger.Log.Warn("failed to parse form", "error", err)
					http.Error(w, "Invalid form data", http.StatusBadRequest)
					return
				}
				token = r.FormValue(csrfFormField)
			}

			if !csrf.ValidateToken(cookie.Value, token) {
				logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path)
				http.Error(w, "CSRF token invalid", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetCSRFTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenContextKey).(string)
	return token
}
