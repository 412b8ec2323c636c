package utils

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/purplesanya/tg-bot/shared/logger"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to write json response", "error", err)
	}
}

// FlashOptions are the cookie attributes of transient notifications.
type FlashOptions struct {
	TTL           time.Duration
	SecureCookies bool
}

// SetFlash stores a one-shot message in a cookie. The value is base64 so any
// text survives the cookie syntax.
func SetFlash(w http.ResponseWriter, name, message string, opts FlashOptions) {
	if message == "" {
		return
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.StdEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads a flash cookie and expires it.
func PopFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	msg, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
