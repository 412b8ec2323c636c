package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/purplesanya/tg-bot/shared/logger"
	"github.com/purplesanya/tg-bot/shared/middleware/ratelimiter"
)

// RateLimit rejects requests whose identity has run out of tokens. limited
// writes the rejection; nil means a plain 429. Requests without an identity
// pass through so the handler can report the missing field itself.
func RateLimit(rl *ratelimiter.KeyedLimiter, getIdentity func(r *http.Request) (string, error), limited http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limit exceeded", "path", r.URL.Path)
				if limited != nil {
					limited.ServeHTTP(w, r)
					return
				}
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIP extracts the client address from RemoteAddr. Forwarding headers are
// ignored; the UI is served directly.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// GetFieldFromForm keys the limiter on a form field, e.g. the phone number
// of a login attempt.
func GetFieldFromForm(field string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		if err := r.ParseForm(); err != nil {
			return "", errors.New("failed to parse form")
		}
		value := strings.TrimSpace(r.FormValue(field))
		if value == "" {
			return "", fmt.Errorf("%s field is required", field)
		}
		return value, nil
	}
}
