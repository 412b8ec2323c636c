package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/purplesanya/tg-bot/shared/middleware/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("allows request within rate limit", func(t *testing.T) {
		rl := ratelimiter.New(1, 1, time.Minute)
		defer rl.Stop()
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "user1", nil }, nil)(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing identity passes through", func(t *testing.T) {
		rl := ratelimiter.New(0, 0, time.Minute)
		defer rl.Stop()
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "", errors.New("no phone") }, nil)(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("blocks request exceeding rate limit", func(t *testing.T) {
		rl := ratelimiter.New(0, 1, time.Minute)
		defer rl.Stop()
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "user1", nil }, nil)(okHandler())

		w1 := httptest.NewRecorder()
		handler.ServeHTTP(w1, httptest.NewRequest("POST", "/", nil))
		assert.Equal(t, http.StatusOK, w1.Code)

		w2 := httptest.NewRecorder()
		handler.ServeHTTP(w2, httptest.NewRequest("POST", "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, w2.Code)
		assert.Equal(t, "Rate limit exceeded, try again later\n", w2.Body.String())
	})

	t.Run("custom rejection", func(t *testing.T) {
		rl := ratelimiter.New(0, 0, time.Minute)
		defer rl.Stop()
		limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "user1", nil }, limited)(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestGetFieldFromForm(t *testing.T) {
	get := GetFieldFromForm("phone")

	form := url.Values{"phone": {" +100 "}}
	req := httptest.NewRequest("POST", "/login/start", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	phone, err := get(req)
	require.NoError(t, err)
	assert.Equal(t, "+100", phone)

	empty := httptest.NewRequest("POST", "/login/start", strings.NewReader(""))
	empty.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = get(empty)
	assert.Error(t, err)
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
		wantErr    bool
	}{
		{"ipv4 with port", "192.168.1.1:1234", "192.168.1.1", false},
		{"ipv6 with port", "[::1]:8080", "::1", false},
		{"without port", "10.0.0.1", "10.0.0.1", false},
		{"garbage", "not-an-ip", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("X-Forwarded-For", "1.2.3.4")
			got, err := GetIP(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
