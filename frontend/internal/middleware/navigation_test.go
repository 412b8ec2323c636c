package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigation(t *testing.T) {
	tests := []struct {
		name     string
		nav      session.Navigation
		method   string
		wantCode int
		wantLoc  string
	}{
		{"nothing pending", session.Navigation{}, "GET", http.StatusOK, ""},
		{"reload", session.Navigation{Kind: session.NavReload}, "GET", http.StatusSeeOther, "/"},
		{"entry", session.Navigation{Kind: session.NavEntry}, "GET", http.StatusSeeOther, "/login"},
		{"post redirects too", session.Navigation{Kind: session.NavEntry, Delay: time.Second}, "POST", http.StatusSeeOther, "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New()
			if !tt.nav.None() {
				sess.Navigate(tt.nav)
			}
			handler := Navigation(sess, nil)(okHandler())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/tasks", nil))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			assert.True(t, sess.Pending().None(), "navigation is consumed")
		})
	}
}

func TestNavigation_DelayedUsesInterstitial(t *testing.T) {
	sess := session.New()
	sess.BeginEnding()
	sess.Navigate(session.Navigation{Kind: session.NavReload, Delay: 2 * time.Second})

	var resets int
	sess.OnReset(func() { resets++ })

	var gotTarget string
	var gotDelay time.Duration
	handler := Navigation(sess, func(w http.ResponseWriter, r *http.Request, target string, delay time.Duration) {
		gotTarget, gotDelay = target, delay
		w.WriteHeader(http.StatusOK)
	})(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/tasks", nil))

	assert.Equal(t, "/", gotTarget)
	assert.Equal(t, 2*time.Second, gotDelay)
	assert.Equal(t, 1, resets)
	assert.False(t, sess.Ending(), "a consumed navigation starts a new scope")

	// the next request passes straight through
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/tasks", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resets)
}

func TestAuth(t *testing.T) {
	yes := func(*http.Request) bool { return true }
	no := func(*http.Request) bool { return false }

	t.Run("need auth redirects", func(t *testing.T) {
		a := NewAuth(no, no, utils.FlashOptions{})
		w := httptest.NewRecorder()
		a.NeedAuth()(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/tasks", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("need auth passes", func(t *testing.T) {
		a := NewAuth(yes, no, utils.FlashOptions{})
		w := httptest.NewRecorder()
		a.NeedAuth()(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/tasks", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin only flashes non admins", func(t *testing.T) {
		a := NewAuth(yes, no, utils.FlashOptions{})
		w := httptest.NewRecorder()
		a.AdminOnly()(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
		assert.Equal(t, "/tasks", w.Header().Get("Location"))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "flash_error", cookies[0].Name)
	})

	t.Run("admin only passes admins", func(t *testing.T) {
		a := NewAuth(yes, yes, utils.FlashOptions{})
		w := httptest.NewRecorder()
		a.AdminOnly()(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
