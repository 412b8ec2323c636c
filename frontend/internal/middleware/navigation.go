package middleware

import (
	"net/http"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/shared/logger"
)

const (
	ReloadTarget = "/"
	EntryTarget  = "/login"
)

// Target is the page a navigation lands on.
func Target(n session.Navigation) string {
	if n.Kind == session.NavEntry {
		return EntryTarget
	}
	return ReloadTarget
}

// Interstitial renders a page that moves on to target after delay.
type Interstitial func(w http.ResponseWriter, r *http.Request, target string, delay time.Duration)

// Navigation turns a pending session navigation into a browser redirect.
// Consuming it starts a new session scope. A navigation with a delay is
// shown through interstitial so the notice stays visible.
func Navigation(sess *session.Context, interstitial Interstitial) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess.Pending().None() {
				next.ServeHTTP(w, r)
				return
			}
			nav := sess.TakeNavigation()
			if nav.None() {
				next.ServeHTTP(w, r)
				return
			}

			target := Target(nav)
			logger.Log.Debug("consuming navigation", "kind", nav.Kind.String(), "target", target, "path", r.URL.Path)
			if nav.Delay > 0 && interstitial != nil && r.Method == http.MethodGet {
				interstitial(w, r, target, nav.Delay)
				return
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}
