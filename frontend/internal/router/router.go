package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/purplesanya/tg-bot/frontend/internal/handler"
	fmw "github.com/purplesanya/tg-bot/frontend/internal/middleware"
	"github.com/purplesanya/tg-bot/frontend/internal/setup"
	"github.com/purplesanya/tg-bot/frontend/templates"
	mw "github.com/purplesanya/tg-bot/shared/middleware"
	"github.com/purplesanya/tg-bot/shared/middleware/metrics"
	rl "github.com/purplesanya/tg-bot/shared/middleware/ratelimiter"
	"github.com/purplesanya/tg-bot/shared/utils"
)

// fileRoutes are the attachment and chat buttons shared by the create and
// edit forms.
func fileRoutes(r chi.Router, h *handler.Handler) {
	r.Post("/chats/{chat}/toggle", h.ToggleChatHandler)
	r.Post("/files", h.AddFilesHandler)
	r.Post("/files/move", h.MoveFileHandler)
	r.Post("/files/{index}/remove", h.RemoveFileHandler)
	r.Post("/files/{index}/drag", h.StartDragHandler)
	r.Post("/files/{index}/drop", h.DropHandler)
}

func SetupRouter(deps *setup.Dependencies) *chi.Mux {
	h := deps.Handler
	cfg := deps.Public

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(handler.MaxRequestSize))
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(cfg.SecureCookies, mw.LocalUICSP))

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(templates.Static()))))

	// Read-only snapshot for scripts on other local origins
	r.With(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})).Get("/state", h.StateHandler)

	csrfCfg := fmw.CSRFConfig{SecureCookies: cfg.SecureCookies, MaxMultipartMemory: handler.MaxRequestSize}
	auth := fmw.NewAuth(h.Authenticated, h.IsAdmin, utils.FlashOptions{TTL: cfg.FlashTTL, SecureCookies: cfg.SecureCookies})

	r.Group(func(r chi.Router) {
		r.Use(fmw.GenerateCSRFToken(csrfCfg))
		r.Use(fmw.ValidateCSRFToken(csrfCfg))
		r.Use(fmw.Navigation(deps.Session, h.Interstitial))

		// Public routes
		r.Get("/", h.IndexGetHandler)
		r.Get("/login", h.LoginGetHandler)
		r.With(
			mw.RateLimit(rl.New(1.0/30, 3, time.Hour), mw.GetFieldFromForm("phone"), http.HandlerFunc(h.LoginRateLimited)),
			mw.RateLimit(rl.New(1, 5, time.Hour), mw.GetIP, http.HandlerFunc(h.LoginRateLimited)),
		).Post("/login/start", h.LoginStartHandler)
		r.Post("/login/code", h.LoginCodeHandler)
		r.Post("/login/2fa", h.LoginTwoFactorHandler)
		r.Post("/login/mode", h.LoginModeHandler)
		r.Post("/accounts/add/cancel", h.CancelAddAccountHandler)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.NeedAuth())

			r.Post("/logout", h.LogoutHandler)
			r.Post("/accounts/add", h.AddAccountHandler)
			r.Post("/accounts/{id}/switch", h.SwitchAccountHandler)

			r.Get("/tasks", h.TasksGetHandler)
			r.Get("/dashboard", h.DashboardGetHandler)

			r.Route("/compose", func(r chi.Router) {
				r.Get("/", h.ComposeGetHandler)
				fileRoutes(r, h)
				r.Post("/submit", h.SubmitHandler)
				r.Post("/reset", h.ResetHandler)
			})

			r.Route("/tasks/{id}", func(r chi.Router) {
				r.Route("/edit", func(r chi.Router) {
					r.Get("/", h.EditGetHandler)
					fileRoutes(r, h)
					r.Post("/cancel", h.CancelEditHandler)
				})
				r.Post("/update", h.UpdateHandler)
				r.Post("/{command}", h.TaskCommandHandler)
			})

			r.Post("/chats/refresh", h.RefreshChatsHandler)

			r.Get("/settings", h.SettingsGetHandler)
			r.Post("/settings/notifications", h.NotificationsHandler)
			r.Post("/settings/simplified_login", h.SimplifiedLoginHandler)
			r.Post("/settings/language", h.LanguageHandler)
		})

		r.With(auth.AdminOnly()).Get("/admin", h.AdminGetHandler)
	})

	return r
}
