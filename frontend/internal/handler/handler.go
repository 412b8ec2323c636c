package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
	"github.com/purplesanya/tg-bot/frontend/internal/attachments"
	"github.com/purplesanya/tg-bot/frontend/internal/authflow"
	"github.com/purplesanya/tg-bot/frontend/internal/compose"
	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/frontend/internal/tasksync"
	"github.com/purplesanya/tg-bot/shared/config"
	"github.com/purplesanya/tg-bot/shared/logger"
	"github.com/purplesanya/tg-bot/shared/validation"
)

const (
	// MaxFileSize is the largest single upload accepted by the forms.
	MaxFileSize int64 = 20 << 20
	// formBuffer is the room left for text fields and multipart framing.
	formBuffer int64 = 1 << 20
)

// MaxRequestSize bounds every request body, an upload form included.
var MaxRequestSize = validation.CalculateMaxRequestSize(attachments.MaxItems*MaxFileSize, formBuffer)

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Session   *session.Context
	Accounts  *accounts.Store
	Auth      *authflow.Machine
	Sync      *tasksync.Loop
	Composer  *compose.Composer
	// LoopCtx parents the sync loop; it is cancelled at shutdown.
	LoopCtx context.Context

	log *slog.Logger
	now func() time.Time
}

func New(templates map[string]*template.Template, publicCfg config.Public, sess *session.Context, store *accounts.Store,
	auth *authflow.Machine, loop *tasksync.Loop, composer *compose.Composer, loopCtx context.Context) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Session:   sess,
		Accounts:  store,
		Auth:      auth,
		Sync:      loop,
		Composer:  composer,
		LoopCtx:   loopCtx,
		log:       logger.Component("handler"),
		now:       time.Now,
	}
}

// Authenticated bootstraps the stored account on the first page load of a
// session scope and reports whether the app can be shown. A live session
// starts background polling.
func (h *Handler) Authenticated(r *http.Request) bool {
	if err := h.Auth.Bootstrap(r.Context()); err != nil {
		h.log.Debug("bootstrap failed", "error", err)
	}
	if !h.Session.Pending().None() {
		return false
	}
	st := h.Auth.Status()
	if st.State != authflow.Authenticated || st.User == nil {
		return false
	}
	h.Sync.Start(h.LoopCtx)
	return true
}

// IsAdmin reports the admin flag of the logged-in account.
func (h *Handler) IsAdmin(r *http.Request) bool {
	st := h.Auth.Status()
	return st.User != nil && st.User.IsAdmin
}
