package setup

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
	"github.com/purplesanya/tg-bot/frontend/internal/apiclient"
	"github.com/purplesanya/tg-bot/frontend/internal/authflow"
	"github.com/purplesanya/tg-bot/frontend/internal/compose"
	"github.com/purplesanya/tg-bot/frontend/internal/handler"
	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/frontend/internal/tasksync"
	"github.com/purplesanya/tg-bot/frontend/templates"
	"github.com/purplesanya/tg-bot/shared/config"
)

// loginReloadDelay keeps the login notice visible before the app loads.
const loginReloadDelay = 500 * time.Millisecond

type Dependencies struct {
	Handler  *handler.Handler
	Public   config.Public
	Session  *session.Context
	Accounts *accounts.Store
	Sync     *tasksync.Loop
	// CancelFunc ends the sync loop context.
	CancelFunc context.CancelFunc
}

// OpenAccounts loads the persisted account state of cfg.
func OpenAccounts(cfg config.Public) (*accounts.Store, error) {
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	file, err := accounts.NewFileStore(cfg.StatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open account state: %w", err)
	}
	return accounts.New(file), nil
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	store, err := OpenAccounts(cfg.Public)
	if err != nil {
		return nil, err
	}

	tmpls, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return Build(cfg.Public, store, tmpls), nil
}

// Build wires every component around one session context. Ending the
// session stops polling; starting a new scope also forgets everything
// fetched or typed in the previous one.
func Build(cfg config.Public, store *accounts.Store, tmpls map[string]*template.Template) *Dependencies {
	loopCtx, cancel := context.WithCancel(context.Background())

	sess := session.New()
	client := apiclient.New(cfg.APIBaseURL, cfg.RequestTimeout, sess, store)
	loop := tasksync.New(client, sess, tasksync.Options{Interval: cfg.PollInterval, Timezone: cfg.Timezone})
	composer := compose.New(client, loop, cfg.Timezone)
	auth := authflow.New(client, store, sess, loop, authflow.Options{
		SwitchFailureDelay: cfg.SwitchFailureDelay,
		LoginReloadDelay:   loginReloadDelay,
	})

	sess.OnEnd(loop.Stop)
	sess.OnReset(func() {
		loop.Stop()
		loop.Reset()
		composer.Reset()
	})

	h := handler.New(tmpls, cfg, sess, store, auth, loop, composer, loopCtx)

	return &Dependencies{
		Handler:    h,
		Public:     cfg,
		Session:    sess,
		Accounts:   store,
		Sync:       loop,
		CancelFunc: cancel,
	}
}
