// Package tasksync keeps the visible task, stats and admin views in step
// with the backend by polling on a fixed period.
package tasksync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
	"github.com/purplesanya/tg-bot/shared/logger"
)

type View int

const (
	ViewTasks View = iota
	ViewDashboard
	ViewAdmin
)

var Views = []View{ViewTasks, ViewDashboard, ViewAdmin}

func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewAdmin:
		return "admin"
	default:
		return "tasks"
	}
}

type API interface {
	GetTasks(ctx context.Context, archived bool, timezone string) ([]domain.Task, error)
	GetStats(ctx context.Context) (domain.Stats, error)
	GetAdminStats(ctx context.Context) (domain.AdminStats, error)
	GetAdminUsers(ctx context.Context) ([]domain.AdminUser, error)
	GetAdminUserTasks(ctx context.Context, userId domain.UserId, timezone string) ([]domain.Task, error)
	AuthStatus(ctx context.Context) error
}

type Options struct {
	Interval time.Duration
	Timezone string
}

type Loop struct {
	api      API
	sess     *session.Context
	interval time.Duration
	timezone string
	log      *slog.Logger

	halted atomic.Bool

	mu   sync.Mutex
	snap Snapshot
	subs map[int]chan Snapshot
	next int
	run  *run
}

// run is one ticking scope between Start and Stop.
type run struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *run) stop() {
	r.once.Do(r.cancel)
}

func New(client API, sess *session.Context, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Second
	}
	if opts.Timezone == "" {
		opts.Timezone = "UTC"
	}
	return &Loop{
		api:      client,
		sess:     sess,
		interval: opts.Interval,
		timezone: opts.Timezone,
		log:      logger.Component("tasksync"),
		snap:     initialSnapshot(),
		subs:     make(map[int]chan Snapshot),
	}
}

func (l *Loop) Interval() time.Duration { return l.interval }

// Start begins ticking. It is a no-op while a run is active.
func (l *Loop) Start(parent context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.run != nil {
		select {
		case <-l.run.done:
		default:
			if !l.halted.Load() {
				return
			}
		}
	}

	ctx, cancel := context.WithCancel(parent)
	r := &run{cancel: cancel, done: make(chan struct{})}
	l.run = r
	l.halted.Store(false)
	go l.loop(ctx, r)
}

func (l *Loop) loop(ctx context.Context, r *run) {
	defer close(r.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !l.Tick(ctx) {
				return
			}
		}
	}
}

// Stop halts ticking and cancels in-flight refreshes of the current run.
// Safe to call any number of times, including after the loop exited.
func (l *Loop) Stop() {
	l.halted.Store(true)
	l.mu.Lock()
	r := l.run
	l.mu.Unlock()
	if r != nil {
		r.stop()
	}
}

// Wait blocks until the current run's goroutine has exited.
func (l *Loop) Wait() {
	l.mu.Lock()
	r := l.run
	l.mu.Unlock()
	if r != nil {
		<-r.done
	}
}

// Reset discards all fetched data; a new session scope starts empty.
func (l *Loop) Reset() {
	l.publish(func(s *Snapshot) {
		version := s.Version
		*s = initialSnapshot()
		s.Version = version
	})
}

// Tick runs one polling round. It reports false once the session is ending
// or the loop was stopped, and then does nothing.
func (l *Loop) Tick(ctx context.Context) bool {
	if l.halted.Load() || ctx.Err() != nil {
		return false
	}
	if l.sess.Ending() {
		l.Stop()
		return false
	}
	ticksTotal.Inc()

	visible := l.Snapshot().Visible

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := l.Refresh(ctx, visible, false); err != nil {
			l.log.Debug("tick refresh failed", "view", visible.String(), "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		// only the 401 side effect matters
		_ = l.api.AuthStatus(ctx)
	}()
	wg.Wait()
	return true
}

// Refresh fetches one view now. With showLoader the view is marked loading
// while the fetch is in flight.
func (l *Loop) Refresh(ctx context.Context, view View, showLoader bool) error {
	if showLoader {
		l.publish(func(s *Snapshot) { s.Loading = s.withLoading(view, true) })
		defer l.publish(func(s *Snapshot) { s.Loading = s.withLoading(view, false) })
	}

	var err error
	switch view {
	case ViewTasks:
		err = l.refreshTasks(ctx)
	case ViewDashboard:
		err = l.refreshStats(ctx)
	case ViewAdmin:
		err = l.refreshAdmin(ctx)
	}
	l.recordResult(view, err)
	return err
}

func (l *Loop) refreshTasks(ctx context.Context) error {
	archived := l.Snapshot().Archived
	tasks, err := l.api.GetTasks(ctx, archived, l.timezone)
	if err != nil {
		return err
	}
	l.publish(func(s *Snapshot) {
		// the archive toggle moved on while this fetch was in flight
		if s.Archived != archived {
			return
		}
		s.Tasks = tasks
		s.TasksLoaded = true
	})
	return nil
}

func (l *Loop) refreshStats(ctx context.Context) error {
	stats, err := l.api.GetStats(ctx)
	if err != nil {
		return err
	}
	l.publish(func(s *Snapshot) { s.Stats = &stats })
	return nil
}

// refreshAdmin loads stats first, then the user list.
func (l *Loop) refreshAdmin(ctx context.Context) error {
	stats, err := l.api.GetAdminStats(ctx)
	if err != nil {
		return err
	}
	l.publish(func(s *Snapshot) { s.AdminStats = &stats })

	users, err := l.api.GetAdminUsers(ctx)
	if err != nil {
		return err
	}
	l.publish(func(s *Snapshot) { s.AdminUsers = users })
	return nil
}

// LoadAdminUserTasks fetches every task of one user for the admin view.
func (l *Loop) LoadAdminUserTasks(ctx context.Context, userId domain.UserId) error {
	tasks, err := l.api.GetAdminUserTasks(ctx, userId, l.timezone)
	if err != nil {
		l.recordResult(ViewAdmin, err)
		return err
	}
	l.publish(func(s *Snapshot) {
		id := userId
		s.AdminUserId = &id
		s.AdminUserTasks = tasks
	})
	return nil
}

func (l *Loop) recordResult(view View, err error) {
	if err != nil {
		refreshErrorsTotal.WithLabelValues(view.String()).Inc()
	}
	if internal_errors.IsSessionExpired(err) {
		return
	}
	l.publish(func(s *Snapshot) {
		s.Err = err
		if err == nil {
			s.FetchedAt = time.Now()
		}
	})
}

// SetVisible records which view is on screen; only it is polled.
func (l *Loop) SetVisible(view View) {
	l.publish(func(s *Snapshot) { s.Visible = view })
}

// SwitchTab shows the view and refreshes it with a loader. Entering the
// task list always starts on the active (non-archived) tasks.
func (l *Loop) SwitchTab(ctx context.Context, view View) error {
	l.publish(func(s *Snapshot) {
		s.Visible = view
		if view == ViewTasks && s.Archived {
			s.Archived = false
			s.Tasks = nil
			s.TasksLoaded = false
		}
	})
	return l.Refresh(ctx, view, true)
}

// SetArchived selects the archived or the active task list and refreshes it.
func (l *Loop) SetArchived(ctx context.Context, archived bool) error {
	l.publish(func(s *Snapshot) {
		s.Visible = ViewTasks
		if s.Archived != archived {
			s.Archived = archived
			s.Tasks = nil
			s.TasksLoaded = false
		}
	})
	return l.Refresh(ctx, ViewTasks, true)
}

func (l *Loop) ToggleArchived(ctx context.Context) error {
	return l.SetArchived(ctx, !l.Snapshot().Archived)
}
