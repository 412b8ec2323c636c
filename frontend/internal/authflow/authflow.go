// Package authflow drives login, account switching and logout for the
// stored accounts. Every network step goes through the API client, so a 401
// at any point ends up in the client's single recovery path.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
	"github.com/purplesanya/tg-bot/shared/logger"
)

type State int

const (
	// Booting means the page has not been bootstrapped for this scope yet.
	Booting State = iota
	Unauthenticated
	CodeRequested
	CodeVerified
	TwoFactorRequired
	TwoFactorVerified
	Authenticated
	AddingAccount
	SwitchingAccount
)

var stateNames = map[State]string{
	Booting:           "booting",
	Unauthenticated:   "unauthenticated",
	CodeRequested:     "code_requested",
	CodeVerified:      "code_verified",
	TwoFactorRequired: "two_factor_required",
	TwoFactorVerified: "two_factor_verified",
	Authenticated:     "authenticated",
	AddingAccount:     "adding_account",
	SwitchingAccount:  "switching_account",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode is the login form variant.
type Mode int

const (
	// Full asks for phone, api_id and api_hash.
	Full Mode = iota
	// Simplified asks for the phone only; the backend uses stored credentials.
	Simplified
)

func (m Mode) String() string {
	if m == Simplified {
		return "simplified"
	}
	return "full"
}

var (
	ErrFullLoginRequired  = errors.New("full login required for this number")
	ErrAccountLost        = errors.New("session expired, please log in again")
	ErrNotConfirmed       = errors.New("logout not confirmed")
	ErrInvalidTransition  = errors.New("invalid auth transition")
	ErrVerificationFailed = errors.New("verification failed")
)

// API is the subset of the backend API the flow needs.
type API interface {
	StartAuth(ctx context.Context, req api.StartAuthRequest) error
	VerifyCode(ctx context.Context, code string) (api.VerifyResponse, error)
	VerifyTwoFactor(ctx context.Context, password string) (api.VerifyResponse, error)
	SwitchAccount(ctx context.Context, id domain.UserId) error
	UserInfo(ctx context.Context) (api.UserInfoResponse, error)
	Logout(ctx context.Context) error
	GetNotifications(ctx context.Context) (bool, error)
	SetNotifications(ctx context.Context, enabled bool) error
	GetSimplifiedLogin(ctx context.Context) (bool, error)
	SetSimplifiedLogin(ctx context.Context, enabled bool) error
}

// Stopper stops background polling for the current session scope.
type Stopper interface {
	Stop()
}

type Options struct {
	// SwitchFailureDelay is how long the failure notice stays visible before
	// navigating away from a rejected account switch.
	SwitchFailureDelay time.Duration
	// LoginReloadDelay is the pause after a successful login before reload.
	LoginReloadDelay time.Duration
}

// Status is a consistent view of the flow for rendering.
type Status struct {
	State  State
	Mode   Mode
	Adding bool
	// Phone prefills the phone field: the number of the login in progress,
	// or the remembered simplified-login number.
	Phone domain.Phone
	User  *domain.User
}

type Machine struct {
	api      API
	store    *accounts.Store
	sess     *session.Context
	sync     Stopper
	opts     Options
	validate *validator.Validate
	log      *slog.Logger

	mu     sync.Mutex
	state  State
	mode   Mode
	adding bool
	phone  domain.Phone
	user   *domain.User
}

func New(client API, store *accounts.Store, sess *session.Context, stopper Stopper, opts Options) *Machine {
	m := &Machine{
		api:      client,
		store:    store,
		sess:     sess,
		sync:     stopper,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger.Component("authflow"),
	}
	sess.OnReset(m.reset)
	return m
}

// reset forgets all per-scope progress so the next page load bootstraps.
func (m *Machine) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Booting
	m.mode = Full
	m.adding = false
	m.phone = ""
	m.user = nil
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{State: m.state, Mode: m.mode, Adding: m.adding, Phone: m.phone}
	if m.user != nil {
		u := *m.user
		st.User = &u
	}
	return st
}

// transition moves to next if the current state is one of from.
func (m *Machine) transition(next State, from ...State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range from {
		if m.state == s {
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, next)
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Machine) current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Bootstrap restores the active stored account on page load. Without one it
// opens the login form in the remembered mode.
func (m *Machine) Bootstrap(ctx context.Context) error {
	if m.current() != Booting {
		return nil
	}

	data := m.store.Snapshot()
	active, ok := data.Active()
	if !ok {
		m.openLoginForm()
		return nil
	}

	m.setState(SwitchingAccount)
	err := m.api.SwitchAccount(ctx, active.Id)
	var info api.UserInfoResponse
	if err == nil {
		info, err = m.api.UserInfo(ctx)
	}
	if internal_errors.IsSessionExpired(err) && !m.sess.Pending().None() {
		// already dropped and navigating
		return err
	}
	if err == nil && info.LoggedIn && info.User != nil {
		if _, err := m.store.AddOrUpdate(*info.User); err != nil {
			m.log.Error("failed to store refreshed account", "account_id", info.User.Id, "error", err)
		}
		m.mu.Lock()
		m.state = Authenticated
		u := *info.User
		m.user = &u
		m.mu.Unlock()
		return nil
	}

	m.log.Warn("stored account could not be restored", "account_id", active.Id, "error", err)
	remaining, rmErr := m.store.Remove(active.Id)
	if rmErr != nil {
		m.log.Error("failed to remove account", "account_id", active.Id, "error", rmErr)
	}
	if remaining.ActiveAccountId != nil {
		m.sess.Navigate(session.Navigation{Kind: session.NavReload})
		return nil
	}
	m.mu.Lock()
	m.state = Unauthenticated
	m.mode = Full
	m.mu.Unlock()
	return nil
}

func (m *Machine) openLoginForm() {
	prefs := m.store.Preferences()
	phone, simplified := prefs.EntryPhone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Unauthenticated
	if simplified {
		m.mode = Simplified
		m.phone = phone
	} else {
		m.mode = Full
	}
}

// SetMode switches the login form variant. Adding an account is always Full.
func (m *Machine) SetMode(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Unauthenticated {
		return fmt.Errorf("%w: cannot change login mode in %s", ErrInvalidTransition, m.state)
	}
	m.mode = mode
	return nil
}

type simplifiedLogin struct {
	Phone string `validate:"required"`
}

type fullLogin struct {
	Phone   string `validate:"required"`
	ApiId   string `validate:"required,numeric"`
	ApiHash string `validate:"required"`
}

var loginMessages = map[string]string{
	"Phone":   "Phone number is required",
	"ApiId":   "A numeric API ID is required",
	"ApiHash": "API hash is required",
}

func (m *Machine) validateLogin(mode Mode, req api.StartAuthRequest) error {
	var target any = simplifiedLogin{Phone: req.Phone}
	if mode == Full {
		target = fullLogin{Phone: req.Phone, ApiId: req.ApiId, ApiHash: req.ApiHash}
	}
	if err := m.validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].Field()
			return &internal_errors.ValidationError{Field: field, Message: loginMessages[field]}
		}
		return err
	}
	return nil
}

// RequestCode asks the backend to send a login code. In Simplified mode the
// api credentials are not sent.
func (m *Machine) RequestCode(ctx context.Context, req api.StartAuthRequest) error {
	m.mu.Lock()
	state, mode := m.state, m.mode
	m.mu.Unlock()
	if state != Unauthenticated && state != AddingAccount && state != CodeRequested {
		return fmt.Errorf("%w: request code in %s", ErrInvalidTransition, state)
	}

	if mode == Simplified {
		req.ApiId, req.ApiHash = "", ""
	}
	if err := m.validateLogin(mode, req); err != nil {
		return err
	}

	err := m.api.StartAuth(ctx, req)
	if internal_errors.HasAction(err, internal_errors.ActionRequireFullLogin) {
		m.mu.Lock()
		m.mode = Full
		m.phone = req.Phone
		m.mu.Unlock()
		if err := m.store.ForgetSimplifiedPhone(req.Phone); err != nil {
			m.log.Error("failed to clear simplified login", "error", err)
		}
		return ErrFullLoginRequired
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// cancelled or reset while the request was in flight
	if m.state != state {
		return fmt.Errorf("%w: state changed to %s", ErrInvalidTransition, m.state)
	}
	m.state = CodeRequested
	m.phone = req.Phone
	return nil
}

func (m *Machine) VerifyCode(ctx context.Context, code string) error {
	if m.current() != CodeRequested {
		return fmt.Errorf("%w: verify code in %s", ErrInvalidTransition, m.current())
	}
	if err := m.validate.Var(code, "required"); err != nil {
		return &internal_errors.ValidationError{Field: "code", Message: "Code is required"}
	}

	resp, err := m.api.VerifyCode(ctx, code)
	if err != nil {
		return err
	}
	if resp.Needs2FA {
		return m.transition(TwoFactorRequired, CodeRequested)
	}
	if !resp.Success || resp.User == nil {
		return ErrVerificationFailed
	}
	if err := m.transition(CodeVerified, CodeRequested); err != nil {
		return err
	}
	return m.commit(*resp.User)
}

func (m *Machine) VerifyTwoFactor(ctx context.Context, password string) error {
	if m.current() != TwoFactorRequired {
		return fmt.Errorf("%w: verify password in %s", ErrInvalidTransition, m.current())
	}
	if err := m.validate.Var(password, "required"); err != nil {
		return &internal_errors.ValidationError{Field: "password", Message: "Password is required"}
	}

	resp, err := m.api.VerifyTwoFactor(ctx, password)
	if err != nil {
		return err
	}
	if !resp.Success || resp.User == nil {
		return ErrVerificationFailed
	}
	if err := m.transition(TwoFactorVerified, TwoFactorRequired); err != nil {
		return err
	}
	return m.commit(*resp.User)
}

// commit stores the verified user as the active account and reloads.
func (m *Machine) commit(user domain.User) error {
	m.mu.Lock()
	if user.Phone == "" {
		user.Phone = m.phone
	}
	m.mu.Unlock()

	if _, err := m.store.AddOrUpdate(user); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	m.mu.Lock()
	m.state = Authenticated
	m.adding = false
	m.user = &user
	m.mu.Unlock()

	m.log.Info("account logged in", "account_id", user.Id)
	m.sess.Navigate(session.Navigation{Kind: session.NavReload, Delay: m.opts.LoginReloadDelay})
	return nil
}

// BeginAddAccount opens the login form on top of the authenticated app.
func (m *Machine) BeginAddAccount() error {
	if err := m.transition(AddingAccount, Authenticated); err != nil {
		return err
	}
	m.mu.Lock()
	m.adding = true
	m.mode = Full
	m.phone = ""
	m.mu.Unlock()
	return nil
}

// CancelAddAccount drops any half-finished login and returns to the app.
func (m *Machine) CancelAddAccount() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.adding {
		return fmt.Errorf("%w: not adding an account", ErrInvalidTransition)
	}
	m.adding = false
	m.phone = ""
	m.state = Authenticated
	return nil
}

// SwitchAccount makes id the active account. The choice is persisted before
// the server call; a rejected switch drops the account.
func (m *Machine) SwitchAccount(ctx context.Context, id domain.UserId) error {
	if m.store.Snapshot().IsActive(id) {
		return nil
	}
	return m.switchTo(ctx, id)
}

func (m *Machine) switchTo(ctx context.Context, id domain.UserId) error {
	if _, err := m.store.SetActive(id); err != nil {
		return err
	}
	m.setState(SwitchingAccount)

	err := m.api.SwitchAccount(ctx, id)
	if err == nil {
		m.sess.Navigate(session.Navigation{Kind: session.NavReload})
		return nil
	}
	// the gateway already dropped the account unless the session was ending
	if internal_errors.IsSessionExpired(err) && !m.sess.Pending().None() {
		return err
	}

	m.log.Warn("account switch rejected", "account_id", id, "error", err)
	remaining, rmErr := m.store.Remove(id)
	if rmErr != nil {
		m.log.Error("failed to remove account", "account_id", id, "error", rmErr)
	}
	nav := session.Navigation{Kind: session.NavEntry, Delay: m.opts.SwitchFailureDelay}
	if remaining.ActiveAccountId != nil {
		nav.Kind = session.NavReload
	}
	m.sess.Navigate(nav)
	return ErrAccountLost
}

// Logout ends the active account's session. The backend call is best effort.
func (m *Machine) Logout(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if !m.sess.BeginEnding() {
		m.log.Info("logout ignored, session already ending")
		return nil
	}
	if m.sync != nil {
		m.sync.Stop()
	}

	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn("logout request failed", "error", err)
	}

	removed, remaining, err := m.store.RemoveActive()
	if err != nil {
		m.log.Error("failed to remove account", "error", err)
	}
	m.log.Info("logged out", "account_id", removed.Id, "remaining", len(remaining.Accounts))

	if remaining.ActiveAccountId != nil {
		return m.switchTo(ctx, *remaining.ActiveAccountId)
	}
	m.sess.Navigate(session.Navigation{Kind: session.NavEntry})
	return nil
}

// Settings are the per-account backend toggles.
type Settings struct {
	Notifications   bool
	SimplifiedLogin bool
}

func (m *Machine) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	var err error
	if s.Notifications, err = m.api.GetNotifications(ctx); err != nil {
		return s, err
	}
	if s.SimplifiedLogin, err = m.api.GetSimplifiedLogin(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (m *Machine) SetNotifications(ctx context.Context, enabled bool) error {
	return m.api.SetNotifications(ctx, enabled)
}

// SetSimplifiedLogin updates the backend toggle and remembers the active
// account's phone for the next phone-only login.
func (m *Machine) SetSimplifiedLogin(ctx context.Context, enabled bool) error {
	if err := m.api.SetSimplifiedLogin(ctx, enabled); err != nil {
		return err
	}
	active, ok := m.store.Snapshot().Active()
	if !ok {
		return nil
	}
	if enabled && active.Phone != "" {
		return m.store.RememberSimplifiedLogin(active.Id, active.Phone)
	}
	return m.store.ForgetSimplifiedLogin(active.Id)
}

var languageTags = []domain.LanguageTag{"en", "ru"}

// SetLanguage stores the preferred display language.
func (m *Machine) SetLanguage(tag domain.LanguageTag) error {
	if err := m.validate.Var(tag, "oneof=en ru"); err != nil {
		return &internal_errors.ValidationError{Field: "language", Message: fmt.Sprintf("Unsupported language %q", tag)}
	}
	return m.store.SetLanguage(tag)
}

func Languages() []domain.LanguageTag {
	return append([]domain.LanguageTag(nil), languageTags...)
}
