package accounts

import (
	"fmt"
	"sync"

	"github.com/purplesanya/tg-bot/shared/domain"
	"github.com/purplesanya/tg-bot/shared/logger"
)

// State is everything the client persists locally.
type State struct {
	UserAccounts Data        `json:"userAccounts"`
	Preferences  Preferences `json:"preferences"`
}

// Persister loads and saves the local state.
type Persister interface {
	Load() (State, error)
	Save(State) error
}

// Store is the single owner of the local account state. Every mutation is
// one read-modify-persist critical section, so readers never observe an
// active id that does not match a stored account.
type Store struct {
	mu        sync.Mutex
	persister Persister
	state     State
}

// New loads the persisted state. Unreadable state is logged and replaced by
// the empty store rather than failing startup.
func New(persister Persister) *Store {
	state, err := persister.Load()
	if err != nil {
		logger.Log.Warn("discarding unreadable account state",
			"component", "accounts",
			"error", err)
		state = State{}
	}
	state.UserAccounts = state.UserAccounts.normalize()
	return &Store{persister: persister, state: state}
}

// Snapshot returns the current account data.
func (s *Store) Snapshot() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserAccounts.clone()
}

func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Preferences.clone()
}

// AddOrUpdate stores the user and makes it active.
func (s *Store) AddOrUpdate(user domain.User) (Data, error) {
	return s.updateAccounts(func(d Data) Data { return d.Upsert(user) })
}

// Remove drops the account and re-points the active id if needed.
func (s *Store) Remove(id domain.UserId) (Data, error) {
	return s.updateAccounts(func(d Data) Data { return d.Remove(id) })
}

// RemoveActive drops whichever account is active at the moment of the call
// and picks the fallback in the same critical section. removed is the zero
// User when there was no active account.
func (s *Store) RemoveActive() (removed domain.User, remaining Data, err error) {
	var found bool
	remaining, err = s.updateAccounts(func(d Data) Data {
		removed, found = d.Active()
		if !found {
			return d
		}
		return d.Remove(removed.Id)
	})
	if !found {
		return domain.User{}, remaining, err
	}
	return removed, remaining, err
}

// SetActive marks a stored account active. Unknown ids are an error.
func (s *Store) SetActive(id domain.UserId) (Data, error) {
	var known bool
	data, err := s.updateAccounts(func(d Data) Data {
		var next Data
		next, known = d.Activate(id)
		return next
	})
	if err != nil {
		return data, err
	}
	if !known {
		return data, fmt.Errorf("account %d is not stored", id)
	}
	return data, nil
}

func (s *Store) SetLanguage(tag domain.LanguageTag) error {
	return s.updatePreferences(func(p Preferences) Preferences {
		next := p.clone()
		next.Language = tag
		return next
	})
}

// RememberSimplifiedLogin records that the account prefers phone-only login.
func (s *Store) RememberSimplifiedLogin(id domain.UserId, phone domain.Phone) error {
	return s.updatePreferences(func(p Preferences) Preferences { return p.withSimplified(id, phone) })
}

func (s *Store) ForgetSimplifiedLogin(id domain.UserId) error {
	return s.updatePreferences(func(p Preferences) Preferences { return p.withoutSimplified(id) })
}

// ForgetSimplifiedPhone clears the preference of every account using phone.
func (s *Store) ForgetSimplifiedPhone(phone domain.Phone) error {
	return s.updatePreferences(func(p Preferences) Preferences { return p.withoutPhone(phone) })
}

func (s *Store) updateAccounts(fn func(Data) Data) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.UserAccounts = fn(s.state.UserAccounts)
	if err := s.persister.Save(next); err != nil {
		return s.state.UserAccounts.clone(), fmt.Errorf("failed to persist accounts: %w", err)
	}
	s.state = next
	return next.UserAccounts.clone(), nil
}

func (s *Store) updatePreferences(fn func(Preferences) Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Preferences = fn(s.state.Preferences)
	if err := s.persister.Save(next); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	s.state = next
	return nil
}
