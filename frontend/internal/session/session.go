// Package session holds the process-scoped session context: the "session is
// ending" flag and the pending page navigation. It is created at startup,
// injected into the API client, the auth flow and the sync loop, and reset
// whenever a navigation is consumed (the equivalent of a page load).
package session

import (
	"sync"
	"sync/atomic"
	"time"
)

type NavigationKind int

const (
	NavNone NavigationKind = iota
	// NavReload re-enters the app so the backend re-establishes a session
	// for the now-active account.
	NavReload
	// NavEntry goes to the unauthenticated entry point.
	NavEntry
)

func (k NavigationKind) String() string {
	switch k {
	case NavReload:
		return "reload"
	case NavEntry:
		return "entry"
	default:
		return "none"
	}
}

// Navigation is a requested page transition. Delay is how long the user
// should see the current page (and its notice) before the transition.
type Navigation struct {
	Kind  NavigationKind
	Delay time.Duration
}

func (n Navigation) None() bool {
	return n.Kind == NavNone
}

type Context struct {
	ending atomic.Bool

	mu          sync.Mutex
	pending     Navigation
	navigations int
	onEnd       []func()
	onReset     []func()
}

func New() *Context {
	return &Context{}
}

// Ending reports whether logout or session loss has begun.
func (c *Context) Ending() bool {
	return c.ending.Load()
}

// BeginEnding marks the session as ending. Only the first caller gets true;
// concurrent and later callers get false and must not repeat the recovery
// sequence. End hooks run once, for the winning caller.
func (c *Context) BeginEnding() bool {
	if !c.ending.CompareAndSwap(false, true) {
		return false
	}
	c.mu.Lock()
	hooks := c.onEnd
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return true
}

// OnEnd registers a hook run when the session starts ending.
func (c *Context) OnEnd(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnd = append(c.onEnd, fn)
}

// OnReset registers a hook run when a new session scope begins, that is
// when a navigation is consumed or Reset is called.
func (c *Context) OnReset(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReset = append(c.onReset, fn)
}

func (c *Context) runResetHooks() {
	c.mu.Lock()
	hooks := c.onReset
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Navigate records a page transition. A later request replaces an earlier
// one that has not been consumed yet.
func (c *Context) Navigate(n Navigation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = n
	c.navigations++
}

// Pending returns the recorded navigation without consuming it.
func (c *Context) Pending() Navigation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Navigations counts every Navigate call since startup.
func (c *Context) Navigations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.navigations
}

// TakeNavigation consumes the pending navigation. Consuming a real
// navigation resets the context: the page transition ends the session scope.
func (c *Context) TakeNavigation() Navigation {
	c.mu.Lock()
	n := c.pending
	c.pending = Navigation{}
	c.mu.Unlock()

	if !n.None() {
		c.ending.Store(false)
		c.runResetHooks()
	}
	return n
}

// Reset clears the ending flag and any pending navigation.
func (c *Context) Reset() {
	c.mu.Lock()
	c.pending = Navigation{}
	c.mu.Unlock()
	c.ending.Store(false)
	c.runResetHooks()
}
