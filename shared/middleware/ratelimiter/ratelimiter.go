// Package ratelimiter is a keyed token bucket. Idle buckets are dropped after
// the configured expiration.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	expiry     *time.Timer
}

// KeyedLimiter keeps one bucket per key (a phone number, a client address).
type KeyedLimiter struct {
	rate       float64 // tokens per second
	capacity   float64
	expiration time.Duration
	now        func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func New(rate, capacity float64, expiration time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

func (l *KeyedLimiter) get(key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: l.now()}
		l.buckets[key] = b
	}
	if b.expiry != nil {
		b.expiry.Stop()
	}
	b.expiry = time.AfterFunc(l.expiration, func() { l.drop(key, b) })
	return b
}

func (l *KeyedLimiter) drop(key string, b *bucket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buckets[key] == b {
		delete(l.buckets, key)
	}
}

// Allow takes one token from key's bucket if there is one.
func (l *KeyedLimiter) Allow(key string) bool {
	b := l.get(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Len is the number of live buckets.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop cancels all expiry timers.
func (l *KeyedLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.expiry != nil {
			b.expiry.Stop()
		}
	}
}
