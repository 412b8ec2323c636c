package tasksync

import (
	"time"

	"github.com/purplesanya/tg-bot/shared/domain"
)

// Snapshot is a published, read-only state of the synced views. Slices are
// replaced on every fetch and never modified in place.
type Snapshot struct {
	Version uint64

	Visible  View
	Archived bool

	Tasks       []domain.Task
	TasksLoaded bool
	Stats       *domain.Stats

	AdminStats     *domain.AdminStats
	AdminUsers     []domain.AdminUser
	AdminUserId    *domain.UserId
	AdminUserTasks []domain.Task

	Loading   map[View]bool
	Err       error
	FetchedAt time.Time
}

func initialSnapshot() Snapshot {
	return Snapshot{Visible: ViewTasks, Loading: map[View]bool{}}
}

func (s Snapshot) IsLoading(v View) bool {
	return s.Loading[v]
}

func (s Snapshot) withLoading(v View, loading bool) map[View]bool {
	next := make(map[View]bool, len(s.Loading)+1)
	for k, val := range s.Loading {
		next[k] = val
	}
	if loading {
		next[v] = true
	} else {
		delete(next, v)
	}
	return next
}

func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// publish applies fn to a copy of the current snapshot and hands the result
// to every subscriber. A slow subscriber only ever sees the latest value.
func (l *Loop) publish(fn func(*Snapshot)) {
	l.mu.Lock()
	next := l.snap
	fn(&next)
	next.Version++
	l.snap = next
	subs := make([]chan Snapshot, 0, len(l.subs))
	for _, ch := range l.subs {
		subs = append(subs, ch)
	}
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}

// Subscribe returns a channel receiving every new snapshot (latest wins) and
// a function that removes the subscription.
func (l *Loop) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = ch
	l.mu.Unlock()

	return ch, func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}
