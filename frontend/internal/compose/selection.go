package compose

import (
	"slices"

	"github.com/purplesanya/tg-bot/shared/domain"
)

// Selection is the set of destination chats of one form. Order carries no
// meaning; IDs returns them sorted so submissions are deterministic.
type Selection struct {
	ids map[domain.ChatId]struct{}
}

func NewSelection(ids ...domain.ChatId) Selection {
	s := Selection{ids: make(map[domain.ChatId]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle returns the selection with id added or removed.
func (s Selection) Toggle(id domain.ChatId) Selection {
	next := NewSelection(s.IDs()...)
	if _, ok := next.ids[id]; ok {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

func (s Selection) Has(id domain.ChatId) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Selection) Len() int { return len(s.ids) }

func (s Selection) IDs() []domain.ChatId {
	out := make([]domain.ChatId, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
