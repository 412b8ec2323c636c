// Package attachments models the ordered, drag-reorderable file list of the
// create and edit forms. List is a value: every transition returns a new
// list and leaves the receiver untouched.
package attachments

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MaxItems is the most files one task may carry.
const MaxItems = 10

var (
	ErrTooManyAttachments = errors.New("max 10 files")
	ErrIndexOutOfRange    = errors.New("attachment index out of range")
)

type Kind int

const (
	Existing Kind = iota
	New
)

// Item is either an already stored file (Reference set) or a new upload
// (Name and Data set).
type Item struct {
	Key  string // client-only, stable across reorders
	Kind Kind

	Reference string

	Name string
	Data []byte
	Meta Meta
}

// ExistingItem wraps a server reference such as "/uploads/x.png".
func ExistingItem(reference string) Item {
	return Item{Key: uuid.NewString(), Kind: Existing, Reference: reference, Meta: metaFromName(reference)}
}

// NewItem wraps a fresh upload and inspects its content.
func NewItem(name, contentType string, data []byte) Item {
	return Item{Key: uuid.NewString(), Kind: New, Name: name, Data: data, Meta: Inspect(name, contentType, data)}
}

// Identifier is what the backend uses to place the file in final_order.
func (it Item) Identifier() string {
	if it.Kind == Existing {
		return it.Reference
	}
	return it.Name
}

type List struct {
	items []Item
}

// FromTask builds an edit list from the task's stored file references.
func FromTask(fileURLs []string) List {
	items := make([]Item, 0, len(fileURLs))
	for _, ref := range fileURLs {
		items = append(items, ExistingItem(ref))
	}
	return List{items: items}
}

func (l List) Len() int { return len(l.items) }

// Items returns a copy; mutating it does not affect the list.
func (l List) Items() []Item {
	return append([]Item(nil), l.items...)
}

func (l List) At(i int) (Item, bool) {
	if i < 0 || i >= len(l.items) {
		return Item{}, false
	}
	return l.items[i], true
}

// IndexOf finds an item by its client key.
func (l List) IndexOf(key string) int {
	for i, it := range l.items {
		if it.Key == key {
			return i
		}
	}
	return -1
}

// Append adds the batch at the end. When the batch would exceed MaxItems it
// is cut to the remaining capacity and ErrTooManyAttachments is returned
// with the resulting list as the warning to show.
func (l List) Append(items ...Item) (List, error) {
	room := MaxItems - len(l.items)
	if room <= 0 {
		if len(items) == 0 {
			return l, nil
		}
		return l, ErrTooManyAttachments
	}

	var err error
	if len(items) > room {
		items = items[:room]
		err = ErrTooManyAttachments
	}
	next := make([]Item, 0, len(l.items)+len(items))
	next = append(next, l.items...)
	next = append(next, items...)
	return List{items: next}, err
}

func (l List) Remove(i int) (List, error) {
	if i < 0 || i >= len(l.items) {
		return l, fmt.Errorf("remove %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	next := make([]Item, 0, len(l.items)-1)
	next = append(next, l.items[:i]...)
	next = append(next, l.items[i+1:]...)
	return List{items: next}, nil
}

// Reorder moves the item at from so it ends up at index to. changed is
// false when from == to.
func (l List) Reorder(from, to int) (next List, changed bool, err error) {
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return l, false, fmt.Errorf("move %d to %d of %d: %w", from, to, n, ErrIndexOutOfRange)
	}
	if from == to {
		return l, false, nil
	}

	items := make([]Item, 0, n)
	moved := l.items[from]
	items = append(items, l.items[:from]...)
	items = append(items, l.items[from+1:]...)
	items = append(items[:to], append([]Item{moved}, items[to:]...)...)
	return List{items: items}, true, nil
}

// Serialize lists stable identifiers in display order. Never nil.
func (l List) Serialize() []string {
	out := make([]string, len(l.items))
	for i, it := range l.items {
		out[i] = it.Identifier()
	}
	return out
}

// KeepExisting lists the references of the stored files still present, in
// current order. Never nil.
func (l List) KeepExisting() []string {
	out := []string{}
	for _, it := range l.items {
		if it.Kind == Existing {
			out = append(out, it.Reference)
		}
	}
	return out
}

// NewFiles returns the new uploads in current order.
func (l List) NewFiles() []Item {
	var out []Item
	for _, it := range l.items {
		if it.Kind == New {
			out = append(out, it)
		}
	}
	return out
}
