package accounts

import (
	"slices"

	"github.com/purplesanya/tg-bot/shared/domain"
)

// Data is the set of known accounts and which one is active.
// ActiveAccountId is nil or the id of a member of Accounts.
// Methods never modify the receiver; they return the next value.
type Data struct {
	ActiveAccountId *domain.UserId `json:"activeAccountId"`
	Accounts        []domain.User  `json:"accounts"`
}

func (d Data) clone() Data {
	next := Data{Accounts: slices.Clone(d.Accounts)}
	if d.ActiveAccountId != nil {
		id := *d.ActiveAccountId
		next.ActiveAccountId = &id
	}
	return next
}

func (d Data) index(id domain.UserId) int {
	return slices.IndexFunc(d.Accounts, func(u domain.User) bool { return u.Id == id })
}

// Get returns the stored account with the given id.
func (d Data) Get(id domain.UserId) (domain.User, bool) {
	if i := d.index(id); i >= 0 {
		return d.Accounts[i], true
	}
	return domain.User{}, false
}

// Active returns the active account, if any.
func (d Data) Active() (domain.User, bool) {
	if d.ActiveAccountId == nil {
		return domain.User{}, false
	}
	return d.Get(*d.ActiveAccountId)
}

func (d Data) IsActive(id domain.UserId) bool {
	return d.ActiveAccountId != nil && *d.ActiveAccountId == id
}

func (d Data) Empty() bool {
	return len(d.Accounts) == 0
}

// Upsert stores the user, replacing a record with the same id in place, and
// makes it the active account.
func (d Data) Upsert(user domain.User) Data {
	next := d.clone()
	if i := next.index(user.Id); i >= 0 {
		next.Accounts[i] = user
	} else {
		next.Accounts = append(next.Accounts, user)
	}
	id := user.Id
	next.ActiveAccountId = &id
	return next
}

// Remove drops the account. When it was active, the first remaining account
// becomes active, or nil when none remains.
func (d Data) Remove(id domain.UserId) Data {
	next := d.clone()
	if i := next.index(id); i >= 0 {
		next.Accounts = slices.Delete(next.Accounts, i, i+1)
	}
	if next.ActiveAccountId != nil && (*next.ActiveAccountId == id || next.index(*next.ActiveAccountId) < 0) {
		next.ActiveAccountId = nil
		if len(next.Accounts) > 0 {
			first := next.Accounts[0].Id
			next.ActiveAccountId = &first
		}
	}
	return next
}

// Activate points the active id at a stored account. Unknown ids leave the
// value unchanged and report false.
func (d Data) Activate(id domain.UserId) (Data, bool) {
	if d.index(id) < 0 {
		return d, false
	}
	next := d.clone()
	next.ActiveAccountId = &id
	return next, true
}

// normalize repairs a value loaded from disk so that the invariant holds.
func (d Data) normalize() Data {
	next := d.clone()
	if next.Accounts == nil {
		next.Accounts = []domain.User{}
	}
	if next.ActiveAccountId != nil && next.index(*next.ActiveAccountId) < 0 {
		next.ActiveAccountId = nil
	}
	if next.ActiveAccountId == nil && len(next.Accounts) > 0 {
		first := next.Accounts[0].Id
		next.ActiveAccountId = &first
	}
	return next
}
