package accounts

import (
	"maps"

	"github.com/purplesanya/tg-bot/shared/domain"
)

// SimplifiedLogin remembers that an account opted into phone-only login.
type SimplifiedLogin struct {
	Phone domain.Phone `json:"phone"`
}

// Preferences are client-only settings persisted next to the account list.
// The simplified-login preference is scoped per account so two accounts with
// different phones never overwrite each other's remembered number.
type Preferences struct {
	Language        domain.LanguageTag                `json:"preferredLanguage,omitempty"`
	SimplifiedLogin map[domain.UserId]SimplifiedLogin `json:"simplifiedLogin,omitempty"`
	LastSimplified  *domain.UserId                    `json:"lastSimplified,omitempty"`
}

func (p Preferences) clone() Preferences {
	next := Preferences{Language: p.Language, SimplifiedLogin: maps.Clone(p.SimplifiedLogin)}
	if p.LastSimplified != nil {
		id := *p.LastSimplified
		next.LastSimplified = &id
	}
	return next
}

// EntryPhone is the phone to prefill on the login form when no account is
// active: the account that most recently enabled simplified login.
func (p Preferences) EntryPhone() (domain.Phone, bool) {
	if p.LastSimplified == nil {
		return "", false
	}
	pref, ok := p.SimplifiedLogin[*p.LastSimplified]
	if !ok || pref.Phone == "" {
		return "", false
	}
	return pref.Phone, true
}

func (p Preferences) withSimplified(id domain.UserId, phone domain.Phone) Preferences {
	next := p.clone()
	if next.SimplifiedLogin == nil {
		next.SimplifiedLogin = make(map[domain.UserId]SimplifiedLogin)
	}
	next.SimplifiedLogin[id] = SimplifiedLogin{Phone: phone}
	next.LastSimplified = &id
	return next
}

func (p Preferences) withoutSimplified(id domain.UserId) Preferences {
	next := p.clone()
	delete(next.SimplifiedLogin, id)
	if next.LastSimplified != nil && *next.LastSimplified == id {
		next.LastSimplified = nil
	}
	return next
}

// withoutPhone clears every preference remembering the given phone; used
// when the server demands a full login for that number.
func (p Preferences) withoutPhone(phone domain.Phone) Preferences {
	next := p.clone()
	for id, pref := range p.SimplifiedLogin {
		if pref.Phone != phone {
			continue
		}
		delete(next.SimplifiedLogin, id)
		if next.LastSimplified != nil && *next.LastSimplified == id {
			next.LastSimplified = nil
		}
	}
	return next
}
