package domain

// User is an authenticated messaging-platform account as returned by the
// backend after verification or by /api/user/info.
type User struct {
	Id        UserId `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
	Photo     string `json:"photo,omitempty"` // base64 jpeg
	Phone     Phone  `json:"phone,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// DisplayName is the first name followed by the @username when present.
func (u User) DisplayName() string {
	if u.Username == "" {
		return u.FirstName
	}
	return u.FirstName + " (@" + u.Username + ")"
}

// Initial is the avatar fallback when no photo is stored.
func (u User) Initial() string {
	for _, r := range u.FirstName {
		return string(toUpper(r))
	}
	return "?"
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
