package domain

import "time"

// Session is a server-side login session. The ID travels in an HttpOnly
// cookie; the CSRF token is the double-submit value required on mutating
// requests. Both are rotated on login.
type Session struct {
	ID        string    `json:"-" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	CSRFToken string    `json:"-" db:"csrf_token"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	ExpiresAt time.Time `json:"-" db:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
