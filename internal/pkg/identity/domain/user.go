package identity

import "time"

// User is an account row. PasswordHash never leaves the persistence and
// application layers.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Profile is the public face of a user: what counterparts in a conversation
// and product pages see.
type Profile struct {
	UserID    string  `db:"user_id" json:"user_id"`
	FullName  *string `db:"full_name" json:"full_name"`
	Phone     *string `db:"phone" json:"phone"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// DisplayName returns the full name or a neutral fallback for profiles that
// never filled one in.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return "משתמש"
}
