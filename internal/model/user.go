package model

import "time"

// User represents a registered account.
//
// Authentication is first-party username/password. PasswordHash holds a
// bcrypt hash (salt embedded in the hash string) and is never serialized —
// the `json:"-"` tag keeps it out of every API response.
//
// WHY LastLoginAt *time.Time (a pointer)?
// A user who has registered but never signed in has no last login. The nil
// pointer models that "no value yet" state; a zero time.Time would serialize
// as year 1 and confuse clients.
type User struct {
	ID           string     `json:"id"            db:"id"`
	Username     string     `json:"username"      db:"username"`
	PasswordHash string     `json:"-"             db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"    db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
	IsActive     bool       `json:"is_active"     db:"is_active"`
}
