package model

import "time"

// Like is one like event on a post. Rows are append-only — a like is an
// event, not a toggle, so there is no "unlike" path that deletes rows.
//
// Exactly one of UserID or IPAddress identifies who liked:
//   - authenticated likes carry UserID; at most one live row may exist per
//     (post, user), enforced by a partial unique index
//   - anonymous likes carry IPAddress; duplicates are deduplicated
//     best-effort within a rolling 24-hour window (a soft deterrent, not a
//     guarantee — IP rotation bypasses it)
type Like struct {
	ID        string    `json:"id"         db:"id"`
	PostID    string    `json:"post_id"    db:"post_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Identity is who is liking (or asking about) a post.
// UserID wins when both are set; an all-empty Identity is invalid.
type Identity struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// Anonymous reports whether this identity is IP-based rather than a
// signed-in user.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}
