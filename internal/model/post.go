// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Post represents one age-targeted message.
//
// The `json:"..."` tags control how the struct serializes to API responses,
// the `db:"..."` tags document the column each field maps to.
//
// TargetAge is the age the message is addressed to ("to everyone turning 30"),
// AuthorAge is how old the author was when they wrote it. Both live in the
// same valid range (7..91) but mean different things.
//
// LikeCount is a denormalized counter: it mirrors the number of rows in
// post_likes for this post. It is only ever changed by the like flow in the
// repository, and only via an increment evaluated by the database — never by
// writing a value computed in Go (that would reintroduce a lost-update race).
type Post struct {
	ID         string    `json:"id"          db:"id"`
	TargetAge  int       `json:"target_age"  db:"target_age"`
	Content    string    `json:"content"     db:"content"`
	AuthorAge  int       `json:"author_age"  db:"author_age"`
	UserID     string    `json:"user_id"     db:"user_id"`  // empty = anonymous post
	Username   string    `json:"username"    db:"username"` // display name captured at post time
	LikeCount  int       `json:"like_count"  db:"like_count"`
	ViewCount  int       `json:"view_count"  db:"view_count"`
	IsActive   bool      `json:"is_active"   db:"is_active"`
	IsFeatured bool      `json:"is_featured" db:"is_featured"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
}
