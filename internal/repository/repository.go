// Package repository declares the storage interfaces the service layer
// programs against. The concrete sqlite implementation lives in
// repository/sqlite; services never import it directly.
package repository

import (
	"context"

	"github.com/sakif/age-wisdom/internal/model"
)

// ListOptions is offset/limit windowing for listing queries.
// The sqlite implementation clamps Limit to 1..100 and Offset to >= 0.
type ListOptions struct {
	Limit  int
	Offset int
}

// PostRepository stores age-targeted posts.
//
// Listing methods return the page plus the exact total count of matching
// rows, so callers can compute has_next as total > offset+limit without a
// second round trip.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// ListByTargetAge returns active posts for one target age, ordered by
	// like_count descending then created_at descending.
	ListByTargetAge(ctx context.Context, targetAge int, opts ListOptions) ([]model.Post, int, error)
	// ListByUser returns a user's active posts, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Post, int, error)
	// SumLikesByUser totals like_count across a user's active posts.
	SumLikesByUser(ctx context.Context, userID string) (int, error)
	// Deactivate soft-deletes a post. There is no hard delete path.
	Deactivate(ctx context.Context, id string) error
}

// LikeRepository records like events and keeps the denormalized
// post counter in step with them.
type LikeRepository interface {
	// Add records a like and increments the post's like_count atomically,
	// in one transaction. It returns the like_count the store actually
	// wrote — callers must treat that as the source of truth, never a
	// client-side guess.
	//
	// Errors: apperror.ErrNotFound if the post is missing or inactive,
	// apperror.ErrAlreadyLiked on a duplicate (authenticated identity, or
	// anonymous identity within the 24h IP window).
	Add(ctx context.Context, like *model.Like) (int, error)
	// HasLiked reports whether the identity has a live like on the post.
	HasLiked(ctx context.Context, postID string, identity model.Identity) (bool, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// TouchLastLogin stamps last_login_at with the current time.
	TouchLastLogin(ctx context.Context, id string) error
}

// StatsRepository answers the aggregate queries behind /api/ages and
// /api/stats/site. Every call is a full rescan — acceptable at this data
// volume, and it keeps the store free of materialized aggregates.
type StatsRepository interface {
	// AgeCounts returns active-post counts grouped by target age,
	// ascending by age. Ages with no posts are absent.
	AgeCounts(ctx context.Context) ([]model.AgeCount, error)
	CountActivePosts(ctx context.Context) (int, error)
	CountActiveUsers(ctx context.Context) (int, error)
	// SumLikeCounts totals like_count over active posts.
	SumLikeCounts(ctx context.Context) (int, error)
	// CountActiveAges counts distinct target ages with at least one active post.
	CountActiveAges(ctx context.Context) (int, error)
	// DistinctAuthorAges returns the distinct author ages of active posts.
	DistinctAuthorAges(ctx context.Context) ([]int, error)
}
