// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the store
//
// Services accept primitives and return domain models and apperror values;
// they know nothing about HTTP or SQL. Every service takes its repository as
// an interface, so tests inject in-memory mocks (see post_test.go) and the
// store could be swapped without touching this package.
//
// Validation lives here, not in the handlers, because every caller needs the
// rules — and not in the repositories, because an invalid request must be
// rejected before any storage round trip happens.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

// Validation constants. Ages outside [MinAge, MaxAge] are rejected at this
// boundary and never reach the store.
const (
	MinAge = 7
	MaxAge = 91

	MinContentLength = 1
	MaxContentLength = 500

	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ValidAge reports whether age is inside the supported range.
func ValidAge(age int) bool {
	return age >= MinAge && age <= MaxAge
}

// PostService handles business logic for age-targeted posts.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService. The caller decides which
// repository implementation to inject (sqlite in production, a mock in tests).
func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger,
	}
}

// Create validates and persists a new post.
//
// Validation order is part of the contract: required-field presence, then
// age ranges (target first, then author), then content length. The first
// failing check names the reported field. The insert is a single statement —
// the post lands whole or not at all.
//
// userID and username are both empty for an anonymous post.
func (s *PostService) Create(ctx context.Context, targetAge, authorAge int, content, userID, username string) (*model.Post, error) {
	content = strings.TrimSpace(content)

	if targetAge == 0 || authorAge == 0 || content == "" {
		return nil, apperror.ValidationFailed("", "target_age, content and author_age are required")
	}
	if !ValidAge(targetAge) {
		return nil, apperror.ValidationFailed("target_age",
			fmt.Sprintf("target_age must be between %d and %d", MinAge, MaxAge))
	}
	if !ValidAge(authorAge) {
		return nil, apperror.ValidationFailed("author_age",
			fmt.Sprintf("author_age must be between %d and %d", MinAge, MaxAge))
	}
	if len([]rune(content)) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}

	post := &model.Post{
		TargetAge: targetAge,
		AuthorAge: authorAge,
		Content:   content,
		UserID:    userID,
		Username:  strings.TrimSpace(username),
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.Int("targetAge", targetAge),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.Int("targetAge", post.TargetAge),
		slog.Bool("anonymous", post.UserID == ""),
	)

	return post, nil
}

// ListByAge returns one page of active posts for a target age plus the exact
// total. Ordering (likes desc, then recency) is fixed by the repository.
//
// page is 1-based; limit is clamped to 1..MaxListLimit with DefaultListLimit
// as the fallback. An out-of-range age is rejected before any storage call.
func (s *PostService) ListByAge(ctx context.Context, age, page, limit int) ([]model.Post, int, error) {
	if !ValidAge(age) {
		return nil, 0, apperror.ValidationFailed("target_age",
			fmt.Sprintf("target_age must be between %d and %d", MinAge, MaxAge))
	}
	page, limit = normalizePage(page, limit)

	posts, total, err := s.posts.ListByTargetAge(ctx, age, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list posts",
			slog.Int("age", age),
			slog.String("error", err.Error()),
		)
		return nil, 0, fmt.Errorf("listing posts for age %d: %w", age, err)
	}

	return posts, total, nil
}

// ListByUser returns one page of a user's posts (newest first) together
// with their aggregate stats.
func (s *PostService) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Post, int, *model.UserStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, 0, nil, apperror.ValidationFailed("user_id", "user_id is required")
	}
	page, limit = normalizePage(page, limit)

	posts, total, err := s.posts.ListByUser(ctx, userID, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list user posts",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, 0, nil, fmt.Errorf("listing posts for user %s: %w", userID, err)
	}

	totalLikes, err := s.posts.SumLikesByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to sum user likes",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, 0, nil, fmt.Errorf("summing likes for user %s: %w", userID, err)
	}

	stats := &model.UserStats{
		TotalPosts: total,
		TotalLikes: totalLikes,
	}
	return posts, total, stats, nil
}

// Delete soft-deletes a post. Only the author may delete; anonymous posts
// have no author and cannot be deleted through the API.
func (s *PostService) Delete(ctx context.Context, id, requesterID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID == "" || post.UserID != requesterID {
		return apperror.Forbidden("only the author can delete a post")
	}

	if err := s.posts.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deactivated", slog.String("id", id), slog.String("by", requesterID))
	return nil
}

// normalizePage applies the shared paging defaults.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return page, limit
}
