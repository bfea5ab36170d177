package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

// LikeService handles the like flow.
//
// POLICY: likes are add-only. There is no unlike; an authenticated duplicate
// fails with ErrAlreadyLiked, an anonymous duplicate from the same IP within
// 24 hours is rejected the same way (best-effort — see the repository).
// The repository performs the event insert and the counter increment in one
// transaction, so this layer only validates and translates.
type LikeService struct {
	likes  repository.LikeRepository
	logger *slog.Logger
}

// NewLikeService creates a LikeService.
func NewLikeService(likes repository.LikeRepository, logger *slog.Logger) *LikeService {
	return &LikeService{
		likes:  likes,
		logger: logger,
	}
}

// Add records a like on a post and returns the post's new like_count — the
// value the store wrote, which callers must display instead of any count
// they computed themselves.
//
// identity must carry a user ID (authenticated) or an IP address
// (anonymous); an empty identity is a validation failure.
func (s *LikeService) Add(ctx context.Context, postID string, identity model.Identity) (int, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return 0, apperror.ValidationFailed("id", "post ID is required")
	}
	if identity.UserID == "" && identity.IPAddress == "" {
		return 0, apperror.ValidationFailed("identity", "user_id or ip_address is required")
	}

	likeCount, err := s.likes.Add(ctx, &model.Like{
		PostID:    postID,
		UserID:    identity.UserID,
		IPAddress: identity.IPAddress,
		UserAgent: identity.UserAgent,
	})
	if err != nil {
		// NotFound and AlreadyLiked are expected outcomes, not failures;
		// only log real storage trouble.
		if apperrOnly(err) {
			return 0, err
		}
		s.logger.Error("failed to add like",
			slog.String("postID", postID),
			slog.Bool("anonymous", identity.Anonymous()),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("adding like to post %s: %w", postID, err)
	}

	s.logger.Info("like added",
		slog.String("postID", postID),
		slog.Int("likeCount", likeCount),
		slog.Bool("anonymous", identity.Anonymous()),
	)

	return likeCount, nil
}

// Status reports whether the identity has already liked the post.
// An empty identity is simply "not liked", matching the read endpoint's
// lenient contract.
func (s *LikeService) Status(ctx context.Context, postID string, identity model.Identity) (bool, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return false, apperror.ValidationFailed("id", "post ID is required")
	}

	liked, err := s.likes.HasLiked(ctx, postID, identity)
	if err != nil {
		s.logger.Error("failed to check like status",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("checking like status for post %s: %w", postID, err)
	}
	return liked, nil
}

// apperrOnly reports whether err is one of the expected domain outcomes
// that should pass through unwrapped and unlogged.
func apperrOnly(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
