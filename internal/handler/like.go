package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/age-wisdom/internal/auth"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/ratelimit"
	"github.com/sakif/age-wisdom/internal/service"
)

// LikeHandler serves the like endpoints.
//
// IDENTITY RESOLUTION:
// A signed-in caller is identified by user ID; everyone else by client IP.
// Both routes run behind OptionalAuth, so the context carries the user ID
// whenever a valid session cookie came with the request.
type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

// NewLikeHandler creates a LikeHandler.
func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{
		likes:  likes,
		logger: logger,
	}
}

// HandleAdd records a like.
//
// HTTP: POST /api/posts/{id}/like
//
// Responds with the post's new like count as the store wrote it:
//
//	{"liked": true, "like_count": 42}
//
// A duplicate like gets 409 already_liked; a missing or deleted post 404.
func (h *LikeHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	likeCount, err := h.likes.Add(r.Context(), r.PathValue("id"), requestIdentity(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Liked     bool `json:"liked"`
		LikeCount int  `json:"like_count"`
	}{Liked: true, LikeCount: likeCount})
}

// HandleStatus reports whether the caller has liked the post.
//
// HTTP: GET /api/posts/{id}/like
//
// RESPONSE: {"liked": true}
func (h *LikeHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	liked, err := h.likes.Status(r.Context(), r.PathValue("id"), requestIdentity(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Liked bool `json:"liked"`
	}{Liked: liked})
}

// requestIdentity builds the like identity for a request: user ID when
// authenticated, client IP either way (the IP also backs anonymous dedup).
func requestIdentity(r *http.Request) model.Identity {
	identity := model.Identity{
		IPAddress: ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		identity.UserID = userID
	}
	return identity
}
