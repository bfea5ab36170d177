package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/age-wisdom/internal/auth"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
	"github.com/sakif/age-wisdom/internal/service"
)

// PostHandler serves the post endpoints: browsing by age, creating, listing
// a user's own posts, and deleting.
//
// The handler's only jobs are parsing the request and shaping the response;
// validation and rules live in the service. It also holds the user
// repository so attributed posts can carry the author's username without
// the client being trusted to supply it.
type PostHandler struct {
	posts  *service.PostService
	users  repository.UserRepository
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, users repository.UserRepository, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		users:  users,
		logger: logger,
	}
}

// createPostRequest is the POST /api/posts body.
type createPostRequest struct {
	TargetAge int    `json:"target_age"`
	Content   string `json:"content"`
	AuthorAge int    `json:"author_age"`
}

// pagination is the envelope attached to every listing response.
type pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// paginate computes the envelope from the page that was served and the
// exact total: has_next iff page*limit < total, total_pages = ceil(total/limit).
func paginate(page, limit, total int) pagination {
	totalPages := (total + limit - 1) / limit
	return pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page*limit < total,
		HasPrev:    page > 1,
	}
}

// postListResponse is the shared shape for paginated post listings.
type postListResponse struct {
	Posts      []model.Post `json:"posts"`
	Pagination pagination   `json:"pagination"`
}

// HandleList returns one page of posts for a target age.
//
// HTTP: GET /api/posts?target_age=30&page=1&limit=20
//
// The age may also be passed as "age"; "target_age" wins when both are set.
// Results are ordered most-liked first, ties broken by recency; total is
// the exact match count so clients can render page controls.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("target_age")
	if raw == "" {
		raw = r.URL.Query().Get("age")
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "target_age query parameter must be an integer",
		})
		return
	}
	page, limit := pagingParams(r)

	posts, total, err := h.posts.ListByAge(r.Context(), age, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postListResponse{
		Posts:      posts,
		Pagination: paginate(page, limit, total),
	})
}

// HandleCreate stores a new post.
//
// HTTP: POST /api/posts
// BODY: {"target_age": 30, "content": "...", "author_age": 45}
//
// Runs behind OptionalAuth: a signed-in author gets the post attributed
// (user ID and username from the session, never from the body); everyone
// else posts anonymously.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	userID, username := h.requestAuthor(r)

	post, err := h.posts.Create(r.Context(), req.TargetAge, req.AuthorAge, req.Content, userID, username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleListMine returns the authenticated user's posts plus their
// aggregate stats.
//
// HTTP: GET /api/users/posts?page=1&limit=20
// Auth: required
func (h *PostHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}
	page, limit := pagingParams(r)

	posts, total, stats, err := h.posts.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Posts      []model.Post     `json:"posts"`
		Pagination pagination       `json:"pagination"`
		Stats      *model.UserStats `json:"stats"`
	}{
		Posts:      posts,
		Pagination: paginate(page, limit, total),
		Stats:      stats,
	})
}

// HandleDelete soft-deletes one of the caller's posts.
//
// HTTP: DELETE /api/posts/{id}
// Auth: required; only the author may delete
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	if err := h.posts.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requestAuthor resolves the author identity for a create request. A valid
// session whose user record has since vanished degrades to an anonymous
// post rather than failing the write.
func (h *PostHandler) requestAuthor(r *http.Request) (userID, username string) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", ""
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.logger.Warn("post author lookup failed, posting anonymously",
			slog.String("userID", id),
			slog.String("error", err.Error()),
		)
		return "", ""
	}
	return user.ID, user.Username
}

// pagingParams reads page and limit, leaving range clamping to the service.
func pagingParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = service.DefaultListLimit
	}
	if limit > service.MaxListLimit {
		limit = service.MaxListLimit
	}
	return page, limit
}
