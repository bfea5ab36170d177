package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/age-wisdom/internal/auth"
	"github.com/sakif/age-wisdom/internal/service"
)

// AuthHandler manages first-party sessions.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignUp → register a new account, set the session cookie
//   - HandleSignIn → verify credentials, set the session cookie
//   - HandleLogout → clear the session cookie
//   - HandleMe     → return the signed-in user's profile
//
// The JWT travels in an HttpOnly cookie, so the handlers set and clear the
// cookie themselves rather than returning the token in the body.
type AuthHandler struct {
	auth   *service.AuthService
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. The TokenService is only needed
// for its TTL — the cookie's Max-Age must match the token's lifetime.
func NewAuthHandler(authSvc *service.AuthService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		tokens: tokens,
		logger: logger,
	}
}

// credentialsRequest is the body for both sign-up and sign-in.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignUp registers a new account and signs it in.
//
// HTTP: POST /api/auth/signup
// BODY: {"username": "alice", "password": "secret"}
//
// A taken username gets 409 conflict. On success the response carries the
// user profile and the session cookie is set.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.auth.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleSignIn verifies credentials and starts a session.
//
// HTTP: POST /api/auth/signin
//
// Wrong password and unknown username both get the same 401 — the response
// must not reveal which half was wrong.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/auth/logout
//
// WHY POST AND NOT GET?
// Logout changes state; GET would be open to CSRF and to browsers
// pre-fetching the URL.
//
// Sessions are stateless JWTs, so "logout" just deletes the client-side
// cookie. The token itself stays valid until expiry, but without the
// cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/auth/me
// Auth: required (RequireAuth sets the userID in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't bank on the routing.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// setSessionCookie stores the JWT in the HttpOnly session cookie.
//
// HttpOnly = JavaScript cannot read it (XSS protection).
// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
// Secure should be on in production behind HTTPS.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// decodeCredentials parses the shared sign-up/sign-in body, writing the 400
// itself on bad JSON.
func decodeCredentials(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid credentials JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return credentialsRequest{}, false
	}
	return req, true
}
