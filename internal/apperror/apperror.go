package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrAlreadyLiked = errors.New("already liked")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)

type AppError struct {
	Err     error  // sentinel from the taxonomy above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// AlreadyLiked is returned when an authenticated user likes a post they have
// already liked. Handlers map it to 409 so clients can treat it as terminal
// state rather than a retryable failure.
func AlreadyLiked(postID string) *AppError {
	return &AppError{
		Err:     ErrAlreadyLiked,
		Message: fmt.Sprintf("post %s already liked", postID),
	}
}

// Unauthorized covers bad credentials and missing/expired sessions.
// The message is deliberately vague — never reveal whether the username or
// the password was the wrong half.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// RateLimited is returned when a client exhausts its request window.
func RateLimited() *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: "too many requests, slow down",
	}
}
