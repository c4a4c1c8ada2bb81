// Package errors defines the domain error kinds of the chat backend.
// Repositories and services return these (possibly wrapped with %w) so the
// transport edge can map them deterministically.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrChatNotFound  = fmt.Errorf("chat not found")
	ErrUserNotFound  = fmt.Errorf("user not found in chat")
	ErrAlreadyMember = fmt.Errorf("user name already joined this chat")
	ErrInvalidCursor = fmt.Errorf("invalid cursor")
	ErrInternal      = fmt.Errorf("internal storage error")
)

// Code returns the stable machine-readable code for an error kind.
// Unknown errors are reported as internal.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "bad-parameters"
	case errors.Is(err, ErrChatNotFound):
		return "chat-not-found"
	case errors.Is(err, ErrUserNotFound):
		return "user-not-found"
	case errors.Is(err, ErrAlreadyMember):
		return "already-member"
	case errors.Is(err, ErrInvalidCursor):
		return "invalid-cursor"
	default:
		return "internal-error"
	}
}

// MapToHTTPStatus translates a domain error kind into an HTTP status code.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, ErrChatNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
