package domain

import "errors"

// Kind is the stable outcome class of a failed operation.
type Kind string

const (
	KindInternal        Kind = "internal"
	KindUnauthenticated Kind = "unauthenticated"
	KindAccessDenied    Kind = "access_denied"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidState    Kind = "invalid_state"
	KindInvalid         Kind = "invalid"
	KindUpstream        Kind = "upstream_failure"
)

// Error is a sentinel error tagged with its Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrInvalidToken       = newError(KindUnauthenticated, "invalid token")
	ErrExpiredToken       = newError(KindUnauthenticated, "token has expired")
	ErrMissingToken       = newError(KindUnauthenticated, "missing bearer token")
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid credentials")

	ErrAccessDenied       = newError(KindAccessDenied, "insufficient permissions")
	ErrAccountDeactivated = newError(KindAccessDenied, "account is deactivated")

	ErrUserNotFound    = newError(KindNotFound, "user not found")
	ErrRecipeNotFound  = newError(KindNotFound, "recipe not found")
	ErrCommentNotFound = newError(KindNotFound, "comment not found")

	ErrEmailTaken    = newError(KindConflict, "email already registered")
	ErrUsernameTaken = newError(KindConflict, "username already taken")
	ErrConflict      = newError(KindConflict, "concurrent modification detected")

	ErrSelfFollow    = newError(KindInvalidState, "cannot follow yourself")
	ErrRecipeNotPaid = newError(KindInvalidState, "this recipe is free")

	ErrInvalidRole  = newError(KindInvalid, "invalid role")
	ErrInvalidInput = newError(KindInvalid, "invalid request")

	ErrUpstream        = newError(KindUpstream, "chat service error")
	ErrChatUnavailable = newError(KindInternal, "AI service not configured")
)

// KindOf reports the Kind carried by err, or KindInternal when none is found.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
