package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Activation code state errors
	ErrCodeNotFound = errors.New("activation code not found")
	ErrCodeDisabled = errors.New("activation code disabled")
	ErrCodeExpired  = errors.New("activation code expired")
	ErrCodeUsedUp   = errors.New("activation code used up")

	// Session and token errors
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrSessionMissing = errors.New("session missing")
	ErrUAMismatch     = errors.New("user agent mismatch")

	// Admin errors
	ErrBadPassword       = errors.New("bad password")
	ErrAdminUnauthorized = errors.New("admin unauthorized")

	// Infrastructure errors
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrLockUnavailable = errors.New("lock unavailable")
)
