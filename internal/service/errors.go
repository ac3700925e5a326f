package service

import "errors"

// Sentinel errors shared across services; handlers and workers branch on
// these with errors.Is.
var (
	ErrNotFound                  = errors.New("record not found")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrTokenRevoked              = errors.New("token revoked")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
)
