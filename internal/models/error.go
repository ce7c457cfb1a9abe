package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrValidation     = errors.New("invalid input")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrUpstream       = errors.New("upstream provider failure")
	ErrInternalServer = errors.New("internal server error")
)
