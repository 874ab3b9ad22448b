package utils

import "errors"

// Sentinel errors for the core booking flows. Services wrap these with
// context via fmt.Errorf("...: %w", err); controllers translate them to
// HTTP statuses with RespondWithServiceError.
var (
	ErrInvalidHost       = errors.New("invalid host")
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrCrossTenant       = errors.New("cross-tenant reference")
	ErrInvalidDuration   = errors.New("total service duration must be positive")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrConflict          = errors.New("conflicting data")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid input")
)
