package domain

import "errors"

// Domain errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidKind     = errors.New("unknown transaction kind")
	ErrUserRequired    = errors.New("user id is required")
	ErrNoActiveSession = errors.New("no active entry session")
	ErrExportDisabled  = errors.New("statement export is not configured")
)
