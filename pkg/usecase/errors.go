package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Identity errors
	ErrInvalidIdentity = errors.New("name and a valid email are required")
	ErrUnauthorized    = errors.New("email is not authorized to review")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session credentials")
	ErrSessionExpired  = errors.New("session expired")

	// Claim errors
	ErrClaimNotFound = errors.New("claim not found")
)

// Context keys for error values
const (
	EmailKey       = "email"
	SessionIDKey   = "session_id"
	ClaimNumberKey = "claim_number"
	ClaimIndexKey  = "claim_index"
	RowKey         = "row"
)
