package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Validation errors
var (
	ErrInvalidFieldType = goerr.New("invalid field type")
	ErrInvalidOptionID  = goerr.New("invalid option")
	ErrMissingRequired  = goerr.New("required field is missing")
)

// Cursor errors
var (
	ErrAtFirstClaim   = goerr.New("already at the first claim")
	ErrNotPaused      = goerr.New("session is not paused")
	ErrSessionPaused  = goerr.New("session is paused")
	ErrReviewComplete = goerr.New("all claims reviewed")
)

// Context keys for error values
const (
	FieldIDKey      = "field_id"
	ExpectedTypeKey = "expected_type"
	ActualTypeKey   = "actual_type"
	OptionIDKey     = "option"
	FieldValueKey   = "field_value"
	MissingKey      = "missing_fields"
	ClaimIndexKey   = "claim_index"
)

// MissingFields returns the field IDs carried by an ErrMissingRequired error
func MissingFields(err error) []string {
	if !errors.Is(err, ErrMissingRequired) {
		return nil
	}
	if ge := goerr.Unwrap(err); ge != nil {
		if missing, ok := ge.Values()[MissingKey].([]string); ok {
			return missing
		}
	}
	return nil
}
