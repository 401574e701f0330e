package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrDuplicateFieldID  = goerr.New("duplicate field ID")
	ErrDuplicateOption   = goerr.New("duplicate option")
	ErrInvalidFieldID    = goerr.New("invalid field ID format")
	ErrInvalidFieldType  = goerr.New("invalid field type")
	ErrMissingOptions    = goerr.New("select/multi-select field requires at least one option")
	ErrMissingLabel      = goerr.New("label is required")
	ErrInvalidMilestone  = goerr.New("invalid milestone")
	ErrEmptyAllowList    = goerr.New("allow-list is empty")
	ErrInvalidAllowEmail = goerr.New("invalid allow-list e-mail")
	ErrMissingFlag       = goerr.New("required flag is missing")
	ErrInvalidBackend    = goerr.New("invalid backend")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FieldIDKey    = "field_id"
	FieldTypeKey  = "field_type"
	OptionKey     = "option"
	FieldIndexKey = "field_index"
	PositionKey   = "position"
	EmailKey      = "email"
	FlagKey       = "flag"
	BackendKey    = "backend"
)
