package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Email is a reviewer e-mail address. Comparisons are case-insensitive.
type Email string

// Normalize returns the trimmed, lower-cased address used as lookup key
func (e Email) Normalize() string {
	return strings.ToLower(strings.TrimSpace(string(e)))
}

// Equal compares two addresses case-insensitively
func (e Email) Equal(other Email) bool {
	return e.Normalize() == other.Normalize()
}

// Validate checks the address has the local@domain shape
func (e Email) Validate() error {
	s := strings.TrimSpace(string(e))
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return goerr.New("invalid email address", goerr.V("email", string(e)))
	}
	return nil
}

// String returns the address as given
func (e Email) String() string {
	return string(e)
}
