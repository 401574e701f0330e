package model

import "github.com/secmon-lab/hlpreview/pkg/domain/types"

// Reviewer is the identity of the SME filling in assessments
type Reviewer struct {
	Name  string      `json:"name"`
	Email types.Email `json:"email"`
}

// AllowList is the static set of reviewer e-mails permitted to log in
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList builds an AllowList from raw addresses
func NewAllowList(emails ...string) *AllowList {
	a := &AllowList{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if key := types.Email(e).Normalize(); key != "" {
			a.emails[key] = struct{}{}
		}
	}
	return a
}

// Allows reports whether email matches an entry, ignoring case
func (a *AllowList) Allows(email types.Email) bool {
	if a == nil {
		return false
	}
	_, ok := a.emails[email.Normalize()]
	return ok
}

// Len returns the number of allowed addresses
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.emails)
}
