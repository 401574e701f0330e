package model

import (
	"maps"
	"time"

	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

// Assessment is one stored response row. Values holds the serialized cell of
// every SME field keyed by field ID. Row is the 1-based position of the data
// row in the store and is assigned by the repository on append.
type Assessment struct {
	Row              int
	ReviewerName     string
	ReviewerEmail    types.Email
	ClaimNumber      string
	Values           map[string]string
	TimeSpentSeconds float64
	Timestamp        time.Time
}

// Matches reports whether the row belongs to the (email, claim number) pair
func (a *Assessment) Matches(email types.Email, claimNumber string) bool {
	return a.ReviewerEmail.Equal(email) && a.ClaimNumber == claimNumber
}

// Copy returns a deep copy
func (a *Assessment) Copy() *Assessment {
	copied := *a
	copied.Values = maps.Clone(a.Values)
	return &copied
}

// FindAssessment returns the row for the (email, claim number) pair
func FindAssessment(rows []*Assessment, email types.Email, claimNumber string) (*Assessment, bool) {
	for _, row := range rows {
		if row.Matches(email, claimNumber) {
			return row, true
		}
	}
	return nil, false
}

// CountReviewedClaims counts distinct claim numbers with a row for email
func CountReviewedClaims(rows []*Assessment, email types.Email) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		if row.ReviewerEmail.Equal(email) {
			seen[row.ClaimNumber] = struct{}{}
		}
	}
	return len(seen)
}
