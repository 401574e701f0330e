package interfaces

import "github.com/secmon-lab/hlpreview/pkg/domain/model"

// ClaimSource is the read-only ordered claim sequence loaded at startup
type ClaimSource interface {
	// Count returns the number of claims N
	Count() int

	// At returns the claim at a 0-based index
	At(index int) (*model.Claim, bool)
}
