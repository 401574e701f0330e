package model

import "github.com/secmon-lab/hlpreview/pkg/domain/model/config"

// Claim is one immutable record of the claim source. Columns are keyed by
// normalized header name and include claim_number and loss_description.
type Claim struct {
	Number          string            `json:"claim_number"`
	LossDescription string            `json:"loss_description"`
	Columns         map[string]string `json:"columns"`
}

// NewClaim builds a Claim from a normalized column map
func NewClaim(columns map[string]string) *Claim {
	return &Claim{
		Number:          columns[config.ColumnClaimNumber],
		LossDescription: columns[config.ColumnLossDescription],
		Columns:         columns,
	}
}

// Column returns the value of a normalized column, or "" when absent
func (c *Claim) Column(name string) string {
	if c.Columns == nil {
		return ""
	}
	return c.Columns[name]
}
