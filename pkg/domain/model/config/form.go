package config

import "github.com/secmon-lab/hlpreview/pkg/domain/types"

// FieldDefinition defines one SME assessment field and its AI counterpart
type FieldDefinition struct {
	ID          string
	Label       string
	Type        types.FieldType
	Required    bool
	Description string
	AIColumn    string // normalized claim source column shown next to the field
	AILabel     string
	Options     []string // select and multi-select only
}

// HasOption reports whether v is one of the allowed options
func (f *FieldDefinition) HasOption(v string) bool {
	for _, opt := range f.Options {
		if opt == v {
			return true
		}
	}
	return false
}

// DisplayColumn is a read-only AI column rendered without an SME counterpart
type DisplayColumn struct {
	Column string
	Label  string
}

// Milestone is an encouragement message shown at a 1-based claim position
type Milestone struct {
	Position int
	Message  string
}

// FormSchema holds the complete review form configuration
type FormSchema struct {
	Title       string
	Placeholder string // label rendered for an unset select
	Fields      []FieldDefinition
	Display     []DisplayColumn
	Milestones  []Milestone
}

// Field returns the definition with the given ID
func (s *FormSchema) Field(id string) (*FieldDefinition, bool) {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Milestone returns the message for a 1-based claim position
func (s *FormSchema) Milestone(position int) (string, bool) {
	for _, m := range s.Milestones {
		if m.Position == position {
			return m.Message, true
		}
	}
	return "", false
}

// RequiredColumns lists the claim source columns the form reads
func (s *FormSchema) RequiredColumns() []string {
	columns := []string{ColumnClaimNumber, ColumnLossDescription}
	seen := map[string]bool{ColumnClaimNumber: true, ColumnLossDescription: true}
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		columns = append(columns, c)
	}
	for _, f := range s.Fields {
		add(f.AIColumn)
	}
	for _, d := range s.Display {
		add(d.Column)
	}
	return columns
}

// Claim source columns every form needs
const (
	ColumnClaimNumber     = "claim_number"
	ColumnLossDescription = "loss_description"
)
