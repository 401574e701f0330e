package model

import (
	"strconv"
	"strings"

	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

// MultiSelectDelimiter joins multi-select options in a stored cell
const MultiSelectDelimiter = "; "

// FieldValue is the in-progress value of one form field. Only the member
// matching the field type is meaningful.
type FieldValue struct {
	Text    string       `json:"text,omitempty"`
	Choice  types.Choice `json:"choice"`
	Choices []string     `json:"choices,omitempty"`
	Number  float64      `json:"number,omitempty"`
}

// Draft is the form state of the claim currently displayed
type Draft struct {
	ClaimNumber string                `json:"claim_number"`
	Values      map[string]FieldValue `json:"values"`
	Hydrated    bool                  `json:"hydrated"` // pre-filled from a stored row
}

// HydrateIssue describes a stored cell that could not be restored as-is
type HydrateIssue struct {
	FieldID string `json:"field_id"`
	Stored  string `json:"stored"`
	Reason  string `json:"reason"`
}

// NewDraft returns a draft with every field at its default
func NewDraft(schema *config.FormSchema, claimNumber string) *Draft {
	d := &Draft{
		ClaimNumber: claimNumber,
		Values:      make(map[string]FieldValue, len(schema.Fields)),
	}
	for _, f := range schema.Fields {
		d.Values[f.ID] = FieldValue{}
	}
	return d
}

// Value returns the value of a field, or the default when absent
func (d *Draft) Value(fieldID string) FieldValue {
	if d == nil || d.Values == nil {
		return FieldValue{}
	}
	return d.Values[fieldID]
}

// HydrateDraft pre-fills a draft from a stored assessment. Cells that no longer
// fit the schema fall back to the field default and are reported as issues;
// a corrupt cell never fails the whole draft.
func HydrateDraft(schema *config.FormSchema, claimNumber string, prior *Assessment) (*Draft, []HydrateIssue) {
	d := NewDraft(schema, claimNumber)
	if prior == nil {
		return d, nil
	}
	d.Hydrated = true

	var issues []HydrateIssue
	for _, f := range schema.Fields {
		stored, ok := prior.Values[f.ID]
		if !ok || stored == "" {
			continue
		}

		switch f.Type {
		case types.FieldTypeText:
			d.Values[f.ID] = FieldValue{Text: stored}

		case types.FieldTypeSelect:
			if f.HasOption(stored) {
				d.Values[f.ID] = FieldValue{Choice: types.Chosen(stored)}
			} else {
				issues = append(issues, HydrateIssue{FieldID: f.ID, Stored: stored, Reason: "option no longer available"})
			}

		case types.FieldTypeMultiSelect:
			var kept []string
			for _, v := range SplitMultiSelect(stored) {
				if f.HasOption(v) {
					kept = append(kept, v)
				} else {
					issues = append(issues, HydrateIssue{FieldID: f.ID, Stored: v, Reason: "option no longer available"})
				}
			}
			d.Values[f.ID] = FieldValue{Choices: kept}

		case types.FieldTypeNumber:
			n, err := strconv.ParseFloat(strings.TrimSpace(stored), 64)
			if err != nil {
				issues = append(issues, HydrateIssue{FieldID: f.ID, Stored: stored, Reason: "not a number"})
				continue
			}
			d.Values[f.ID] = FieldValue{Number: n}
		}
	}

	return d, issues
}

// Serialize converts the draft into stored cell values keyed by field ID
func (d *Draft) Serialize(schema *config.FormSchema) map[string]string {
	cells := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		v := d.Value(f.ID)
		switch f.Type {
		case types.FieldTypeText:
			cells[f.ID] = v.Text
		case types.FieldTypeSelect:
			cells[f.ID] = v.Choice.Value()
		case types.FieldTypeMultiSelect:
			cells[f.ID] = JoinMultiSelect(&f, v.Choices)
		case types.FieldTypeNumber:
			cells[f.ID] = strconv.FormatFloat(v.Number, 'f', -1, 64)
		}
	}
	return cells
}

// SplitMultiSelect splits a stored multi-select cell, dropping blanks and duplicates
func SplitMultiSelect(stored string) []string {
	var values []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(stored, strings.TrimSpace(MultiSelectDelimiter)) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		values = append(values, part)
	}
	return values
}

// JoinMultiSelect joins selected options in the order the field declares them.
// Values outside the option list keep their given order after the known ones.
func JoinMultiSelect(field *config.FieldDefinition, selected []string) string {
	chosen := make(map[string]bool, len(selected))
	for _, v := range selected {
		chosen[v] = true
	}

	ordered := make([]string, 0, len(selected))
	for _, opt := range field.Options {
		if chosen[opt] {
			ordered = append(ordered, opt)
			delete(chosen, opt)
		}
	}
	for _, v := range selected {
		if chosen[v] {
			ordered = append(ordered, v)
			delete(chosen, v)
		}
	}
	return strings.Join(ordered, MultiSelectDelimiter)
}
