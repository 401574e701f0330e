package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

// FormValidator validates drafts against the form schema
type FormValidator struct {
	schema *config.FormSchema
}

// NewFormValidator creates a new FormValidator with the given schema
func NewFormValidator(schema *config.FormSchema) *FormValidator {
	return &FormValidator{
		schema: schema,
	}
}

// Missing returns the IDs of required fields left at their default, in schema
// order. An empty result means the draft can be committed.
func (v *FormValidator) Missing(d *Draft) []string {
	var missing []string
	for _, f := range v.schema.Fields {
		if !f.Required {
			continue
		}
		if isEmpty(f, d.Value(f.ID)) {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

// Validate returns ErrMissingRequired carrying the missing field IDs
func (v *FormValidator) Validate(d *Draft) error {
	if missing := v.Missing(d); len(missing) > 0 {
		return goerr.Wrap(ErrMissingRequired, "required fields not provided",
			goerr.V(MissingKey, missing))
	}
	return nil
}

func isEmpty(f config.FieldDefinition, fv FieldValue) bool {
	switch f.Type {
	case types.FieldTypeSelect:
		return !fv.Choice.IsSet()
	case types.FieldTypeText:
		return strings.TrimSpace(fv.Text) == ""
	case types.FieldTypeMultiSelect:
		return len(fv.Choices) == 0
	default:
		// numbers always carry a value
		return false
	}
}

// ParseInput builds a draft from decoded JSON input keyed by field ID.
// Unknown field IDs are skipped; absent fields keep their default.
func (v *FormValidator) ParseInput(claimNumber string, input map[string]any) (*Draft, error) {
	d := NewDraft(v.schema, claimNumber)

	for _, f := range v.schema.Fields {
		raw, ok := input[f.ID]
		if !ok || raw == nil {
			continue
		}

		fv, err := v.parseFieldValue(f, raw)
		if err != nil {
			return nil, goerr.Wrap(err, "field validation failed",
				goerr.V(FieldIDKey, f.ID))
		}
		d.Values[f.ID] = fv
	}

	return d, nil
}

func (v *FormValidator) parseFieldValue(f config.FieldDefinition, raw any) (FieldValue, error) {
	switch f.Type {
	case types.FieldTypeText:
		s, ok := raw.(string)
		if !ok {
			return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "value must be string",
				goerr.V(ExpectedTypeKey, types.FieldTypeText),
				goerr.V(ActualTypeKey, fmt.Sprintf("%T", raw)))
		}
		return FieldValue{Text: s}, nil

	case types.FieldTypeSelect:
		s, ok := raw.(string)
		if !ok {
			return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "value must be string (option)",
				goerr.V(ExpectedTypeKey, types.FieldTypeSelect),
				goerr.V(ActualTypeKey, fmt.Sprintf("%T", raw)))
		}
		if s == "" {
			return FieldValue{}, nil
		}
		if !f.HasOption(s) {
			return FieldValue{}, goerr.Wrap(ErrInvalidOptionID, "option not found in field definition",
				goerr.V(OptionIDKey, s))
		}
		return FieldValue{Choice: types.Chosen(s)}, nil

	case types.FieldTypeMultiSelect:
		var values []string
		switch t := raw.(type) {
		case []string:
			values = t
		case []any:
			values = make([]string, 0, len(t))
			for _, item := range t {
				s, ok := item.(string)
				if !ok {
					return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "multi-select value must be array of strings",
						goerr.V(ExpectedTypeKey, types.FieldTypeMultiSelect),
						goerr.V(ActualTypeKey, fmt.Sprintf("%T", item)))
				}
				values = append(values, s)
			}
		default:
			return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "value must be array of strings (options)",
				goerr.V(ExpectedTypeKey, types.FieldTypeMultiSelect),
				goerr.V(ActualTypeKey, fmt.Sprintf("%T", raw)))
		}
		for _, s := range values {
			if !f.HasOption(s) {
				return FieldValue{}, goerr.Wrap(ErrInvalidOptionID, "option not found in field definition",
					goerr.V(OptionIDKey, s))
			}
		}
		return FieldValue{Choices: values}, nil

	case types.FieldTypeNumber:
		var n float64
		switch t := raw.(type) {
		case float64:
			n = t
		case int:
			n = float64(t)
		case int64:
			n = float64(t)
		case string:
			if strings.TrimSpace(t) == "" {
				return FieldValue{}, nil
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "value must be number",
					goerr.V(FieldValueKey, t))
			}
			n = parsed
		default:
			return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "value must be number",
				goerr.V(ExpectedTypeKey, types.FieldTypeNumber),
				goerr.V(ActualTypeKey, fmt.Sprintf("%T", raw)))
		}
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "number must be finite and not negative",
				goerr.V(FieldValueKey, n))
		}
		return FieldValue{Number: n}, nil

	default:
		return FieldValue{}, goerr.Wrap(ErrInvalidFieldType, "unsupported field type",
			goerr.V(ExpectedTypeKey, f.Type))
	}
}
