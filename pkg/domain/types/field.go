package types

// FieldType represents the input kind of an SME assessment field
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi-select"
)

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeNumber,
		FieldTypeSelect,
		FieldTypeMultiSelect,
	}
}

// IsValid checks if the field type is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText,
		FieldTypeNumber,
		FieldTypeSelect,
		FieldTypeMultiSelect:
		return true
	default:
		return false
	}
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}
