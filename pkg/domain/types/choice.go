package types

import "encoding/json"

// Choice is the value of a single-select field. The zero value is unset, which
// replaces the "Choose an option:" placeholder of the rendered form.
type Choice struct {
	value string
	set   bool
}

// Chosen returns a Choice holding v
func Chosen(v string) Choice {
	return Choice{value: v, set: true}
}

// Unset returns an empty Choice
func Unset() Choice {
	return Choice{}
}

// IsSet reports whether an option has been chosen
func (c Choice) IsSet() bool {
	return c.set
}

// Value returns the chosen option, or "" when unset
func (c Choice) Value() string {
	return c.value
}

// MarshalJSON encodes an unset choice as null
func (c Choice) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON decodes null or "" as unset
func (c *Choice) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil || *v == "" {
		*c = Unset()
		return nil
	}
	*c = Chosen(*v)
	return nil
}
