package types

import "fmt"

// SubmitAction selects what happens to the cursor after a successful commit
type SubmitAction string

const (
	SubmitActionContinue SubmitAction = "continue"
	SubmitActionPause    SubmitAction = "pause"
)

// IsValid checks if the submit action is valid
func (a SubmitAction) IsValid() bool {
	switch a {
	case SubmitActionContinue, SubmitActionPause:
		return true
	default:
		return false
	}
}

// String returns the string representation of the submit action
func (a SubmitAction) String() string {
	return string(a)
}

// ParseSubmitAction parses a string into a SubmitAction. An empty string
// defaults to SubmitActionContinue.
func ParseSubmitAction(s string) (SubmitAction, error) {
	if s == "" {
		return SubmitActionContinue, nil
	}
	action := SubmitAction(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid submit action: %s", s)
	}
	return action, nil
}
