package types

// ReviewState is the position of a reviewer session in the review state machine
type ReviewState string

const (
	ReviewStateNotLoggedIn ReviewState = "not_logged_in"
	ReviewStateReviewing   ReviewState = "reviewing"
	ReviewStatePaused      ReviewState = "paused"
	ReviewStateComplete    ReviewState = "complete"
)

// AllReviewStates returns all valid review states
func AllReviewStates() []ReviewState {
	return []ReviewState{
		ReviewStateNotLoggedIn,
		ReviewStateReviewing,
		ReviewStatePaused,
		ReviewStateComplete,
	}
}

// IsValid checks if the review state is valid
func (s ReviewState) IsValid() bool {
	switch s {
	case ReviewStateNotLoggedIn,
		ReviewStateReviewing,
		ReviewStatePaused,
		ReviewStateComplete:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further writes are possible from s
func (s ReviewState) IsTerminal() bool {
	return s == ReviewStateComplete
}

// String returns the string representation of the review state
func (s ReviewState) String() string {
	return string(s)
}
