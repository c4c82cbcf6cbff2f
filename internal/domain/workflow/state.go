package workflow

// State represents a stage in the two-party plan approval lifecycle
type State string

const (
	StateDraft           State = "draft"
	StateAwaitingReviewA State = "awaiting_review_A"
	StateAwaitingReviewB State = "awaiting_review_B"
	StateApproved        State = "approved"
	StatePublished       State = "published"
)

// AllStates lists every state in lifecycle order
func AllStates() []State {
	return []State{StateDraft, StateAwaitingReviewA, StateAwaitingReviewB, StateApproved, StatePublished}
}

// IsTerminal returns true if no trigger is defined from the state
func (s State) IsTerminal() bool {
	return s == StatePublished
}

// IsAwaitingReview returns true while one of the companies still has to approve
func (s State) IsAwaitingReview() bool {
	return s == StateAwaitingReviewA || s == StateAwaitingReviewB
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StateAwaitingReviewA, StateAwaitingReviewB, StateApproved, StatePublished:
		return true
	}
	return false
}
