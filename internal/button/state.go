// Package button implements the save/unsave control attached to each
// rendered recommendation.
//
// State graph:
//
//	Save ──► Saving ──► Saved ──► Removing ──► Save
//	           │                     │
//	           └─► Save (failure)    └─► Saved (failure)
//
// Saving and Removing are the two directions of Pending. A pending button is
// disabled, so at most one request is in flight per button.
package button

// State is the visible state of a save control.
type State string

const (
	StateSave     State = "save"
	StateSaving   State = "saving"
	StateSaved    State = "saved"
	StateRemoving State = "removing"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[State][]State{
	StateSave:     {StateSaving},
	StateSaving:   {StateSaved, StateSave},
	StateSaved:    {StateRemoving},
	StateRemoving: {StateSave, StateSaved},
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Pending reports whether a request is in flight.
func (s State) Pending() bool { return s == StateSaving || s == StateRemoving }

// Label is the text shown on the control.
func (s State) Label() string {
	switch s {
	case StateSaving:
		return "Saving..."
	case StateRemoving:
		return "Removing..."
	case StateSaved:
		return "Saved"
	default:
		return "Save"
	}
}

// Action is the data-action a click on this state triggers.
func (s State) Action() string {
	if s == StateSaved || s == StateRemoving {
		return "unsave"
	}
	return "save"
}
