package checkout

import (
	"errors"
	"fmt"
)

// State is the checkout step. The flow is linear: Shipping → Payment →
// Confirmation, with Confirmation terminal.
type State string

const (
	StateShipping     State = "shipping"
	StatePayment      State = "payment"
	StateConfirmation State = "confirmation"
)

var ErrInvalidTransition = errors.New("invalid checkout transition")

// validTransitions defines allowed state transitions
var validTransitions = map[State][]State{
	StateShipping:     {StatePayment},
	StatePayment:      {StateConfirmation},
	StateConfirmation: {}, // terminal state
}

// CanTransitionTo checks if the flow may move to the target state.
func (s State) CanTransitionTo(target State) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

func (s State) IsTerminal() bool {
	return s == StateConfirmation
}

func (s State) String() string {
	return string(s)
}

// TransitionError returns the rejection for an invalid move.
func TransitionError(from, to State) error {
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, from, to)
}
