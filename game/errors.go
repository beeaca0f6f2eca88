package game

import (
	"errors"
	"fmt"
)

// ErrTerminalState is returned when legal actions are requested for a game
// that is already over.
var ErrTerminalState = errors.New("game is over")

// InvalidActionError reports an action that is inconsistent with the phase or
// contents of the state it was applied to.
type InvalidActionError struct {
	State  *GameState
	Action Action
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %s: %s", e.Action, e.Reason)
}

// InvalidGameStateError reports a broken invariant. It signals an engine
// defect: play must not continue.
type InvalidGameStateError struct {
	State  *GameState
	Reason string
}

func (e *InvalidGameStateError) Error() string {
	return fmt.Sprintf("invalid game state: %s", e.Reason)
}
