package game

import (
	"fmt"

	"pickomino/utils"

	"github.com/rs/zerolog"
)

type EngineOption func(e *StateEngine)

// WithValidation toggles action checks before, and invariant checks after,
// every Resolve.
func WithValidation(enabled bool) EngineOption {
	return func(e *StateEngine) {
		e.validate = enabled
	}
}

func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *StateEngine) {
		e.log = logger
	}
}

// StateEngine applies actions to game states. It holds no game state of its
// own, only the dice used for rolling.
type StateEngine struct {
	dice     Roller
	validate bool
	log      zerolog.Logger
}

func NewStateEngine(dice Roller, options ...EngineOption) *StateEngine {
	e := &StateEngine{ // Default values
		dice:     dice,
		validate: true,
		log:      zerolog.Nop(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *StateEngine) IsGameOver(gs *GameState) bool {
	return gs.IsGameOver()
}

func (e *StateEngine) LegalActions(gs *GameState) ([]Action, error) {
	return gs.LegalActions()
}

func (e *StateEngine) WormCounts(gs *GameState) map[int]int {
	return gs.WormCounts()
}

// Resolve plays the action out on the state, mutating it in place.
func (e *StateEngine) Resolve(gs *GameState, action Action) error {
	if e.validate {
		if err := e.check(gs, action); err != nil {
			return err
		}
	}

	switch action.Type {
	case RollDice:
		e.rollDice(gs)
	case SaveDie:
		saveDie(gs, action.Face)
	case TakeDomino:
		if err := e.takeDomino(gs, action); err != nil {
			return err
		}
	case EndTurn:
		e.loseDomino(gs)
		gs.EndTurn()
	default:
		return &InvalidActionError{State: gs, Action: action, Reason: "unknown action type"}
	}

	if e.validate {
		return gs.AssertValid()
	}
	return nil
}

func (e *StateEngine) check(gs *GameState, action Action) error {
	invalid := func(format string, args ...any) error {
		return &InvalidActionError{State: gs, Action: action, Reason: fmt.Sprintf(format, args...)}
	}

	if gs.IsGameOver() {
		return invalid("%v", ErrTerminalState)
	}

	switch action.Type {
	case RollDice:
		if !gs.Resolved {
			return invalid("previous roll is unresolved")
		}
		if len(gs.Saved) >= gs.Rules.NumDice {
			return invalid("no dice left to roll")
		}
	case SaveDie:
		if gs.Resolved {
			return invalid("no roll to resolve")
		}
		if !gs.hasRolled(action.Face) {
			return invalid("face %d was not rolled", action.Face)
		}
		if gs.hasSaved(action.Face) {
			return invalid("face %d is already saved", action.Face)
		}
	case TakeDomino, EndTurn:
		if !gs.Resolved {
			return invalid("previous roll is unresolved")
		}
	}
	return nil
}

func (e *StateEngine) rollDice(gs *GameState) {
	n := gs.Rules.NumDice - len(gs.Saved)
	gs.Rolled = gs.Rolled[:0]
	for i := 0; i < n; i++ {
		gs.Rolled = append(gs.Rolled, e.dice.Intn(gs.Rules.DieSides)+1)
	}
	gs.Resolved = false

	// Bust when the roll offers no face that is not saved already
	for _, die := range gs.Rolled {
		if !gs.hasSaved(die) {
			return
		}
	}
	e.log.Debug().Int("player", gs.CurrentPlayer).Ints("rolled", gs.Rolled).Ints("saved", gs.Saved).Msg("player busted")
	e.loseDomino(gs)
	gs.EndTurn()
}

func saveDie(gs *GameState, face int) {
	for _, die := range gs.Rolled {
		if die == face {
			gs.Saved = append(gs.Saved, die)
		}
	}
	gs.Rolled = gs.Rolled[:0]
	gs.Resolved = true
}

func (e *StateEngine) takeDomino(gs *GameState, action Action) error {
	d := action.Domino

	if i := utils.FindIndex(gs.Pool, d); i >= 0 {
		gs.Pool = append(gs.Pool[:i], gs.Pool[i+1:]...)
	} else {
		// Steal from the top of an opponent's stack
		from := -1
		for player, stack := range gs.Stacks {
			if player != gs.CurrentPlayer && len(stack) > 0 && stack[len(stack)-1] == d {
				from = player
				break
			}
		}
		if from < 0 {
			return &InvalidActionError{State: gs, Action: action, Reason: fmt.Sprintf("domino %s is neither in the pool nor on top of an opponent's stack", d)}
		}
		stack := gs.Stacks[from]
		gs.Stacks[from] = stack[:len(stack)-1]
		e.log.Debug().Int("player", gs.CurrentPlayer).Int("from", from).Stringer("domino", d).Msg("stole domino")
	}

	gs.Stacks[gs.CurrentPlayer] = append(gs.Stacks[gs.CurrentPlayer], d)
	e.log.Debug().Int("player", gs.CurrentPlayer).Stringer("domino", d).Int("score", gs.Score()).Msg("took domino")
	gs.EndTurn()
	return nil
}

func (e *StateEngine) loseDomino(gs *GameState) {
	player := gs.CurrentPlayer
	if gs.LoseDomino() {
		e.log.Debug().Int("player", player).Int("inPlay", gs.InPlay()).Msg("lost domino")
	}
}
