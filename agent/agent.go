package agent

import (
	"pickomino/experiments/metrics"
	"pickomino/game"
)

// Policy chooses one of the legal actions for the current player. legal is
// always the result of state.LegalActions(); implementations must not mutate
// either argument.
type Policy interface {
	// ChooseAction returns the chosen action and search metrics (if collected)
	ChooseAction(state *game.GameState, legal []game.Action) (game.Action, metrics.SearchMetric, error)
}

// PolicyFunc adapts a plain decision function that collects no metrics.
type PolicyFunc func(state *game.GameState, legal []game.Action) (game.Action, error)

func (f PolicyFunc) ChooseAction(state *game.GameState, legal []game.Action) (game.Action, metrics.SearchMetric, error) {
	action, err := f(state, legal)
	return action, metrics.SearchMetric{}, err
}
