package agent

import (
	"pickomino/experiments/metrics"
	"pickomino/game"
	"pickomino/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns an agent that plays the most visited action of
// each search.
func NewEvaluationAgent(mcts *searcher.MCTS) Policy {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) ChooseAction(state *game.GameState, legal []game.Action) (game.Action, metrics.SearchMetric, error) {
	if len(legal) == 1 {
		return legal[0], metrics.SearchMetric{}, nil
	}
	return a.mcts.FindAction(state)
}
