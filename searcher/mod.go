package searcher

import "math"

// Hyperparameters for MCTS

const DefaultExploration = math.Sqrt2

// Keeps the exploration bonus of unvisited actions positive at unvisited states
const epsilon = 1e-7

// ucb1 scores an action from state s. An action without visits is ranked on
// exploration alone.
func ucb1(q float64, nsa int, ns int, c float64) float64 {
	if nsa == 0 {
		return c * math.Sqrt(float64(ns)+epsilon)
	}
	return q + c*math.Sqrt(float64(ns))/float64(1+nsa)
}
