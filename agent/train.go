package agent

import (
	"math"

	"pickomino/experiments/metrics"
	"pickomino/game"
	"pickomino/searcher"

	"golang.org/x/exp/rand"
)

type samplingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewSamplingAgent returns an agent that samples actions in proportion to
// their root visits raised to 1/temperature. A temperature of zero plays the
// most visited action.
func NewSamplingAgent(mcts *searcher.MCTS, temperature float64, rng *rand.Rand) Policy {
	return samplingAgent{mcts: mcts, temperature: temperature, rng: rng}
}

func (a samplingAgent) ChooseAction(state *game.GameState, legal []game.Action) (game.Action, metrics.SearchMetric, error) {
	if len(legal) == 1 {
		return legal[0], metrics.SearchMetric{}, nil
	}

	visits, metric, err := a.mcts.Simulate(state)
	if err != nil {
		return game.Action{}, metric, err
	}
	if a.temperature <= 0 {
		return searcher.MostVisited(visits), metric, nil
	}
	policy := adjustTemperature(visits, a.temperature)
	if policy == nil {
		return searcher.MostVisited(visits), metric, nil
	}
	return visits[sample(policy, a.rng.Float64())].Action, metric, nil
}

// adjustTemperature returns the normalized probability of each visit entry,
// or nil when nothing was visited.
func adjustTemperature(visits []searcher.Visit, temperature float64) []float64 {
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make([]float64, len(visits))
	for i, v := range visits {
		prob := math.Pow(float64(v.Visits), exponent)
		sum += prob
		policy[i] = prob
	}
	if sum == 0 || math.IsInf(sum, 0) {
		return nil
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

// sample returns the index whose cumulative probability first exceeds u.
func sample(policy []float64, u float64) int {
	cumulative := 0.0
	last := 0
	for i, prob := range policy {
		if prob == 0 {
			continue
		}
		last = i
		cumulative += prob
		if u < cumulative {
			return i
		}
	}
	return last // Fallback in case of rounding errors
}
