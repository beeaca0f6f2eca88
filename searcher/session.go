package searcher

import (
	"fmt"
	"math"

	"pickomino/experiments/metrics"
	"pickomino/game"

	"golang.org/x/exp/rand"
)

type edge struct {
	state  game.Signature
	action game.Action
}

// session holds the statistics of one decision. It is owned by a single
// goroutine and discarded once the decision is made.
type session struct {
	engine      *game.StateEngine
	rng         *rand.Rand
	exploration float64
	metrics     metrics.Collector

	q       map[edge]float64        // Running mean outcome of (s,a)
	nsa     map[edge]int            // Visits of (s,a)
	ns      map[game.Signature]int  // Visits of s
	visited map[game.Signature]bool // Expanded states
}

func newSession(rng *rand.Rand, exploration float64, validate bool, collector metrics.Collector) *session {
	return &session{
		engine:      game.NewStateEngine(rng, game.WithValidation(validate)),
		rng:         rng,
		exploration: exploration,
		metrics:     collector,
		q:           make(map[edge]float64),
		nsa:         make(map[edge]int),
		ns:          make(map[game.Signature]int),
		visited:     make(map[game.Signature]bool),
	}
}

// search descends from state until the root player's turn ends or an
// unexpanded state is reached, and returns the root player's worm delta.
// state itself is never mutated.
func (s *session) search(state *game.GameState, player int, worms int) (float64, error) {
	if state.CurrentPlayer != player || state.IsGameOver() {
		return delta(state, player, worms), nil
	}

	sig := state.Signature()
	if !s.visited[sig] {
		s.visited[sig] = true
		return s.rollout(state.Copy(), player, worms)
	}

	actions, err := state.LegalActions()
	if err != nil {
		return 0, err
	}
	action := s.pick(sig, actions)

	next := state.Copy()
	if err := s.engine.Resolve(next, action); err != nil {
		return 0, fmt.Errorf("search from %v: %w", state, err)
	}
	v, err := s.search(next, player, worms)
	if err != nil {
		return 0, err
	}

	e := edge{state: sig, action: action}
	n := s.nsa[e]
	s.q[e] = (float64(n)*s.q[e] + v) / float64(n+1)
	s.nsa[e] = n + 1
	s.ns[sig]++
	return v, nil
}

// pick returns the action with the highest UCB1 score, the first one on ties.
func (s *session) pick(sig game.Signature, actions []game.Action) game.Action {
	ns := s.ns[sig]
	best := actions[0]
	bestScore := math.Inf(-1)
	for _, a := range actions {
		e := edge{state: sig, action: a}
		if score := ucb1(s.q[e], s.nsa[e], ns, s.exploration); score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best
}

// rollout plays uniformly random legal actions on state until the root
// player's turn ends.
func (s *session) rollout(state *game.GameState, player int, worms int) (float64, error) {
	s.metrics.AddRollout()
	for state.CurrentPlayer == player && !state.IsGameOver() {
		actions, err := state.LegalActions()
		if err != nil {
			return 0, err
		}
		action := actions[s.rng.Intn(len(actions))]
		if err := s.engine.Resolve(state, action); err != nil {
			return 0, fmt.Errorf("rollout: %w", err)
		}
	}
	return delta(state, player, worms), nil
}

func (s *session) visits(sig game.Signature, a game.Action) (int, float64) {
	e := edge{state: sig, action: a}
	return s.nsa[e], s.q[e]
}

func delta(state *game.GameState, player int, worms int) float64 {
	return float64(state.Worms(player) - worms)
}
