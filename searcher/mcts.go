package searcher

import (
	"context"
	"fmt"
	"time"

	"pickomino/experiments/metrics"
	"pickomino/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type Option func(mcts *MCTS)

// Visit holds the root statistics of one legal action.
type Visit struct {
	Action game.Action
	Visits int
	Value  float64 // Mean worm delta over the visits
}

type MCTS struct {
	goroutines  int
	episodes    int
	duration    time.Duration
	exploration float64
	seed        uint64
	validate    bool
	metrics     metrics.Collector
}

// WithEpisodes sets the number of simulations per decision, split across
// goroutines.
func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

// WithDuration bounds each decision by wall-clock time. Combined with
// WithEpisodes, whichever runs out first ends the search.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

// WithValidation toggles invariant checks on every simulated action.
func WithValidation(enabled bool) Option {
	return func(m *MCTS) {
		m.validate = enabled
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  max(goroutines, 1),
		exploration: DefaultExploration,
		seed:        1,
		validate:    true,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// Simulate runs the search from state and returns the root statistics of
// every legal action, in legal-action order. Each goroutine searches with its
// own session and random source; their root statistics are merged at the end.
// state is only read.
func (m *MCTS) Simulate(state *game.GameState) ([]Visit, metrics.SearchMetric, error) {
	legal, err := state.LegalActions()
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}

	m.metrics.Start(m.goroutines, m.exploration)

	var deadline time.Time
	if m.duration > 0 {
		deadline = time.Now().Add(m.duration)
	}

	results := make([][]Visit, m.goroutines)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < m.goroutines; i++ {
		g.Go(func() error {
			visits, err := m.work(ctx, state, legal, i, m.share(i), deadline)
			if err != nil {
				return fmt.Errorf("search worker %d: %w", i, err)
			}
			results[i] = visits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("search aborted")
		return nil, m.metrics.Complete(), err
	}

	return merge(legal, results), m.metrics.Complete(), nil
}

// FindAction returns the most visited legal action, short-circuiting when
// there is only one.
func (m *MCTS) FindAction(state *game.GameState) (game.Action, metrics.SearchMetric, error) {
	legal, err := state.LegalActions()
	if err != nil {
		return game.Action{}, metrics.SearchMetric{}, err
	}
	if len(legal) == 1 {
		return legal[0], metrics.SearchMetric{}, nil
	}

	visits, metric, err := m.Simulate(state)
	if err != nil {
		return game.Action{}, metric, err
	}
	return MostVisited(visits), metric, nil
}

// share returns the number of episodes worker i runs: 0 means unbounded
// (duration only) and -1 means none.
func (m *MCTS) share(i int) int {
	if m.episodes <= 0 {
		return 0
	}
	n := m.episodes / m.goroutines
	if i < m.episodes%m.goroutines {
		n++
	}
	if n == 0 {
		return -1
	}
	return n
}

func (m *MCTS) work(ctx context.Context, state *game.GameState, legal []game.Action, id int, episodes int, deadline time.Time) ([]Visit, error) {
	rng := rand.New(rand.NewSource(m.seed + uint64(id)))
	s := newSession(rng, m.exploration, m.validate, m.metrics)

	// The root is expanded up front so every episode selects a root action
	root := state.Signature()
	s.visited[root] = true
	player := state.CurrentPlayer
	worms := state.Worms(player)

	for i := 0; episodes == 0 || i < episodes; i++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.search(state, player, worms); err != nil {
			return nil, err
		}
		m.metrics.AddEpisode()
	}
	m.metrics.AddStates(len(s.visited))

	visits := make([]Visit, len(legal))
	for i, a := range legal {
		n, q := s.visits(root, a)
		visits[i] = Visit{Action: a, Visits: n, Value: q}
	}
	return visits, nil
}

func merge(legal []game.Action, results [][]Visit) []Visit {
	merged := make([]Visit, len(legal))
	for i, a := range legal {
		merged[i].Action = a
		total := 0.0
		for _, visits := range results {
			if visits == nil {
				continue
			}
			merged[i].Visits += visits[i].Visits
			total += visits[i].Value * float64(visits[i].Visits)
		}
		if merged[i].Visits > 0 {
			merged[i].Value = total / float64(merged[i].Visits)
		}
	}
	return merged
}

// MostVisited returns the action with the most visits, the first one on ties.
func MostVisited(visits []Visit) game.Action {
	if len(visits) == 0 {
		panic("no actions to choose from")
	}

	best := 0
	for i, v := range visits[1:] {
		if v.Visits > visits[best].Visits {
			best = i + 1
		}
	}
	return visits[best].Action
}
