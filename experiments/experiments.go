package experiments

import (
	"context"
	"fmt"
	"sort"

	"pickomino/agent"
	"pickomino/engine"
	"pickomino/experiments/metrics"
	"pickomino/game"
	"pickomino/searcher"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Simulation plays a number of games between a fixed seating of agents.
type Simulation struct {
	Name     string
	Agents   []metrics.AgentConfig // One per player, in seating order
	Games    int
	Parallel int // Games played at once, at least one
	Seed     uint64
	MaxTurns int
	Validate bool
}

type Result struct {
	Finishes   [][]int // Finishes[player][place] counts placings, place 0 is first
	Unfinished int     // Games stopped by the turn cap
	Games      []metrics.GameRecord
	Moves      []metrics.MoveRecord
}

type gameResult struct {
	gameMetric  metrics.GameMetric
	moveMetrics []metrics.MoveMetric
}

// Run plays every game of the simulation and tallies the placings. Each game
// is seeded from the simulation seed and its index, so results do not depend
// on Parallel.
func Run(ctx context.Context, sim Simulation) (Result, error) {
	players := len(sim.Agents)
	if players < 2 {
		return Result{}, fmt.Errorf("simulation %s needs at least two agents, got %d", sim.Name, players)
	}
	rules := game.NewStandardRules(players)
	if err := rules.Validate(); err != nil {
		return Result{}, err
	}

	log.Info().Msgf("starting %s simulation of %d games...", sim.Name, sim.Games)

	results := make([]gameResult, sim.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(sim.Parallel, 1))
	for i := 0; i < sim.Games; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gameMetric, moveMetrics, err := runGame(rules, sim, sim.Seed+uint64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = gameResult{gameMetric: gameMetric, moveMetrics: moveMetrics}
			log.Info().Msgf("completed game %d of %d with worms %v", i+1, sim.Games, gameMetric.WormCounts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Finishes: make([][]int, players)}
	for player := range result.Finishes {
		result.Finishes[player] = make([]int, players)
	}
	ids := make([]int, players)
	for player, config := range sim.Agents {
		ids[player] = config.ID
	}
	for i, r := range results {
		for place, player := range Placings(r.gameMetric.WormCounts) {
			result.Finishes[player][place]++
		}
		if !r.gameMetric.Finished {
			result.Unfinished++
		}
		result.Games = append(result.Games, metrics.GameRecord{ID: i + 1, Agents: ids, GameMetric: r.gameMetric})
		for _, mm := range r.moveMetrics {
			result.Moves = append(result.Moves, metrics.MoveRecord{Game: i + 1, MoveMetric: mm})
		}
	}

	log.Info().Msgf("completed %s simulation", sim.Name)
	for player, places := range result.Finishes {
		log.Info().Msgf("player %d:\t%v", player, places)
	}
	return result, nil
}

// Store writes the simulation configs and results under root.
func Store(root string, sim Simulation, result Result) (string, error) {
	writer, err := metrics.NewWriter(root, sim.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(sim.Agents); err != nil {
		return "", err
	}
	if err := writer.WriteGameRecords(result.Games); err != nil {
		return "", err
	}
	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return "", err
	}
	if err := writer.WriteFinishes(result.Finishes); err != nil {
		return "", err
	}
	log.Info().Msgf("stored results in %s", writer.Dir())
	return writer.Dir(), nil
}

// Placings orders players by worm count, most worms first. Equal counts are
// ordered by lower player index.
func Placings(wormCounts map[int]int) []int {
	players := make([]int, 0, len(wormCounts))
	for player := range wormCounts {
		players = append(players, player)
	}
	sort.Slice(players, func(i, j int) bool {
		if wormCounts[players[i]] != wormCounts[players[j]] {
			return wormCounts[players[i]] > wormCounts[players[j]]
		}
		return players[i] < players[j]
	})
	return players
}

func runGame(rules *game.Rules, sim Simulation, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	state, err := game.NewGameState(rules)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	agents := make([]agent.Policy, len(sim.Agents))
	for player, config := range sim.Agents {
		agents[player], err = CreateAgent(config, seed*uint64(len(sim.Agents))+uint64(player), sim.Validate)
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
	}

	dice := game.NewStateEngine(rand.New(rand.NewSource(seed)), game.WithValidation(sim.Validate), game.WithLogger(log.With().Uint64("seed", seed).Logger()))
	options := []engine.Option{engine.WithLogger(zerolog.Nop())}
	if sim.MaxTurns > 0 {
		options = append(options, engine.WithMaxTurns(sim.MaxTurns))
	}
	return engine.LocalEngine(dice, agents, options...).Run(state)
}

// CreateAgent builds the policy described by config.
func CreateAgent(config metrics.AgentConfig, seed uint64, validate bool) (agent.Policy, error) {
	if (config.Kind == "mcts" || config.Kind == "sampling") && config.Episodes <= 0 && config.Duration <= 0 {
		return nil, fmt.Errorf("agent %d: %s agent needs episodes or a duration", config.ID, config.Kind)
	}

	switch config.Kind {
	case "mcts":
		return agent.NewEvaluationAgent(createMCTS(config, seed, validate)), nil
	case "sampling":
		return agent.NewSamplingAgent(createMCTS(config, seed, validate), config.Temperature, rand.New(rand.NewSource(seed))), nil
	case "safe":
		return agent.Safe, nil
	case "better":
		return agent.SafeBetterSaving, nil
	case "random":
		return agent.NewRandomAgent(rand.New(rand.NewSource(seed))), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", config.Kind)
	}
}

func createMCTS(config metrics.AgentConfig, seed uint64, validate bool) *searcher.MCTS {
	options := []searcher.Option{searcher.WithSeed(seed), searcher.WithValidation(validate)}

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(config.Goroutines, options...)
}
