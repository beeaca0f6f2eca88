package experiments

import (
	"context"
	"fmt"
	"time"

	"pickomino/experiments/metrics"

	"github.com/rs/zerolog/log"
)

// Throughput is the search rate of one goroutine count.
type Throughput struct {
	Goroutines        int
	EpisodesPerSecond float64
}

// RunThroughputExperiment plays self-play games between equal MCTS agents
// under a fixed time budget per decision, once per goroutine count, and
// reports episodes searched per second. Results are stored under root when it
// is not empty.
func RunThroughputExperiment(ctx context.Context, root string, goroutines []int, players, games int, budget time.Duration) ([]Throughput, error) {
	log.Info().Msg("starting throughput experiment...")

	throughputs := make([]Throughput, 0, len(goroutines))
	for i, g := range goroutines {
		// Same config for every player for the same playing strength
		config := metrics.AgentConfig{ID: i + 1, Kind: "mcts", Goroutines: g, Duration: budget}
		agents := make([]metrics.AgentConfig, players)
		for player := range agents {
			agents[player] = config
		}
		sim := Simulation{
			Name:   fmt.Sprintf("throughput_%d", g),
			Agents: agents,
			Games:  games,
			Seed:   uint64(i + 1),
		}

		result, err := Run(ctx, sim)
		if err != nil {
			return nil, err
		}
		if root != "" {
			if _, err := Store(root, sim, result); err != nil {
				return nil, err
			}
		}

		episodes, elapsed := 0, time.Duration(0)
		for _, move := range result.Moves {
			episodes += move.Episodes
			elapsed += move.Duration
		}
		t := Throughput{Goroutines: g}
		if elapsed > 0 {
			t.EpisodesPerSecond = float64(episodes) / elapsed.Seconds()
		}
		throughputs = append(throughputs, t)
		log.Info().Msgf("%d goroutines: %.0f episodes/s", g, t.EpisodesPerSecond)
	}

	log.Info().Msg("completed throughput experiment")
	return throughputs, nil
}
