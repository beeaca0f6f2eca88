package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pickomino/agent"
	"pickomino/engine"
	"pickomino/experiments"
	"pickomino/game"
	"pickomino/meta"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// registerSearchFlags binds the flags shared by every command that builds agents.
func registerSearchFlags(flags *flag.FlagSet, cfg *config) {
	flags.IntVar(&cfg.Players, "players", cfg.Players, "number of players when -agents is empty")
	flags.IntVar(&cfg.Simulations, "simulations", cfg.Simulations, "MCTS simulations per decision")
	flags.DurationVar(&cfg.Duration, "duration", cfg.Duration, "MCTS time budget per decision (0 for none)")
	flags.Float64Var(&cfg.Exploration, "exploration", cfg.Exploration, "UCB1 exploration constant")
	flags.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "sampling agent temperature")
	flags.IntVar(&cfg.Goroutines, "goroutines", cfg.Goroutines, "MCTS search goroutines")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	flags.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "stop a game after this many turns")
	flags.BoolVar(&cfg.Validate, "validate", cfg.Validate, "check invariants after every action")
}

type playCommand struct {
	cfg    config
	agents string
}

func (*playCommand) Name() string     { return "play" }
func (*playCommand) Synopsis() string { return "Play a single game and log every action" }
func (*playCommand) Usage() string {
	return `play [flags]
Agents are mcts, sampling, safe, better or random.
`
}

func (c *playCommand) SetFlags(flags *flag.FlagSet) {
	registerSearchFlags(flags, &c.cfg)
	flags.StringVar(&c.agents, "agents", "", "comma separated agent per player")
}

func (c *playCommand) Execute(ctx context.Context, flags *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	seating, err := c.cfg.seating(c.agents)
	if err != nil {
		log.Error().Err(err).Msg("invalid agents")
		return subcommands.ExitUsageError
	}

	state, err := game.NewGameState(game.NewStandardRules(len(seating)))
	if err != nil {
		log.Error().Err(err).Msg("invalid rules")
		return subcommands.ExitUsageError
	}
	agents := make([]agent.Policy, len(seating))
	for player, config := range seating {
		agents[player], err = experiments.CreateAgent(config, c.cfg.Seed+uint64(player)+1, c.cfg.Validate)
		if err != nil {
			log.Error().Err(err).Msg("invalid agent")
			return subcommands.ExitUsageError
		}
	}

	rules := game.NewStateEngine(rand.New(rand.NewSource(c.cfg.Seed)), game.WithValidation(c.cfg.Validate), game.WithLogger(log.Logger))
	e := engine.LocalEngine(rules, agents, engine.WithMaxTurns(c.cfg.MaxTurns))
	gameMetric, moveMetrics, err := e.Run(state)
	if err != nil {
		log.Error().Err(err).Msg("game aborted")
		return subcommands.ExitFailure
	}

	for _, mm := range moveMetrics {
		log.Debug().Msgf("move %d: player %d %s (%d episodes in %v)", mm.Step, mm.Player, mm.Action, mm.Episodes, mm.Duration)
	}
	for place, player := range experiments.Placings(gameMetric.WormCounts) {
		fmt.Printf("%d. player %d (%s): %d worms\n", place+1, player, seating[player].Kind, gameMetric.WormCounts[player])
	}
	return subcommands.ExitSuccess
}

type simulateCommand struct {
	cfg      config
	agents   string
	games    int
	parallel int
}

func (*simulateCommand) Name() string     { return "simulate" }
func (*simulateCommand) Synopsis() string { return "Play many games and tally the placings" }
func (*simulateCommand) Usage() string {
	return `simulate [flags]
`
}

func (c *simulateCommand) SetFlags(flags *flag.FlagSet) {
	registerSearchFlags(flags, &c.cfg)
	flags.StringVar(&c.agents, "agents", "", "comma separated agent per player")
	flags.IntVar(&c.games, "games", meta.GAMES, "number of games")
	flags.IntVar(&c.parallel, "parallel", 1, "games played at once")
	flags.StringVar(&c.cfg.Output, "out", c.cfg.Output, "directory to write CSV results to (empty for none)")
}

func (c *simulateCommand) Execute(ctx context.Context, flags *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	seating, err := c.cfg.seating(c.agents)
	if err != nil {
		log.Error().Err(err).Msg("invalid agents")
		return subcommands.ExitUsageError
	}

	sim := experiments.Simulation{
		Name:     "simulate",
		Agents:   seating,
		Games:    c.games,
		Parallel: c.parallel,
		Seed:     c.cfg.Seed,
		MaxTurns: c.cfg.MaxTurns,
		Validate: c.cfg.Validate,
	}
	result, err := experiments.Run(ctx, sim)
	if err != nil {
		log.Error().Err(err).Msg("simulation aborted")
		return subcommands.ExitFailure
	}

	for player, places := range result.Finishes {
		fmt.Printf("Player %d (%s):\t%v\n", player, seating[player].Kind, places)
	}
	if result.Unfinished > 0 {
		fmt.Printf("%d games stopped at the turn cap\n", result.Unfinished)
	}
	if c.cfg.Output != "" {
		if _, err := experiments.Store(c.cfg.Output, sim, result); err != nil {
			log.Error().Err(err).Msg("failed to store results")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

type throughputCommand struct {
	cfg        config
	goroutines string
	games      int
	budget     time.Duration
}

func (*throughputCommand) Name() string     { return "throughput" }
func (*throughputCommand) Synopsis() string { return "Measure MCTS episodes per second by goroutine count" }
func (*throughputCommand) Usage() string {
	return `throughput [flags]
`
}

func (c *throughputCommand) SetFlags(flags *flag.FlagSet) {
	flags.IntVar(&c.cfg.Players, "players", c.cfg.Players, "number of players")
	flags.StringVar(&c.goroutines, "goroutines", "1,2,4,8", "comma separated goroutine counts")
	flags.IntVar(&c.games, "games", 1, "games per goroutine count")
	flags.DurationVar(&c.budget, "budget", 10*time.Millisecond, "time budget per decision")
	flags.StringVar(&c.cfg.Output, "out", c.cfg.Output, "directory to write CSV results to (empty for none)")
}

func (c *throughputCommand) Execute(ctx context.Context, flags *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var counts []int
	for _, field := range strings.Split(c.goroutines, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "invalid goroutine count %q\n", field)
			return subcommands.ExitUsageError
		}
		counts = append(counts, n)
	}

	throughputs, err := experiments.RunThroughputExperiment(ctx, c.cfg.Output, counts, c.cfg.Players, c.games, c.budget)
	if err != nil {
		log.Error().Err(err).Msg("throughput experiment aborted")
		return subcommands.ExitFailure
	}
	for _, t := range throughputs {
		fmt.Printf("%d goroutines:\t%.0f episodes/s\n", t.Goroutines, t.EpisodesPerSecond)
	}
	return subcommands.ExitSuccess
}
