package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pickomino/experiments/metrics"
	"pickomino/meta"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// config holds the process defaults; subcommand flags override them.
type config struct {
	Players     int           `env:"PICKOMINO_PLAYERS"`
	Simulations int           `env:"PICKOMINO_SIMULATIONS"`
	Duration    time.Duration `env:"PICKOMINO_DURATION"`
	Exploration float64       `env:"PICKOMINO_EXPLORATION"`
	Temperature float64       `env:"PICKOMINO_TEMPERATURE"`
	Seed        uint64        `env:"PICKOMINO_SEED"`
	Goroutines  int           `env:"PICKOMINO_GOROUTINES"`
	MaxTurns    int           `env:"PICKOMINO_MAX_TURNS"`
	Validate    bool          `env:"PICKOMINO_VALIDATE"`
	LogLevel    string        `env:"PICKOMINO_LOG_LEVEL"`
	Output      string        `env:"PICKOMINO_OUTPUT"`
}

// loadConfig reads the environment over the built-in defaults.
func loadConfig() (config, error) {
	cfg := config{
		Players:     meta.PLAYERS,
		Simulations: meta.EPISODES,
		Exploration: meta.EXPLORATION,
		Temperature: 1,
		Seed:        1,
		Goroutines:  meta.GO_ROUTINES,
		MaxTurns:    meta.MAX_TURNS,
		Validate:    true,
		LogLevel:    "info",
	}
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

// seating parses a comma separated list of agent kinds, one per player. An
// empty list seats one MCTS agent against better-saving agents.
func (cfg config) seating(kinds string) ([]metrics.AgentConfig, error) {
	var names []string
	if kinds == "" {
		names = make([]string, cfg.Players)
		for i := range names {
			names[i] = "better"
		}
		names[0] = "mcts"
	} else {
		names = strings.Split(kinds, ",")
	}
	if len(names) < 2 {
		return nil, fmt.Errorf("need at least two agents, got %d", len(names))
	}

	agents := make([]metrics.AgentConfig, len(names))
	for i, name := range names {
		agents[i] = metrics.AgentConfig{
			ID:          i + 1,
			Kind:        strings.TrimSpace(name),
			Goroutines:  cfg.Goroutines,
			Episodes:    cfg.Simulations,
			Duration:    cfg.Duration,
			Exploration: cfg.Exploration,
			Temperature: cfg.Temperature,
		}
	}
	return agents, nil
}
