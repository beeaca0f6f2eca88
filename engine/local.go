package engine

import (
	"fmt"
	"time"

	"pickomino/agent"
	"pickomino/experiments/metrics"
	"pickomino/game"
	"pickomino/meta"
	"pickomino/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Option func(e *localEngine)

// WithMaxTurns caps the number of turns of a game.
func WithMaxTurns(turns int) Option {
	return func(e *localEngine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *localEngine) {
		e.log = logger
	}
}

type localEngine struct {
	rules    *game.StateEngine
	agents   []agent.Policy
	maxTurns int
	log      zerolog.Logger
}

// LocalEngine returns an engine playing one policy per player, indexed by
// player.
func LocalEngine(rules *game.StateEngine, agents []agent.Policy, options ...Option) Engine {
	if len(agents) < 2 {
		panic("need at least two players")
	}

	e := &localEngine{
		rules:    rules,
		agents:   agents,
		maxTurns: meta.MAX_TURNS,
		log:      log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *localEngine) Run(state *game.GameState) (metrics.GameMetric, []metrics.MoveMetric, error) {
	if len(state.Stacks) != len(e.agents) {
		return metrics.GameMetric{}, nil, fmt.Errorf("game has %d players but %d agents", len(state.Stacks), len(e.agents))
	}

	gameMetric := metrics.GameMetric{
		StartingPlayer: state.CurrentPlayer,
		StartTime:      time.Now(),
	}
	e.log.Info().Msgf("player %d is starting", state.CurrentPlayer)

	var moveMetrics []metrics.MoveMetric
	for !e.rules.IsGameOver(state) && gameMetric.Turns < e.maxTurns {
		player := state.CurrentPlayer
		legal, err := e.rules.LegalActions(state)
		if err != nil {
			return gameMetric, moveMetrics, err
		}

		action, searchMetric, err := e.agents[player].ChooseAction(state, legal)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("player %d: %w", player, err)
		}
		if !utils.Contains(legal, action) {
			return gameMetric, moveMetrics, &game.InvalidActionError{State: state, Action: action, Reason: fmt.Sprintf("player %d chose an action outside %v", player, legal)}
		}

		gameMetric.TotalMoves++
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         gameMetric.TotalMoves,
			Player:       player,
			Action:       action.String(),
			SearchMetric: searchMetric,
		})

		if err := e.rules.Resolve(state, action); err != nil {
			return gameMetric, moveMetrics, err
		}
		if state.CurrentPlayer != player || e.rules.IsGameOver(state) {
			gameMetric.Turns++
		}
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Finished = e.rules.IsGameOver(state)
	gameMetric.WormCounts = e.rules.WormCounts(state)

	if gameMetric.Finished {
		e.log.Info().Msgf("game over after %d turns with worms %v", gameMetric.Turns, gameMetric.WormCounts)
	} else {
		e.log.Warn().Msgf("stopped after %d turns (game not over)", gameMetric.Turns)
	}
	return gameMetric, moveMetrics, nil
}
