package engine

import (
	"pickomino/experiments/metrics"
	"pickomino/game"
)

type Engine interface {
	// Run plays state until the game is over or the turn cap is reached. state
	// is advanced in place and holds the final position afterwards.
	Run(state *game.GameState) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
