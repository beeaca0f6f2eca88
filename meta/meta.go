// meta/meta.go
package meta

import "math"

// PLAYERS defines the default number of players.
const PLAYERS = 4

// GO_ROUTINES defines the number of goroutines to use.
const GO_ROUTINES = 1

// EPISODES defines the number of MCTS simulations per decision.
const EPISODES = 200

// EXPLORATION defines the UCB1 exploration constant.
const EXPLORATION = math.Sqrt2

// MAX_TURNS bounds a game that keeps cycling dominoes between stacks.
const MAX_TURNS = 1000

// GAMES defines the number of games per simulation.
const GAMES = 200
