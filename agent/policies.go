package agent

import (
	"fmt"

	"pickomino/game"
	"pickomino/utils"

	"golang.org/x/exp/rand"
)

// NewRandomAgent returns a policy choosing uniformly among the legal actions.
func NewRandomAgent(rng *rand.Rand) Policy {
	return PolicyFunc(func(state *game.GameState, legal []game.Action) (game.Action, error) {
		if len(legal) == 0 {
			return game.Action{}, fmt.Errorf("random agent: no legal actions")
		}
		return legal[rng.Intn(len(legal))], nil
	})
}

// Safe takes the highest domino whenever it can and otherwise saves the
// highest rolled face.
var Safe = PolicyFunc(func(state *game.GameState, legal []game.Action) (game.Action, error) {
	if len(legal) == 1 {
		return legal[0], nil
	}
	if take, ok := highestTake(legal); ok {
		return take, nil
	}

	saves := filter(legal, game.SaveDie)
	if len(saves) == 0 {
		return game.Action{}, fmt.Errorf("safe agent: no take or save among %v", legal)
	}
	return saves[utils.MaxIndex(saves, func(a game.Action) float64 { return float64(a.Face) })], nil
})

// SafeBetterSaving takes the highest domino whenever it can. Otherwise it
// saves the worm face once more than two other faces are saved, or else the
// face contributing the most points, preferring the higher face on ties.
var SafeBetterSaving = PolicyFunc(func(state *game.GameState, legal []game.Action) (game.Action, error) {
	if len(legal) == 1 {
		return legal[0], nil
	}
	if take, ok := highestTake(legal); ok {
		return take, nil
	}

	saves := filter(legal, game.SaveDie)
	if len(saves) == 0 {
		return game.Action{}, fmt.Errorf("better saving agent: no take or save among %v", legal)
	}

	worm := state.Rules.WormFace
	if distinct(state.Saved) > 2 && !utils.Contains(state.Saved, worm) && utils.Contains(state.Rolled, worm) {
		return game.Save(worm), nil
	}

	points := make(map[int]int, state.Rules.DieSides)
	for _, die := range state.Rolled {
		points[die] += state.Rules.DieScore(die)
	}
	// Faces never exceed DieSides, so the face breaks ties between equal points
	scale := float64(state.Rules.DieSides + 1)
	best := utils.MaxIndex(saves, func(a game.Action) float64 {
		return float64(points[a.Face])*scale + float64(a.Face)
	})
	return saves[best], nil
})

func highestTake(legal []game.Action) (game.Action, bool) {
	takes := filter(legal, game.TakeDomino)
	if len(takes) == 0 {
		return game.Action{}, false
	}
	return takes[utils.MaxIndex(takes, func(a game.Action) float64 { return float64(a.Domino.Face) })], true
}

func filter(actions []game.Action, t game.ActionType) []game.Action {
	var matched []game.Action
	for _, a := range actions {
		if a.Type == t {
			matched = append(matched, a)
		}
	}
	return matched
}

func distinct(dice []int) int {
	seen := make(map[int]struct{}, len(dice))
	for _, die := range dice {
		seen[die] = struct{}{}
	}
	return len(seen)
}
