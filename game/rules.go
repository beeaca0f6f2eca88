package game

import "fmt"

// Rules holds the static parameters of a game.
type Rules struct {
	NumPlayers int
	NumDice    int
	MinFace    int // Lowest domino face
	MaxFace    int // Highest domino face
	DieSides   int
	WormFace   int // Die face showing a worm
	WormScore  int // Score contributed by a worm die
}

func NewStandardRules(numPlayers int) *Rules {
	return &Rules{
		NumPlayers: numPlayers,
		NumDice:    8,
		MinFace:    21,
		MaxFace:    36,
		DieSides:   6,
		WormFace:   6,
		WormScore:  5,
	}
}

// Validate reports whether the rules describe a playable game.
func (r *Rules) Validate() error {
	if r.NumPlayers < 1 {
		return fmt.Errorf("invalid rules: need at least one player, got %d", r.NumPlayers)
	}
	if r.NumDice < 1 {
		return fmt.Errorf("invalid rules: need at least one die, got %d", r.NumDice)
	}
	if r.DieSides < 1 || r.WormFace < 1 || r.WormFace > r.DieSides {
		return fmt.Errorf("invalid rules: worm face %d not on a %d-sided die", r.WormFace, r.DieSides)
	}
	if r.MinFace > r.MaxFace {
		return fmt.Errorf("invalid rules: domino faces [%d,%d] are empty", r.MinFace, r.MaxFace)
	}
	return nil
}

// NumDominoes is the number of dominoes a new game starts with.
func (r *Rules) NumDominoes() int {
	return r.MaxFace - r.MinFace + 1
}

// DieScore returns the score contributed by a single saved die.
func (r *Rules) DieScore(face int) int {
	if face == r.WormFace {
		return r.WormScore
	}
	return face
}
