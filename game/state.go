package game

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sort"
)

// GameState represents the dynamic state of a game. Every slice is owned by
// exactly one GameState; Copy never shares storage with its source.
type GameState struct {
	Rules         *Rules     // Static rules, shared and never mutated
	Stacks        [][]Domino // Per-player stacks, top is the last element
	Pool          []Domino   // Unclaimed dominoes, ascending by face
	Saved         []int      // Dice saved this turn
	Rolled        []int      // Dice from the most recent roll, empty once resolved
	Resolved      bool       // Whether the most recent roll has been resolved
	CurrentPlayer int
	Lost          int // Dominoes permanently removed from the game
}

// NewGameState initializes and returns the state of a fresh game.
func NewGameState(rules *Rules) (*GameState, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	gs := &GameState{
		Rules:    rules,
		Stacks:   make([][]Domino, rules.NumPlayers),
		Pool:     make([]Domino, 0, rules.NumDominoes()),
		Saved:    make([]int, 0, rules.NumDice),
		Rolled:   make([]int, 0, rules.NumDice),
		Resolved: true,
	}
	for i := range gs.Stacks {
		gs.Stacks[i] = []Domino{}
	}
	for face := rules.MinFace; face <= rules.MaxFace; face++ {
		gs.Pool = append(gs.Pool, NewDomino(face))
	}
	return gs, nil
}

// Copy returns a deep copy of the state.
func (gs *GameState) Copy() *GameState {
	stacks := make([][]Domino, len(gs.Stacks))
	for i, stack := range gs.Stacks {
		stacks[i] = slices.Clone(stack)
		if stacks[i] == nil {
			stacks[i] = []Domino{}
		}
	}

	return &GameState{
		Rules:         gs.Rules,
		Stacks:        stacks,
		Pool:          append(make([]Domino, 0, len(gs.Pool)), gs.Pool...),
		Saved:         append(make([]int, 0, gs.Rules.NumDice), gs.Saved...),
		Rolled:        append(make([]int, 0, gs.Rules.NumDice), gs.Rolled...),
		Resolved:      gs.Resolved,
		CurrentPlayer: gs.CurrentPlayer,
		Lost:          gs.Lost,
	}
}

// IsGameOver reports whether the community pool is exhausted.
func (gs *GameState) IsGameOver() bool {
	return len(gs.Pool) == 0
}

// Score returns the value of the saved dice.
func (gs *GameState) Score() int {
	score := 0
	for _, die := range gs.Saved {
		score += gs.Rules.DieScore(die)
	}
	return score
}

// Worms returns the worm total of a player's stack.
func (gs *GameState) Worms(player int) int {
	worms := 0
	for _, d := range gs.Stacks[player] {
		worms += d.Worms
	}
	return worms
}

// WormCounts returns every player's worm total, keyed by player index.
func (gs *GameState) WormCounts() map[int]int {
	counts := make(map[int]int, len(gs.Stacks))
	for player := range gs.Stacks {
		counts[player] = gs.Worms(player)
	}
	return counts
}

// InPlay returns the number of dominoes in the pool and on stacks.
func (gs *GameState) InPlay() int {
	total := len(gs.Pool)
	for _, stack := range gs.Stacks {
		total += len(stack)
	}
	return total
}

func (gs *GameState) hasSaved(face int) bool {
	return slices.Contains(gs.Saved, face)
}

func (gs *GameState) hasRolled(face int) bool {
	return slices.Contains(gs.Rolled, face)
}

func (gs *GameState) distinctSaved() int {
	seen := make(map[int]struct{}, len(gs.Saved))
	for _, die := range gs.Saved {
		seen[die] = struct{}{}
	}
	return len(seen)
}

// LegalActions returns every action the current player may take, in a fixed
// order: save options by ascending face, or the community candidate, then
// opponent candidates by player index, then RollDice. It never mutates the
// state.
func (gs *GameState) LegalActions() ([]Action, error) {
	if gs.IsGameOver() {
		return nil, fmt.Errorf("cannot list legal actions: %w", ErrTerminalState)
	}

	var actions []Action
	if !gs.Resolved {
		// Faces that were rolled but have not been saved yet
		for face := 1; face <= gs.Rules.DieSides; face++ {
			if gs.hasRolled(face) && !gs.hasSaved(face) {
				actions = append(actions, Save(face))
			}
		}
	} else {
		// A worm must be saved to take a domino
		if gs.hasSaved(gs.Rules.WormFace) {
			score := gs.Score()

			// Exact match in the pool, or the nearest lower face
			for i := len(gs.Pool) - 1; i >= 0; i-- {
				if gs.Pool[i].Face <= score {
					actions = append(actions, Take(gs.Pool[i]))
					break
				}
			}

			// Opponents whose top domino matches the score exactly
			for player, stack := range gs.Stacks {
				if player == gs.CurrentPlayer || len(stack) == 0 {
					continue
				}
				if top := stack[len(stack)-1]; top.Face == score {
					actions = append(actions, Take(top))
				}
			}
		}

		if gs.distinctSaved() < gs.Rules.DieSides && len(gs.Saved) < gs.Rules.NumDice {
			actions = append(actions, Roll())
		}
	}

	if len(actions) == 0 {
		actions = append(actions, End())
	}
	return actions, nil
}

// LoseDomino returns the current player's top domino to the pool, keeping it
// sorted, then removes the pool's highest domino from the game. It reports
// whether a domino was lost.
func (gs *GameState) LoseDomino() bool {
	stack := gs.Stacks[gs.CurrentPlayer]
	if len(stack) == 0 {
		return false
	}

	top := stack[len(stack)-1]
	gs.Stacks[gs.CurrentPlayer] = stack[:len(stack)-1]

	i := sort.Search(len(gs.Pool), func(i int) bool { return gs.Pool[i].Face > top.Face })
	gs.Pool = slices.Insert(gs.Pool, i, top)
	gs.Pool = gs.Pool[:len(gs.Pool)-1]
	gs.Lost++
	return true
}

// EndTurn clears the dice and passes control to the next player.
func (gs *GameState) EndTurn() {
	gs.Saved = gs.Saved[:0]
	gs.Rolled = gs.Rolled[:0]
	gs.Resolved = true
	gs.CurrentPlayer = (gs.CurrentPlayer + 1) % gs.Rules.NumPlayers
}

// AssertValid checks the state invariants.
func (gs *GameState) AssertValid() error {
	invalid := func(format string, args ...any) error {
		return &InvalidGameStateError{State: gs, Reason: fmt.Sprintf(format, args...)}
	}

	if len(gs.Stacks) != gs.Rules.NumPlayers {
		return invalid("%d stacks for %d players", len(gs.Stacks), gs.Rules.NumPlayers)
	}
	if gs.CurrentPlayer < 0 || gs.CurrentPlayer >= gs.Rules.NumPlayers {
		return invalid("current player %d out of range [0,%d)", gs.CurrentPlayer, gs.Rules.NumPlayers)
	}
	if gs.Lost < 0 {
		return invalid("negative lost count %d", gs.Lost)
	}
	if expected := gs.Rules.NumDominoes() - gs.Lost; gs.InPlay() != expected {
		return invalid("%d dominoes in play, expected %d", gs.InPlay(), expected)
	}
	if dice := len(gs.Saved) + len(gs.Rolled); dice > gs.Rules.NumDice {
		return invalid("%d dice held, only %d exist", dice, gs.Rules.NumDice)
	}
	for i := 1; i < len(gs.Pool); i++ {
		if gs.Pool[i-1].Face >= gs.Pool[i].Face {
			return invalid("pool not ascending at index %d: %v", i, gs.Pool)
		}
	}
	for _, die := range append(slices.Clone(gs.Saved), gs.Rolled...) {
		if die < 1 || die > gs.Rules.DieSides {
			return invalid("die face %d out of range [1,%d]", die, gs.Rules.DieSides)
		}
	}
	if gs.Resolved && len(gs.Rolled) > 0 {
		return invalid("resolved roll still holds %d dice", len(gs.Rolled))
	}
	return nil
}

// Signature returns a canonical encoding of the state. Dice are encoded as
// per-face counts since their order carries no meaning; stacks keep their order.
func (gs *GameState) Signature() Signature {
	buf := make([]byte, 0, 64)
	buf = binary.AppendUvarint(buf, uint64(gs.CurrentPlayer))
	if gs.Resolved {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	buf = appendFaceCounts(buf, gs.Saved, gs.Rules.DieSides)
	buf = appendFaceCounts(buf, gs.Rolled, gs.Rules.DieSides)

	buf = appendDominoes(buf, gs.Pool)
	for _, stack := range gs.Stacks {
		buf = appendDominoes(buf, stack)
	}
	return Signature(buf)
}

func appendFaceCounts(buf []byte, dice []int, sides int) []byte {
	counts := make([]uint64, sides+1)
	for _, die := range dice {
		counts[die]++
	}
	for _, count := range counts[1:] {
		buf = binary.AppendUvarint(buf, count)
	}
	return buf
}

// Length-prefixed so adjacent sequences cannot run into each other.
func appendDominoes(buf []byte, dominoes []Domino) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(dominoes)))
	for _, d := range dominoes {
		buf = binary.AppendUvarint(buf, uint64(d.Face))
	}
	return buf
}

func (gs *GameState) String() string {
	return fmt.Sprintf("player=%d resolved=%t saved=%v rolled=%v score=%d pool=%v stacks=%v lost=%d",
		gs.CurrentPlayer, gs.Resolved, gs.Saved, gs.Rolled, gs.Score(), gs.Pool, gs.Stacks, gs.Lost)
}
