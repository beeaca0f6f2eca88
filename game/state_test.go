package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T, numPlayers int) *GameState {
	t.Helper()
	gs, err := NewGameState(NewStandardRules(numPlayers))
	require.NoError(t, err, "Standard rules should produce a game state")
	return gs
}

// removeFromPool removes the dominoes with the given faces from the pool.
func removeFromPool(t *testing.T, gs *GameState, faces ...int) {
	t.Helper()
	for _, face := range faces {
		i := -1
		for j, d := range gs.Pool {
			if d.Face == face {
				i = j
			}
		}
		require.GreaterOrEqual(t, i, 0, "Domino %d should be in the pool", face)
		gs.Pool = append(gs.Pool[:i], gs.Pool[i+1:]...)
	}
}

// stealingState mirrors a game where three dominoes have been claimed:
// player 1 holds [(22,1),(30,3)] and player 2 holds [(25,2)].
func stealingState(t *testing.T) *GameState {
	gs := newTestState(t, 4)
	removeFromPool(t, gs, 22, 25, 30)
	gs.Stacks = [][]Domino{{}, {NewDomino(22), NewDomino(30)}, {NewDomino(25)}, {}}
	require.NoError(t, gs.AssertValid(), "Stealing setup should be valid")
	return gs
}

func TestNewGameState(t *testing.T) {
	t.Run("creating a fresh game", func(t *testing.T) {
		gs := newTestState(t, 4)

		require.Len(t, gs.Pool, 16, "Pool should hold every domino from 21 to 36")
		require.Equal(t, Domino{Face: 21, Worms: 1}, gs.Pool[0], "Lowest domino should be worth 1 worm")
		require.Equal(t, Domino{Face: 36, Worms: 4}, gs.Pool[15], "Highest domino should be worth 4 worms")
		require.Len(t, gs.Stacks, 4, "Every player should have a stack")
		require.True(t, gs.Resolved, "No roll should be pending")
		require.Equal(t, 0, gs.CurrentPlayer, "First player should start")
		require.NoError(t, gs.AssertValid(), "Fresh game should be valid")
	})

	t.Run("rejecting invalid rules", func(t *testing.T) {
		_, err := NewGameState(NewStandardRules(0))
		require.Error(t, err, "A game without players should be rejected")
	})
}

func TestNewDomino(t *testing.T) {
	worms := map[int]int{21: 1, 24: 1, 25: 2, 28: 2, 29: 3, 32: 3, 33: 4, 36: 4}
	for face, expected := range worms {
		require.Equal(t, expected, NewDomino(face).Worms, "Domino %d should be worth %d worms", face, expected)
	}
}

func TestLegalActions(t *testing.T) {
	t.Run("saving every rolled face that is not saved yet", func(t *testing.T) {
		gs := newTestState(t, 4)
		gs.Saved = []int{4}
		gs.Rolled = []int{3, 4, 3, 5, 4, 2, 1}
		gs.Resolved = false

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Save(1), Save(2), Save(3), Save(5)}, actions, "Should offer one save per new face in ascending order")
	})

	t.Run("taking the exact score when no dice are left", func(t *testing.T) {
		gs := newTestState(t, 4)
		gs.Saved = []int{1, 2, 3, 4, 5, 6, 6, 6}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Take(Domino{Face: 30, Worms: 3})}, actions, "Score 30 should only allow taking domino 30")
	})

	t.Run("ignoring dominoes buried in a stack", func(t *testing.T) {
		gs := stealingState(t)
		gs.Saved = []int{6, 6, 5, 5, 2}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Take(NewDomino(21)), Roll()}, actions, "Domino 22 is not on top, so the nearest lower pool domino is offered")
	})

	t.Run("never stealing from the current player", func(t *testing.T) {
		gs := stealingState(t)
		removeFromPool(t, gs, 23)
		gs.Stacks[0] = []Domino{NewDomino(23)}
		gs.Saved = []int{6, 6, 5, 5, 3}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Take(NewDomino(21)), Roll()}, actions, "Own top domino should not be a candidate")
	})

	t.Run("rolling when the score is below every pool domino", func(t *testing.T) {
		gs := stealingState(t)
		removeFromPool(t, gs, 21)
		gs.Stacks[0] = []Domino{NewDomino(21)}
		gs.Saved = []int{6, 6, 5, 5, 1}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Roll()}, actions, "Score 21 with 21 owned by the current player should only allow rolling")
	})

	t.Run("offering both the pool and an opponent's top", func(t *testing.T) {
		gs := stealingState(t)
		gs.Saved = []int{6, 6, 6, 6, 5, 5}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Take(NewDomino(29)), Take(NewDomino(30)), Roll()}, actions,
			"Community candidate should precede the opponent candidate, which precedes rolling")
	})

	t.Run("offering only the opponent whose top matches", func(t *testing.T) {
		gs := newTestState(t, 3)
		removeFromPool(t, gs, 25, 26)
		gs.Stacks = [][]Domino{{}, {NewDomino(25)}, {NewDomino(26)}}
		gs.Saved = []int{6, 6, 6, 6, 5}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{Take(NewDomino(24)), Take(NewDomino(25)), Roll()}, actions, "Opponent with the exact score should be offered")
	})

	t.Run("ending the turn without worms or rolls left", func(t *testing.T) {
		gs := newTestState(t, 2)
		gs.Saved = []int{1, 2, 2, 3, 4, 4, 5, 5}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{End()}, actions, "No take and no roll should leave only EndTurn")
	})

	t.Run("ending the turn when six distinct faces are saved below every domino", func(t *testing.T) {
		gs := newTestState(t, 2)
		removeFromPool(t, gs, 21, 22, 23, 24, 25, 26)
		gs.Stacks[1] = []Domino{NewDomino(21), NewDomino(22), NewDomino(23), NewDomino(24), NewDomino(25), NewDomino(26)}
		gs.Saved = []int{1, 2, 3, 4, 5, 6}

		actions, err := gs.LegalActions()

		require.NoError(t, err)
		require.Equal(t, []Action{End()}, actions, "Score 20 cannot take anything and six faces cannot roll again")
	})

	t.Run("failing on a finished game", func(t *testing.T) {
		gs := newTestState(t, 2)
		gs.Lost = len(gs.Pool)
		gs.Pool = []Domino{}

		_, err := gs.LegalActions()

		require.ErrorIs(t, err, ErrTerminalState, "Empty pool should be terminal")
	})

	t.Run("repeated queries are equal and do not mutate", func(t *testing.T) {
		gs := stealingState(t)
		gs.Rolled = []int{3, 4, 3, 5, 4, 2, 1, 1}
		gs.Resolved = false
		before := gs.Copy()

		first, err := gs.LegalActions()
		require.NoError(t, err)
		second, err := gs.LegalActions()
		require.NoError(t, err)

		require.Equal(t, first, second, "Legal actions should be stable")
		require.Equal(t, before, gs, "Legal actions should not mutate the state")
	})
}

func TestLoseDomino(t *testing.T) {
	t.Run("returning the top domino in sorted order and removing the maximum", func(t *testing.T) {
		gs := stealingState(t)
		gs.CurrentPlayer = 1

		lost := gs.LoseDomino()

		require.True(t, lost, "Player with a stack should lose a domino")
		require.Equal(t, []Domino{NewDomino(22)}, gs.Stacks[1], "Top domino should leave the stack")
		require.Contains(t, gs.Pool, NewDomino(30), "Lost domino should return to the pool")
		require.NotContains(t, gs.Pool, NewDomino(36), "Highest domino should leave the game")
		require.Equal(t, 1, gs.Lost, "Loss should be counted")
		require.NoError(t, gs.AssertValid(), "Pool should stay sorted")
	})

	t.Run("removing a returned domino that is the new maximum", func(t *testing.T) {
		gs := newTestState(t, 2)
		removeFromPool(t, gs, 36)
		gs.Stacks[0] = []Domino{NewDomino(36)}

		require.True(t, gs.LoseDomino())

		require.Len(t, gs.Pool, 15, "Returned maximum should be removed at once")
		require.Equal(t, NewDomino(35), gs.Pool[len(gs.Pool)-1], "Pool should end at 35")
		require.NoError(t, gs.AssertValid())
	})

	t.Run("losing nothing from an empty stack", func(t *testing.T) {
		gs := newTestState(t, 2)

		lost := gs.LoseDomino()

		require.False(t, lost, "Empty stack should not lose a domino")
		require.Len(t, gs.Pool, 16, "Pool should not shrink")
		require.Equal(t, 0, gs.Lost)
	})
}

func TestEndTurn(t *testing.T) {
	gs := newTestState(t, 3)
	gs.CurrentPlayer = 2
	gs.Saved = []int{6, 6}
	gs.Rolled = []int{1, 2}
	gs.Resolved = false

	gs.EndTurn()

	require.Equal(t, 0, gs.CurrentPlayer, "Turn should wrap around to the first player")
	require.Empty(t, gs.Saved, "Saved dice should be cleared")
	require.Empty(t, gs.Rolled, "Rolled dice should be cleared")
	require.True(t, gs.Resolved, "Next turn should start resolved")
}

func TestAssertValid(t *testing.T) {
	cases := map[string]func(gs *GameState){
		"domino created":         func(gs *GameState) { gs.Stacks[0] = []Domino{NewDomino(21)} },
		"domino vanished":        func(gs *GameState) { gs.Pool = gs.Pool[1:] },
		"too many dice":          func(gs *GameState) { gs.Saved = []int{1, 1, 1, 1, 1}; gs.Rolled = []int{2, 2, 2, 2}; gs.Resolved = false },
		"unsorted pool":          func(gs *GameState) { gs.Pool[0], gs.Pool[1] = gs.Pool[1], gs.Pool[0] },
		"player out of range":    func(gs *GameState) { gs.CurrentPlayer = 4 },
		"negative player":        func(gs *GameState) { gs.CurrentPlayer = -1 },
		"die face out of range":  func(gs *GameState) { gs.Saved = []int{7} },
		"resolved roll has dice": func(gs *GameState) { gs.Rolled = []int{3} },
	}

	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			gs := newTestState(t, 4)
			corrupt(gs)

			err := gs.AssertValid()

			var stateErr *InvalidGameStateError
			require.ErrorAs(t, err, &stateErr, "Broken invariant should be reported")
			require.Equal(t, gs, stateErr.State, "Error should carry the offending state")
		})
	}
}

func TestCopy(t *testing.T) {
	t.Run("copying every field", func(t *testing.T) {
		gs := stealingState(t)
		gs.CurrentPlayer = 1
		gs.Saved = []int{6, 5}

		clone := gs.Copy()

		require.Equal(t, gs, clone, "Copy should be equal to its source")
		require.Same(t, gs.Rules, clone.Rules, "Rules are shared")
	})

	t.Run("mutating a copy leaves the source untouched", func(t *testing.T) {
		gs := stealingState(t)
		gs.Saved = []int{6, 5}
		gs.Rolled = []int{1, 2, 3}
		gs.Resolved = false
		before := stealingState(t)
		before.Saved = []int{6, 5}
		before.Rolled = []int{1, 2, 3}
		before.Resolved = false

		clone := gs.Copy()
		clone.Pool[0] = NewDomino(36)
		clone.Stacks[1][0] = NewDomino(36)
		clone.Stacks[2] = append(clone.Stacks[2], NewDomino(21))
		clone.Saved[0] = 1
		clone.Rolled[0] = 6
		clone.CurrentPlayer = 3
		clone.LoseDomino()
		clone.EndTurn()

		require.Equal(t, before, gs, "Source should not observe any mutation of the copy")
	})

	t.Run("taking from a copy", func(t *testing.T) {
		gs := stealingState(t)
		clone := gs.Copy()
		e := NewStateEngine(nil)

		require.NoError(t, e.Resolve(clone, Take(NewDomino(30))))

		require.Equal(t, [][]Domino{{NewDomino(30)}, {NewDomino(22)}, {NewDomino(25)}, {}}, clone.Stacks, "Copy should reflect the steal")
		require.Equal(t, [][]Domino{{}, {NewDomino(22), NewDomino(30)}, {NewDomino(25)}, {}}, gs.Stacks, "Source stacks should be unchanged")
		require.Len(t, gs.Pool, 13, "Source pool should be unchanged")
	})
}

func TestSignature(t *testing.T) {
	t.Run("equal states share a signature", func(t *testing.T) {
		gs := stealingState(t)
		gs.Saved = []int{6, 5, 5}

		require.Equal(t, gs.Signature(), gs.Copy().Signature(), "Copy should have the same signature")
	})

	t.Run("dice order does not matter", func(t *testing.T) {
		a := newTestState(t, 2)
		a.Saved = []int{6, 5, 5}
		b := newTestState(t, 2)
		b.Saved = []int{5, 6, 5}

		require.Equal(t, a.Signature(), b.Signature(), "Saved dice are a multiset")
	})

	t.Run("distinct states have distinct signatures", func(t *testing.T) {
		base := stealingState(t)
		variants := map[string]func(gs *GameState){
			"player":         func(gs *GameState) { gs.CurrentPlayer = 1 },
			"resolved":       func(gs *GameState) { gs.Resolved = false },
			"saved":          func(gs *GameState) { gs.Saved = []int{6} },
			"rolled":         func(gs *GameState) { gs.Rolled = []int{6}; gs.Resolved = false },
			"stack order":    func(gs *GameState) { gs.Stacks[1] = []Domino{NewDomino(30), NewDomino(22)} },
			"stack owner":    func(gs *GameState) { gs.Stacks[2], gs.Stacks[3] = gs.Stacks[3], gs.Stacks[2] },
			"pool to stack":  func(gs *GameState) { gs.Stacks[0] = []Domino{gs.Pool[0]}; gs.Pool = gs.Pool[1:] },
		}
		seen := map[Signature]string{base.Signature(): "base"}
		for name, mutate := range variants {
			gs := base.Copy()
			mutate(gs)
			sig := gs.Signature()
			other, ok := seen[sig]
			require.False(t, ok, "Variant %q should not collide with %q", name, other)
			seen[sig] = name
		}
	})

	t.Run("saved and rolled dice are kept apart", func(t *testing.T) {
		a := newTestState(t, 2)
		a.Saved = []int{6}
		a.Resolved = false
		b := newTestState(t, 2)
		b.Rolled = []int{6}
		b.Resolved = false

		require.NotEqual(t, a.Signature(), b.Signature(), "Saved and rolled dice should encode differently")
	})
}

func TestWormCounts(t *testing.T) {
	gs := stealingState(t)

	require.Equal(t, map[int]int{0: 0, 1: 4, 2: 2, 3: 0}, gs.WormCounts(), "Worms should be summed per stack")
	require.Equal(t, 4, gs.Worms(1))
}
