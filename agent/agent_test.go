package agent

import (
	"testing"

	"pickomino/game"
	"pickomino/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newState(t *testing.T) *game.GameState {
	t.Helper()
	gs, err := game.NewGameState(game.NewStandardRules(4))
	require.NoError(t, err)
	return gs
}

func rolled(t *testing.T, saved, roll []int) (*game.GameState, []game.Action) {
	t.Helper()
	gs := newState(t)
	gs.Saved = saved
	gs.Rolled = roll
	gs.Resolved = false
	legal, err := gs.LegalActions()
	require.NoError(t, err)
	return gs, legal
}

func TestRandomAgent(t *testing.T) {
	t.Run("choosing only legal actions", func(t *testing.T) {
		gs, legal := rolled(t, nil, []int{1, 2, 3, 4, 5, 6, 6, 6})
		agent := NewRandomAgent(rand.New(rand.NewSource(1)))

		seen := map[game.Action]bool{}
		for i := 0; i < 200; i++ {
			action, _, err := agent.ChooseAction(gs, legal)
			require.NoError(t, err)
			require.Contains(t, legal, action, "Random choice should be legal")
			seen[action] = true
		}
		require.Len(t, seen, len(legal), "Every legal action should eventually be chosen")
	})

	t.Run("failing without actions", func(t *testing.T) {
		_, _, err := NewRandomAgent(rand.New(rand.NewSource(1))).ChooseAction(newState(t), nil)

		require.Error(t, err)
	})
}

func TestSafe(t *testing.T) {
	t.Run("taking the highest domino", func(t *testing.T) {
		gs := newState(t)
		gs.Saved = []int{6, 6, 6, 6, 5, 5}
		legal := []game.Action{game.Take(game.NewDomino(30)), game.Take(game.NewDomino(27)), game.Roll()}

		action, _, err := Safe.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Take(game.NewDomino(30)), action, "Highest domino should be taken")
	})

	t.Run("saving the highest face", func(t *testing.T) {
		gs, legal := rolled(t, []int{6}, []int{1, 2, 2, 4, 5, 6, 3})

		action, _, err := Safe.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Save(5), action, "Highest unsaved face should be saved")
	})

	t.Run("playing a forced action", func(t *testing.T) {
		gs := newState(t)

		action, _, err := Safe.ChooseAction(gs, []game.Action{game.Roll()})

		require.NoError(t, err)
		require.Equal(t, game.Roll(), action)
	})

	t.Run("failing without a take or save", func(t *testing.T) {
		_, _, err := Safe.ChooseAction(newState(t), []game.Action{game.Roll(), game.End()})

		require.Error(t, err)
	})
}

func TestSafeBetterSaving(t *testing.T) {
	t.Run("taking the highest domino", func(t *testing.T) {
		gs := newState(t)
		legal := []game.Action{game.Take(game.NewDomino(24)), game.Take(game.NewDomino(33)), game.Roll()}

		action, _, err := SafeBetterSaving.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Take(game.NewDomino(33)), action)
	})

	t.Run("securing a worm after three faces", func(t *testing.T) {
		gs, legal := rolled(t, []int{5, 4, 3}, []int{1, 6, 2, 2, 1})

		action, _, err := SafeBetterSaving.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Save(6), action, "Worm should be saved once three faces are saved")
	})

	t.Run("maximizing points with two faces saved", func(t *testing.T) {
		gs, legal := rolled(t, []int{5, 4}, []int{1, 6, 2, 2, 2, 2})

		action, _, err := SafeBetterSaving.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Save(2), action, "Four twos outscore a single worm")
	})

	t.Run("preferring the higher face on equal points", func(t *testing.T) {
		gs, legal := rolled(t, nil, []int{2, 2, 4, 1, 1, 1, 1, 3})

		action, _, err := SafeBetterSaving.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Save(4), action, "Ones, twos and the four tie at 4 points, the four wins")
	})

	t.Run("valuing worms at their score", func(t *testing.T) {
		gs, legal := rolled(t, nil, []int{5, 6, 1, 1, 1, 1, 2, 2})

		action, _, err := SafeBetterSaving.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, game.Save(6), action, "Worm and five tie at 5 points, the worm face wins")
	})
}

func TestEvaluationAgent(t *testing.T) {
	t.Run("returning a legal action with metrics", func(t *testing.T) {
		gs, legal := rolled(t, nil, []int{1, 2, 3, 4, 5, 6, 6, 6})
		agent := NewEvaluationAgent(searcher.NewMCTS(2, searcher.WithEpisodes(100), searcher.WithMetrics()))

		action, metric, err := agent.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Contains(t, legal, action, "Search should return a legal action")
		require.Equal(t, 100, metric.Episodes, "Search metrics should be reported")
	})

	t.Run("short-circuiting a forced action", func(t *testing.T) {
		agent := NewEvaluationAgent(searcher.NewMCTS(1, searcher.WithEpisodes(100), searcher.WithMetrics()))

		action, metric, err := agent.ChooseAction(newState(t), []game.Action{game.Roll()})

		require.NoError(t, err)
		require.Equal(t, game.Roll(), action)
		require.Zero(t, metric.Episodes, "No search should run")
	})
}

func TestSamplingAgent(t *testing.T) {
	t.Run("returning a legal action", func(t *testing.T) {
		gs, legal := rolled(t, nil, []int{1, 2, 3, 4, 5, 6, 6, 6})
		agent := NewSamplingAgent(searcher.NewMCTS(2, searcher.WithEpisodes(100)), 1.0, rand.New(rand.NewSource(1)))

		action, _, err := agent.ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Contains(t, legal, action, "Sampled action should be legal")
	})

	t.Run("playing the most visited action at zero temperature", func(t *testing.T) {
		gs, legal := rolled(t, nil, []int{1, 2, 3, 4, 5, 6, 6, 6})
		mcts := searcher.NewMCTS(1, searcher.WithEpisodes(100), searcher.WithSeed(3))
		visits, _, err := mcts.Simulate(gs)
		require.NoError(t, err)

		action, _, err := NewSamplingAgent(mcts, 0, rand.New(rand.NewSource(1))).ChooseAction(gs, legal)

		require.NoError(t, err)
		require.Equal(t, searcher.MostVisited(visits), action, "Zero temperature should be greedy")
	})
}

func TestAdjustTemperature(t *testing.T) {
	visits := []searcher.Visit{{Action: game.Save(1), Visits: 1}, {Action: game.Save(2), Visits: 3}, {Action: game.Save(3), Visits: 0}}

	t.Run("normalizing visit counts", func(t *testing.T) {
		policy := adjustTemperature(visits, 1.0)

		require.InDeltaSlice(t, []float64{0.25, 0.75, 0}, policy, 1e-9, "Probabilities should be proportional to visits")
	})

	t.Run("sharpening with low temperature", func(t *testing.T) {
		policy := adjustTemperature(visits, 0.5)

		require.InDeltaSlice(t, []float64{0.1, 0.9, 0}, policy, 1e-9, "Visits should be squared")
	})

	t.Run("returning nil without visits", func(t *testing.T) {
		require.Nil(t, adjustTemperature([]searcher.Visit{{Action: game.Roll()}}, 1.0))
	})
}

func TestSample(t *testing.T) {
	policy := []float64{0.25, 0, 0.75}

	require.Equal(t, 0, sample(policy, 0.1))
	require.Equal(t, 2, sample(policy, 0.25), "Zero-probability entries should never be sampled")
	require.Equal(t, 2, sample(policy, 0.99))
	require.Equal(t, 2, sample(policy, 1.0), "Rounding overflow should fall back to the last entry")
}
