package searcher

import (
	"context"
	"testing"

	"yut/game"

	"github.com/stretchr/testify/require"
)

func TestSearcherCandidates(t *testing.T) {
	other := game.Knight{ID: "a2", PlayerID: "p1"}
	positions := []game.Position{
		at(game.Start),
		game.NewPosition(game.R4, []game.Knight{other}, []game.Node{game.R3}),
	}

	t.Run("keeps the order of positions", func(t *testing.T) {
		s := New(WithGoroutines(4))
		got, err := s.Candidates(context.Background(), positions, []game.Outcome{game.Gae}, positions)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, game.Start, got[0].Path.Start())
		require.Equal(t, game.R4, got[1].Path.Start())
	})

	t.Run("best prefers progress", func(t *testing.T) {
		s := New()
		best, ok, err := s.Best(context.Background(), positions, []game.Outcome{game.Gae}, positions)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, game.Start, best.Position.Node, "Passing the corner loses its shortcut")
		require.Equal(t, game.R2, best.Path.Destination())
	})

	t.Run("no dice", func(t *testing.T) {
		_, ok, err := New().Best(context.Background(), positions, nil, positions)
		require.NoError(t, err)
		require.False(t, ok, "Nothing to move with")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().Candidates(ctx, positions, []game.Outcome{game.Do}, positions)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("custom evaluation", func(t *testing.T) {
		backwards := func(from game.Position, path game.MovePath, _ []game.Position) float64 {
			return -progress(from, path)
		}
		s := New(WithEvaluationFn(backwards))
		best, ok, err := s.Best(context.Background(), positions, []game.Outcome{game.Gae}, positions)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, game.R4, best.Position.Node)
	})
}

func progress(from game.Position, path game.MovePath) float64 {
	return float64(game.Distance(from.Role(), from.Node) - game.Distance(from.Role(), path.Destination()))
}
