package searcher

import (
	"testing"
	"time"

	"yut/game"

	"github.com/stretchr/testify/require"
)

func duel(t *testing.T) (game.Info, game.Knight, game.Knight) {
	t.Helper()
	info, err := game.NewInfo([]game.Player{{ID: "p1"}, {ID: "p2"}}, 1, 0)
	require.NoError(t, err)
	return info, info.Knights["p1"][0], info.Knights["p2"][0]
}

func TestRolloutEvaluate(t *testing.T) {
	info, mine, theirs := duel(t)
	rules := game.NewStandardRules()

	t.Run("winning move needs no episodes", func(t *testing.T) {
		from := game.NewPosition(game.CBR, []game.Knight{mine}, []game.Node{game.B4})
		board := []game.Position{from, game.NewPosition(game.Start, []game.Knight{theirs}, nil)}

		r := NewRollout(info, rules, WithMetrics())
		score := r.Evaluate(from, path(step(game.Do, game.CBR, game.Out)), board)
		require.Equal(t, WIN, score)

		metrics := r.Metrics()
		require.Equal(t, int64(1), metrics.Evaluations)
		require.Zero(t, metrics.Episodes)
	})

	t.Run("plays the configured episodes", func(t *testing.T) {
		from := game.NewPosition(game.Start, []game.Knight{mine}, nil)
		board := []game.Position{from, game.NewPosition(game.Start, []game.Knight{theirs}, nil)}

		r := NewRollout(info, rules, WithEpisodes(20), WithRolloutGoroutines(4), WithCutoff(30), WithMetrics())
		score := r.Evaluate(from, path(step(game.Gae, game.Start, game.R1, game.R2)), board)
		require.GreaterOrEqual(t, score, LOSS)
		require.LessOrEqual(t, score, WIN)
		metrics := r.Metrics()
		require.Equal(t, int64(20), metrics.Episodes)
		require.Equal(t, metrics.Episodes, metrics.FullPlayouts+metrics.Cutoffs)
		require.Positive(t, metrics.Turns)
		require.LessOrEqual(t, metrics.TurnsPerEpisode(), 30.0)
		require.InDelta(t, score, metrics.MeanReward, 1e-9, "One evaluation so the means agree")
	})

	t.Run("cutoff stops every episode", func(t *testing.T) {
		crowd, err := game.NewInfo([]game.Player{{ID: "p1"}, {ID: "p2"}}, 4, 0)
		require.NoError(t, err)
		var board []game.Position
		for _, k := range crowd.AllKnights() {
			board = append(board, game.NewPosition(game.Start, []game.Knight{k}, nil))
		}

		r := NewRollout(crowd, rules, WithEpisodes(10), WithCutoff(1), WithMetrics())
		r.Evaluate(board[0], path(step(game.Do, game.Start, game.R1)), board)

		metrics := r.Metrics()
		require.Equal(t, int64(10), metrics.Cutoffs, "Four knights cannot all finish in one turn")
		require.Zero(t, metrics.FullPlayouts)
		require.Equal(t, 1.0, metrics.TurnsPerEpisode())
	})

	t.Run("metrics are off by default", func(t *testing.T) {
		from := game.NewPosition(game.Start, []game.Knight{mine}, nil)
		board := []game.Position{from, game.NewPosition(game.Start, []game.Knight{theirs}, nil)}

		r := NewRollout(info, rules, WithEpisodes(2))
		r.Evaluate(from, path(step(game.Do, game.Start, game.R1)), board)
		require.Zero(t, r.Metrics())
	})

	t.Run("same seed same score", func(t *testing.T) {
		from := game.NewPosition(game.Start, []game.Knight{mine}, nil)
		board := []game.Position{from, game.NewPosition(game.R3, []game.Knight{theirs}, []game.Node{game.R2})}
		move := path(step(game.Do, game.Start, game.R1))

		a := NewRollout(info, rules, WithEpisodes(30), WithSeed(5)).Evaluate(from, move, board)
		b := NewRollout(info, rules, WithEpisodes(30), WithSeed(5)).Evaluate(from, move, board)
		require.Equal(t, a, b)
	})

	t.Run("duration bounds the search", func(t *testing.T) {
		from := game.NewPosition(game.Start, []game.Knight{mine}, nil)
		board := []game.Position{from, game.NewPosition(game.Start, []game.Knight{theirs}, nil)}

		r := NewRollout(info, rules, WithDuration(20*time.Millisecond), WithRolloutGoroutines(2), WithCutoff(10), WithMetrics())
		begin := time.Now()
		r.Evaluate(from, path(step(game.Do, game.Start, game.R1)), board)
		require.GreaterOrEqual(t, time.Since(begin), 20*time.Millisecond)
		require.Positive(t, r.Metrics().Episodes)
	})

	t.Run("unknown board falls back to progress", func(t *testing.T) {
		from := game.NewPosition(game.Start, []game.Knight{mine}, nil)
		move := path(step(game.Gae, game.Start, game.R1, game.R2))
		board := []game.Position{from}

		r := NewRollout(info, rules)
		require.Equal(t, game.EvaluateProgress(from, move, board), r.Evaluate(from, move, board))
	})
}

func TestAdvantage(t *testing.T) {
	_, mine, theirs := duel(t)

	require.Equal(t, 0.0, advantage([]game.Position{
		game.NewPosition(game.Start, []game.Knight{mine}, nil),
		game.NewPosition(game.Start, []game.Knight{theirs}, nil),
	}, "p1"))
	require.Equal(t, 1.0, advantage([]game.Position{
		game.NewPosition(game.Out, []game.Knight{mine}, nil),
		game.NewPosition(game.Start, []game.Knight{theirs}, nil),
	}, "p1"))
	require.Equal(t, -1.0, advantage([]game.Position{
		game.NewPosition(game.Out, []game.Knight{mine}, nil),
		game.NewPosition(game.Start, []game.Knight{theirs}, nil),
	}, "p2"))
}

func TestNext(t *testing.T) {
	players := []string{"p1", "p2", "p3"}
	require.Equal(t, "p2", next(players, "p1"))
	require.Equal(t, "p1", next(players, "p3"))
}
