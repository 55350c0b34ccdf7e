package experiments

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"yut/experiments/metrics"
	"yut/game"

	"github.com/stretchr/testify/require"
)

func TestNewStrategy(t *testing.T) {
	info, err := game.NewInfo([]game.Player{{ID: "p1"}, {ID: "p2"}}, 2, 1)
	require.NoError(t, err)
	rules := game.NewStandardRules()

	for _, config := range StrategyConfigs {
		s, err := NewStrategy(config, info, rules, 1)
		require.NoError(t, err)
		require.Equal(t, config.Strategy, s.Name())
	}

	_, err = NewStrategy(metrics.AgentConfig{Strategy: "softmax"}, info, rules, 1)
	require.Error(t, err, "softmax without temperature")
	_, err = NewStrategy(metrics.AgentConfig{Strategy: "oracle"}, info, rules, 1)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := Config{
		Name:             "test",
		Games:            2,
		Parallel:         2,
		KnightsPerPlayer: 2,
		Defenders:        1,
		TurnDuration:     time.Second,
		AckTimeout:       50 * time.Millisecond,
		GameTimeout:      30 * time.Second,
		Seed:             42,
	}
	matchUps := StrategyMatchUps()[:1]

	result, err := Run(context.Background(), cfg, matchUps)
	require.NoError(t, err)
	require.Len(t, result.Games, 2)
	require.Len(t, result.Configs, 2)

	for i, record := range result.Games {
		require.Equal(t, i+1, record.ID, "Records should keep the schedule order")
		require.Equal(t, matchUps[0][0].ID, record.Agent1)
		require.Equal(t, matchUps[0][1].ID, record.Agent2)
		require.Equal(t, "p1", record.StartingPlayer)
		require.Contains(t, []string{"p1", "p2"}, record.Winner)
		require.Positive(t, record.Rolls)
		require.Positive(t, record.TotalMoves)
	}
	require.NotEmpty(t, result.Moves)

	dir, err := Write(t.TempDir(), cfg.Name, result)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "game_records.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per game")
	require.Equal(t, "id", rows[0][0])

	for _, name := range []string{"agent_configs.csv", "move_records.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
	}
}
