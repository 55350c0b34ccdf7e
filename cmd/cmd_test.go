package cmd

import (
	"bytes"
	"testing"

	"yut/game"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	suggestArrived = nil
	suggestDefender = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSuggestCommand(t *testing.T) {
	t.Run("from start", func(t *testing.T) {
		out, err := run(t, "suggest", "--node", "start", "gae")
		require.NoError(t, err)
		require.Contains(t, out, "attacker k at start")
		require.Contains(t, out, "1 paths")
		require.Contains(t, out, "gae:start:R1:R2")
	})

	t.Run("corner shortcut", func(t *testing.T) {
		out, err := run(t, "suggest", "--node", "CTR", "DO")
		require.NoError(t, err)
		require.Contains(t, out, "do:CTR:DL1")
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := run(t, "suggest", "--node", "start", "sixes")
		require.ErrorIs(t, err, game.ErrUnknownOutcome)

		_, err = run(t, "suggest", "--node", "nowhere", "do")
		require.ErrorIs(t, err, game.ErrUnknownNode)

		_, err = run(t, "suggest")
		require.Error(t, err, "at least one outcome is required")
	})
}
