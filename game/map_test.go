package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttackerBoard(t *testing.T) {
	t.Run("outer ring runs counter clockwise to out", func(t *testing.T) {
		ring := []Node{Start, R1, R2, R3, R4, CTR, T1, T2, T3, T4, CTL, L1, L2, L3, L4, CBL, B1, B2, B3, B4, CBR, Out}
		for i := 0; i < len(ring)-1; i++ {
			got := Attacker.Next("", ring[i], false, false)
			require.Equal(t, []Node{ring[i+1]}, got, "Straight continuation of %s", ring[i])
		}
		require.Empty(t, Attacker.Next(CBR, Out, true, true), "Out should be terminal")
	})

	t.Run("corner shortcuts only on the first unit of a path", func(t *testing.T) {
		require.Equal(t, []Node{DL1}, Attacker.Next("", CTR, true, true))
		require.Equal(t, []Node{DR1}, Attacker.Next("", CTL, true, true))
		require.Equal(t, []Node{DR3}, Attacker.Next(DL2, INT, true, true),
			"Starting on the center should head to the exit")
		require.Equal(t, []Node{T1}, Attacker.Next(R4, CTR, true, false),
			"First unit of a later step should not take the shortcut")
	})

	t.Run("center continues by the diagonal it was entered from", func(t *testing.T) {
		require.Equal(t, []Node{DL3}, Attacker.Next(DL2, INT, false, false))
		require.Equal(t, []Node{DR3}, Attacker.Next(DR2, INT, false, false))
	})
}

func TestDefenderBoard(t *testing.T) {
	t.Run("junctions fork on the first unit of a step", func(t *testing.T) {
		require.ElementsMatch(t, []Node{B4, DR4}, Defender.Next("", Start, true, true))
		require.ElementsMatch(t, []Node{L4, DL4}, Defender.Next(B1, CBL, true, false))
		require.ElementsMatch(t, []Node{DL2, DR2}, Defender.Next(DL3, INT, true, false))
	})

	t.Run("junctions go straight on later units", func(t *testing.T) {
		require.Equal(t, []Node{L4}, Defender.Next(B1, CBL, false, false))
		require.Equal(t, []Node{DR2}, Defender.Next(DR3, INT, false, false))
		require.Equal(t, []Node{DL2}, Defender.Next(DL3, INT, false, false))
	})

	t.Run("no attacker shortcuts", func(t *testing.T) {
		require.Equal(t, []Node{R4}, Defender.Next(T1, CTR, true, true))
		require.Equal(t, []Node{T4}, Defender.Next(L1, CTL, true, true))
	})

	t.Run("leaves through the bottom right corner", func(t *testing.T) {
		require.Equal(t, []Node{CBR}, Defender.Next(R2, R1, false, false))
		require.Equal(t, []Node{Out}, Defender.Next(R1, CBR, false, false))
	})
}

func TestBack(t *testing.T) {
	t.Run("one candidate per remembered cell", func(t *testing.T) {
		require.ElementsMatch(t, []Node{L4, DL4}, Attacker.Back(CBL, []Node{L4, DL4}))
	})

	t.Run("start is remembered as the bottom right corner", func(t *testing.T) {
		require.Equal(t, []Node{CBR}, Attacker.Back(R1, []Node{Start}))
	})

	t.Run("falls back to the unique predecessor", func(t *testing.T) {
		require.Equal(t, []Node{R2}, Attacker.Back(R3, nil))
		require.Equal(t, []Node{CBR}, Attacker.Back(R1, nil))
		require.Equal(t, []Node{CTR}, Attacker.Back(DL1, nil))
	})

	t.Run("stays put without a unique predecessor", func(t *testing.T) {
		require.Empty(t, Attacker.Back(CBL, nil), "Two roads lead into the corner")
		require.Empty(t, Attacker.Back(Start, nil), "Nothing leads into start")
	})
}

func TestDistance(t *testing.T) {
	require.Equal(t, 0, Distance(Attacker, Out))
	require.Equal(t, 1, Distance(Attacker, CBR))
	require.Equal(t, 12, Distance(Attacker, Start), "Start should count the shortcut through the center")
	require.Equal(t, 7, Distance(Attacker, CTR))
	require.Equal(t, 9, Distance(Defender, INT))
	require.Less(t, Distance(Defender, DR4), Distance(Defender, B4))
}
