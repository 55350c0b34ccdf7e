package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromSticks(t *testing.T) {
	cases := []struct {
		sticks [4]bool
		want   Outcome
	}{
		{[4]bool{false, false, false, false}, Mo},
		{[4]bool{true, false, false, false}, Geol},
		{[4]bool{true, true, false, false}, Gae},
		{[4]bool{true, true, true, false}, Do},
		{[4]bool{false, true, true, true}, BackDo},
		{[4]bool{true, true, true, true}, Yut},
	}
	for _, c := range cases {
		t.Run(c.want.String(), func(t *testing.T) {
			require.Equal(t, c.want, FromSticks(c.sticks))
		})
	}
}

func TestOutcome(t *testing.T) {
	t.Run("steps", func(t *testing.T) {
		require.Equal(t, 1, Do.Steps())
		require.Equal(t, -1, BackDo.Steps())
		require.Equal(t, 2, Gae.Steps())
		require.Equal(t, 3, Geol.Steps())
		require.Equal(t, 4, Yut.Steps())
		require.Equal(t, 5, Mo.Steps())
	})

	t.Run("only yut and mo are bonus throws", func(t *testing.T) {
		for _, o := range []Outcome{Do, BackDo, Gae, Geol} {
			require.False(t, o.IsBonus(), "%s should not grant a throw", o)
		}
		require.True(t, Yut.IsBonus())
		require.True(t, Mo.IsBonus())
	})

	t.Run("encodes by name", func(t *testing.T) {
		raw, err := json.Marshal([]Outcome{BackDo, Mo})
		require.NoError(t, err)
		require.JSONEq(t, `["backdo","mo"]`, string(raw))

		var got []Outcome
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, []Outcome{BackDo, Mo}, got)

		require.ErrorIs(t, json.Unmarshal([]byte(`["six"]`), &got), ErrUnknownOutcome)
	})
}

func TestRollers(t *testing.T) {
	t.Run("scripted roller wraps around", func(t *testing.T) {
		r := NewScriptedRoller(Gae, Yut)
		require.Equal(t, []Outcome{Gae, Yut, Gae}, []Outcome{r.Roll(), r.Roll(), r.Roll()})
	})

	t.Run("random roller is reproducible by seed", func(t *testing.T) {
		a, b := NewRandomRoller(7), NewRandomRoller(7)
		for i := 0; i < 50; i++ {
			o := a.Roll()
			require.Equal(t, o, b.Roll())
			require.NotZero(t, o.Steps())
		}
	})
}

func TestTurn(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := NewStandardRules()
	turn := NewTurn(0, "p1", now, rules)

	t.Run("new turn", func(t *testing.T) {
		require.Equal(t, 1, turn.RemainingRolls)
		require.Equal(t, now.Add(120*time.Second), turn.ExpiresAt)
		require.False(t, turn.CanMove())
	})

	t.Run("rolling never mutates the receiver", func(t *testing.T) {
		next := turn.WithRoll(Gae)
		require.Equal(t, 0, next.RemainingRolls)
		require.Equal(t, []Outcome{Gae}, next.Pending)
		require.Equal(t, 1, turn.RemainingRolls, "Original turn should be untouched")
		require.Empty(t, turn.Pending, "Original turn should be untouched")
	})

	t.Run("bonus outcomes keep the allowance", func(t *testing.T) {
		next := turn.WithRoll(Yut).WithRoll(Mo)
		require.Equal(t, 1, next.RemainingRolls)
		require.Equal(t, []Outcome{Yut, Mo}, next.Pending)
	})

	t.Run("allowance never goes negative", func(t *testing.T) {
		next := turn.WithRoll(Do).WithRoll(Do)
		require.Equal(t, 0, next.RemainingRolls)
	})

	t.Run("consume removes one outcome per entry", func(t *testing.T) {
		next := turn.WithRoll(Yut).WithRoll(Yut).WithRoll(Gae)
		require.True(t, next.Covers([]Outcome{Yut, Gae}))
		require.False(t, next.Covers([]Outcome{Gae, Gae}))

		consumed := next.Consume([]Outcome{Yut, Gae, Mo})
		require.Equal(t, []Outcome{Yut}, consumed.Pending)
		require.Equal(t, []Outcome{Gae, Yut, Yut}, next.Pending, "Original turn should be untouched")
	})

	t.Run("bonus extends the expiry", func(t *testing.T) {
		next := turn.WithBonus(2, rules.BattleExtension())
		require.Equal(t, 3, next.RemainingRolls)
		require.Equal(t, now.Add(180*time.Second), next.ExpiresAt)
		require.True(t, next.Expired(now.Add(180*time.Second)))
		require.False(t, next.Expired(now.Add(179*time.Second)))
	})

	t.Run("next turn increments the sequence", func(t *testing.T) {
		next := turn.WithRoll(Do).Next("p2", now.Add(time.Minute), rules)
		require.Equal(t, 1, next.Seq)
		require.Equal(t, "p2", next.PlayerID)
		require.Equal(t, 1, next.RemainingRolls)
		require.Empty(t, next.Pending)
	})
}
