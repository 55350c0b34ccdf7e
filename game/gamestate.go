package game

import (
	"slices"
	"time"
)

// Turn is whose turn it is and what they may still do. A Turn is a value:
// every method returns a new Turn and leaves the receiver untouched.
type Turn struct {
	Seq            int       `json:"seq"`
	PlayerID       string    `json:"player_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	RemainingRolls int       `json:"remaining_rolls"`
	Pending        []Outcome `json:"pending"` // banked outcomes, sorted
}

// NewTurn starts a turn for playerID.
func NewTurn(seq int, playerID string, now time.Time, rules Rules) Turn {
	return Turn{
		Seq:            seq,
		PlayerID:       playerID,
		ExpiresAt:      now.Add(rules.TurnDuration()),
		RemainingRolls: rules.InitialRolls(),
	}
}

// Next hands the turn to playerID with the following sequence number.
func (t Turn) Next(playerID string, now time.Time, rules Rules) Turn {
	return NewTurn(t.Seq+1, playerID, now, rules)
}

// WithRoll banks an outcome. Bonus outcomes keep the roll allowance.
func (t Turn) WithRoll(o Outcome) Turn {
	n := t.copy()
	if !o.IsBonus() && n.RemainingRolls > 0 {
		n.RemainingRolls--
	}
	n.Pending = append(n.Pending, o)
	slices.Sort(n.Pending)
	return n
}

// Consume removes one banked outcome per entry of outcomes. Outcomes that
// are not banked are ignored.
func (t Turn) Consume(outcomes []Outcome) Turn {
	n := t.copy()
	for _, o := range outcomes {
		if i := slices.Index(n.Pending, o); i >= 0 {
			n.Pending = slices.Delete(n.Pending, i, i+1)
		}
	}
	return n
}

// Covers reports whether every outcome can be paid from the banked dice.
func (t Turn) Covers(outcomes []Outcome) bool {
	remaining := slices.Clone(t.Pending)
	for _, o := range outcomes {
		i := slices.Index(remaining, o)
		if i < 0 {
			return false
		}
		remaining = slices.Delete(remaining, i, i+1)
	}
	return true
}

// WithBonus grants extra rolls and pushes the expiry back.
func (t Turn) WithBonus(rolls int, extend time.Duration) Turn {
	n := t.copy()
	n.RemainingRolls += rolls
	n.ExpiresAt = n.ExpiresAt.Add(extend)
	return n
}

func (t Turn) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// CanMove reports whether there are dice left to move with.
func (t Turn) CanMove() bool {
	return len(t.Pending) > 0
}

func (t Turn) copy() Turn {
	n := t
	n.Pending = slices.Clone(t.Pending)
	return n
}
