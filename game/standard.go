package game

import "time"

type StandardRules struct {
	Rolls     int
	Duration  time.Duration
	Extension time.Duration
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		Rolls:     1,
		Duration:  120 * time.Second,
		Extension: 60 * time.Second,
	}
}

func (sr *StandardRules) InitialRolls() int {
	return sr.Rolls
}

func (sr *StandardRules) TurnDuration() time.Duration {
	return sr.Duration
}

func (sr *StandardRules) BattleExtension() time.Duration {
	return sr.Extension
}

// One extra roll per battle fought during the move
func (sr *StandardRules) BonusRolls(battles int) int {
	return battles
}

// Winner returns the first player whose non-defender knights are all out.
// knights is the full roster in player order.
func (sr *StandardRules) Winner(knights []Knight, positions []Position) (string, bool) {
	out := make(map[string]int)
	for _, p := range positions {
		if p.Node != Out {
			continue
		}
		for _, k := range p.Knights {
			if !k.Defender {
				out[k.PlayerID]++
			}
		}
	}
	required := make(map[string]int)
	var order []string
	for _, k := range knights {
		if _, seen := required[k.PlayerID]; !seen {
			order = append(order, k.PlayerID)
			required[k.PlayerID] = 0
		}
		if !k.Defender {
			required[k.PlayerID]++
		}
	}
	for _, playerID := range order {
		if required[playerID] > 0 && out[playerID] == required[playerID] {
			return playerID, true
		}
	}
	return "", false
}
