package game

import "time"

// Rules holds the tunable parts of turn flow.
type Rules interface {
	InitialRolls() int
	TurnDuration() time.Duration
	BattleExtension() time.Duration
	BonusRolls(battles int) int
	Winner(knights []Knight, positions []Position) (string, bool)
}
