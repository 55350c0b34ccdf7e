package game

// ActionType represents the type of command a player can send.
type ActionType int

const (
	EnterAction ActionType = iota
	RollAction
	MoveAction
	SurrenderAction
	QuitAction
)

func (a ActionType) String() string {
	switch a {
	case EnterAction:
		return "enter"
	case RollAction:
		return "roll"
	case MoveAction:
		return "move"
	case SurrenderAction:
		return "surrender"
	case QuitAction:
		return "quit"
	default:
		return "unknown"
	}
}

// Action represents a command taken by a player.
type Action struct {
	PlayerID  string     `json:"player_id" validate:"required"`
	Type      ActionType `json:"type" validate:"gte=0,lte=4"`
	KnightIDs []string   `json:"knight_ids,omitempty" validate:"required_if=Type 2,dive,required"` // MoveAction only
	Path      MovePath   `json:"path"`                                                          // MoveAction only
}
