package events

import (
	"yut/game"

	"github.com/google/uuid"
)

// Kind tags an event variant on the wire.
type Kind string

const (
	KindPlayerPresenceChanged Kind = "player_presence_changed"
	KindGameStart             Kind = "game_start"
	KindTurnChange            Kind = "turn_change"
	KindRollResult            Kind = "roll_result"
	KindOccupationUpdate      Kind = "occupation_update"
	KindTurnUpdated           Kind = "turn_updated"
	KindGameQuit              Kind = "game_quit"
	KindGameEnd               Kind = "game_end"
)

// Event is anything the engine publishes. Every event carries a unique id
// that observers acknowledge.
type Event interface {
	ID() string
	Kind() Kind
}

type Header struct {
	EventID string `json:"id"`
}

func (h Header) ID() string {
	return h.EventID
}

func newHeader() Header {
	return Header{EventID: uuid.NewString()}
}

type PlayerPresenceChanged struct {
	Header
	PlayerID string `json:"player_id"`
	Online   bool   `json:"online"`
}

func NewPlayerPresenceChanged(playerID string, online bool) PlayerPresenceChanged {
	return PlayerPresenceChanged{Header: newHeader(), PlayerID: playerID, Online: online}
}

func (PlayerPresenceChanged) Kind() Kind { return KindPlayerPresenceChanged }

// GameStart carries the full configuration and the opening positions.
type GameStart struct {
	Header
	Info          game.Info       `json:"info"`
	FirstPlayerID string          `json:"first_player_id"`
	Positions     []game.Position `json:"positions"`
}

func NewGameStart(info game.Info, firstPlayerID string, positions []game.Position) GameStart {
	return GameStart{Header: newHeader(), Info: info, FirstPlayerID: firstPlayerID, Positions: positions}
}

func (GameStart) Kind() Kind { return KindGameStart }

type TurnChange struct {
	Header
	Turn game.Turn `json:"turn"`
}

func NewTurnChange(turn game.Turn) TurnChange {
	return TurnChange{Header: newHeader(), Turn: turn}
}

func (TurnChange) Kind() Kind { return KindTurnChange }

type RollResult struct {
	Header
	PlayerID string       `json:"player_id"`
	Outcome  game.Outcome `json:"outcome"`
}

func NewRollResult(playerID string, outcome game.Outcome) RollResult {
	return RollResult{Header: newHeader(), PlayerID: playerID, Outcome: outcome}
}

func (RollResult) Kind() Kind { return KindRollResult }

// OccupationUpdate reports one applied move and the board after it.
type OccupationUpdate struct {
	Header
	Movements []game.Movement `json:"movements"`
	Battles   []game.Battle   `json:"battles"`
	Positions []game.Position `json:"positions"`
}

func NewOccupationUpdate(movements []game.Movement, battles []game.Battle, positions []game.Position) OccupationUpdate {
	return OccupationUpdate{Header: newHeader(), Movements: movements, Battles: battles, Positions: positions}
}

func (OccupationUpdate) Kind() Kind { return KindOccupationUpdate }

type TurnUpdated struct {
	Header
	Turn game.Turn `json:"turn"`
}

func NewTurnUpdated(turn game.Turn) TurnUpdated {
	return TurnUpdated{Header: newHeader(), Turn: turn}
}

func (TurnUpdated) Kind() Kind { return KindTurnUpdated }

type GameQuit struct {
	Header
	PlayerID string `json:"player_id"`
}

func NewGameQuit(playerID string) GameQuit {
	return GameQuit{Header: newHeader(), PlayerID: playerID}
}

func (GameQuit) Kind() Kind { return KindGameQuit }

type GameEnd struct {
	Header
	WinnerID string `json:"winner_id"`
}

func NewGameEnd(winnerID string) GameEnd {
	return GameEnd{Header: newHeader(), WinnerID: winnerID}
}

func (GameEnd) Kind() Kind { return KindGameEnd }
