package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"yut/battleground"
	"yut/communication"
	"yut/events"
	"yut/game"

	"github.com/rs/zerolog/log"
)

type State int

const (
	AwaitingPlayers State = iota
	InProgress
	Ended
)

func (s State) String() string {
	switch s {
	case AwaitingPlayers:
		return "awaiting players"
	case InProgress:
		return "in progress"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrNotStarted    = errors.New("game has not started")
	ErrGameEnded     = errors.New("game has ended")
	ErrNotYourTurn   = errors.New("not the player's turn")
	ErrNoRollsLeft   = errors.New("no rolls left")
	ErrNoPendingDice = errors.New("no pending dice")
	ErrDiceMismatch  = errors.New("path uses dice that are not pending")
	ErrForeignKnight = errors.New("knight belongs to another player")
	ErrForfeited     = errors.New("player has already left the game")
)

// Engine sequences one game. Every command either applies fully and emits
// its events or returns an error and changes nothing. Engine is not safe for
// concurrent use; callers serialise commands.
type Engine struct {
	info       game.Info
	rules      game.Rules
	roller     game.Roller
	emitter    communication.Emitter
	clock      func() time.Time
	ackTimeout time.Duration

	state     State
	ground    *battleground.Ground
	turn      game.Turn
	winner    string
	online    map[string]bool
	entered   map[string]bool
	forfeited map[string]bool
	lastEvent string
}

type Option func(*Engine)

func WithRules(rules game.Rules) Option {
	return func(e *Engine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithAckTimeout gates every event on the acks of the one before it.
func WithAckTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout >= 0 {
			e.ackTimeout = timeout
		}
	}
}

// WithGround opens the game on an existing ledger instead of everyone at start.
func WithGround(ground *battleground.Ground) Option {
	return func(e *Engine) {
		if ground != nil {
			e.ground = ground
		}
	}
}

func New(info game.Info, roller game.Roller, emitter communication.Emitter, opts ...Option) *Engine {
	// Default values
	e := &Engine{
		info:      info,
		rules:     game.NewStandardRules(),
		roller:    roller,
		emitter:   emitter,
		clock:     time.Now,
		online:    make(map[string]bool),
		entered:   make(map[string]bool),
		forfeited: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Info() game.Info {
	return e.info
}

func (e *Engine) State() State {
	return e.state
}

// Turn returns the current turn once the game has started.
func (e *Engine) Turn() (game.Turn, bool) {
	if e.state == AwaitingPlayers {
		return game.Turn{}, false
	}
	return e.turn, true
}

func (e *Engine) Positions() []game.Position {
	if e.state == AwaitingPlayers || e.ground == nil {
		return nil
	}
	return e.ground.Positions()
}

func (e *Engine) Winner() (string, bool) {
	return e.winner, e.state == Ended && e.winner != ""
}

// EnterGame marks a player as present. The game starts once every
// configured player has entered.
func (e *Engine) EnterGame(player game.Player) error {
	if !e.info.HasPlayer(player.ID) {
		return fmt.Errorf("enter %q: %w", player.ID, ErrUnknownPlayer)
	}
	if e.state == Ended {
		return ErrGameEnded
	}
	if !e.online[player.ID] {
		e.online[player.ID] = true
		e.emit(events.NewPlayerPresenceChanged(player.ID, true))
	}
	e.entered[player.ID] = true

	if e.state == AwaitingPlayers && len(e.entered) == len(e.info.Players) {
		e.start()
	}
	return nil
}

func (e *Engine) start() {
	first := e.info.Players[0].ID
	if e.ground == nil {
		e.ground = battleground.New(e.info, e.rules)
	}
	e.state = InProgress
	log.Info().Msgf("game %s started with %d players", e.info.GameID, len(e.info.Players))

	e.emit(events.NewGameStart(e.info, first, e.ground.Positions()))
	e.changeTurn(game.NewTurn(0, first, e.clock(), e.rules))
}

// Roll draws one outcome for the player owning the turn.
func (e *Engine) Roll(playerID string) (game.Outcome, error) {
	if err := e.checkTurn(playerID); err != nil {
		return 0, err
	}
	if e.turn.RemainingRolls <= 0 {
		return 0, ErrNoRollsLeft
	}

	outcome := e.roller.Roll()
	log.Debug().Msgf("%s rolled %s", playerID, outcome)
	e.emit(events.NewRollResult(playerID, outcome))
	e.updateTurn(e.turn.WithRoll(outcome))
	return outcome, nil
}

// Move applies path to knightIDs, paying for it with pending dice.
func (e *Engine) Move(playerID string, knightIDs []string, path game.MovePath) (battleground.Result, error) {
	if err := e.checkTurn(playerID); err != nil {
		return battleground.Result{}, err
	}
	if !e.turn.CanMove() {
		return battleground.Result{}, ErrNoPendingDice
	}
	outcomes := path.Outcomes()
	if !e.turn.Covers(outcomes) {
		return battleground.Result{}, fmt.Errorf("%w: %v not in %v", ErrDiceMismatch, outcomes, e.turn.Pending)
	}
	for _, id := range knightIDs {
		if pos, ok := e.ground.PositionOf(id); ok && pos.PlayerID() != playerID {
			return battleground.Result{}, fmt.Errorf("%w: %s", ErrForeignKnight, id)
		}
	}

	result, err := e.ground.Move(knightIDs, path)
	if err != nil {
		return battleground.Result{}, fmt.Errorf("move rejected: %w", err)
	}

	e.updateTurn(e.turn.Consume(outcomes))
	e.emit(events.NewOccupationUpdate(result.Movements, result.Battles, e.ground.Positions()))
	e.resolve(playerID, result)
	return result, nil
}

func (e *Engine) resolve(playerID string, result battleground.Result) {
	if winner, ok := e.ground.Winner(); ok {
		e.end(winner)
		return
	}
	if n := len(result.Battles); n > 0 {
		e.updateTurn(e.turn.WithBonus(e.rules.BonusRolls(n), e.rules.BattleExtension()))
		return
	}
	if e.turn.RemainingRolls > 0 {
		return
	}
	e.advance(playerID)
}

// Surrender removes the player from the rotation.
func (e *Engine) Surrender(playerID string) error {
	if !e.info.HasPlayer(playerID) {
		return fmt.Errorf("surrender %q: %w", playerID, ErrUnknownPlayer)
	}
	switch e.state {
	case AwaitingPlayers:
		return ErrNotStarted
	case Ended:
		return ErrGameEnded
	}
	if e.forfeited[playerID] {
		return ErrForfeited
	}
	e.forfeit(playerID)
	return nil
}

// Quit takes the player offline. A player quitting a running game also
// forfeits it.
func (e *Engine) Quit(playerID string) error {
	if !e.info.HasPlayer(playerID) {
		return fmt.Errorf("quit %q: %w", playerID, ErrUnknownPlayer)
	}
	if e.state == Ended {
		return ErrGameEnded
	}
	if e.online[playerID] {
		delete(e.online, playerID)
		e.emit(events.NewPlayerPresenceChanged(playerID, false))
	}
	if e.state == AwaitingPlayers {
		delete(e.entered, playerID)
		return nil
	}
	if !e.forfeited[playerID] {
		e.forfeit(playerID)
	}
	return nil
}

func (e *Engine) forfeit(playerID string) {
	e.forfeited[playerID] = true
	log.Info().Msgf("%s left game %s", playerID, e.info.GameID)
	e.emit(events.NewGameQuit(playerID))

	remaining := e.activePlayers()
	if len(remaining) == 1 {
		e.end(remaining[0])
		return
	}
	if e.turn.PlayerID == playerID {
		e.advance(playerID)
	}
}

// Expire hands an overdue turn to the next player. It reports whether the
// turn changed.
func (e *Engine) Expire(now time.Time) bool {
	if e.state != InProgress || !e.turn.Expired(now) {
		return false
	}
	log.Debug().Msgf("turn %d of %s expired", e.turn.Seq, e.turn.PlayerID)
	e.advance(e.turn.PlayerID)
	return true
}

func (e *Engine) checkTurn(playerID string) error {
	if !e.info.HasPlayer(playerID) {
		return fmt.Errorf("%q: %w", playerID, ErrUnknownPlayer)
	}
	switch e.state {
	case AwaitingPlayers:
		return ErrNotStarted
	case Ended:
		return ErrGameEnded
	}
	if e.turn.PlayerID != playerID {
		return fmt.Errorf("%w: %s plays turn %d", ErrNotYourTurn, e.turn.PlayerID, e.turn.Seq)
	}
	return nil
}

func (e *Engine) activePlayers() []string {
	var ids []string
	for _, p := range e.info.Players {
		if !e.forfeited[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// nextPlayer follows the roster order after current, skipping forfeits.
func (e *Engine) nextPlayer(current string) string {
	ids := e.info.PlayerIDs()
	i := slices.Index(ids, current)
	for n := 1; n <= len(ids); n++ {
		candidate := ids[(i+n)%len(ids)]
		if !e.forfeited[candidate] {
			return candidate
		}
	}
	return current
}

func (e *Engine) advance(current string) {
	e.changeTurn(e.turn.Next(e.nextPlayer(current), e.clock(), e.rules))
}

func (e *Engine) changeTurn(turn game.Turn) {
	e.turn = turn
	e.emit(events.NewTurnChange(turn))
}

func (e *Engine) updateTurn(turn game.Turn) {
	e.turn = turn
	e.emit(events.NewTurnUpdated(turn))
}

func (e *Engine) end(winner string) {
	e.state = Ended
	e.winner = winner
	log.Info().Msgf("game %s won by %s", e.info.GameID, winner)
	e.emit(events.NewGameEnd(winner))
}

func (e *Engine) emit(ev events.Event) {
	var after *communication.After
	if e.ackTimeout > 0 && e.lastEvent != "" {
		after = &communication.After{EventID: e.lastEvent, Timeout: e.ackTimeout}
	}
	e.emitter.Send(ev, after)
	e.lastEvent = ev.ID()
}
