package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yut/battleground"
	"yut/communication"
	"yut/engine"
	"yut/events"
	"yut/game"
	"yut/searcher"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	ErrStopped       = errors.New("game master is not running")
	ErrInvalidAction = errors.New("invalid action")
)

// Reply is what an accepted action produced.
type Reply struct {
	Outcome game.Outcome        // RollAction only
	Result  battleground.Result // MoveAction only
}

// Snapshot is a consistent read of one game.
type Snapshot struct {
	State     engine.State
	Turn      game.Turn
	Positions []game.Position
	Winner    string
}

type request struct {
	action   *game.Action
	expire   bool
	response chan response
}

type response struct {
	reply    Reply
	snapshot Snapshot
	err      error
}

// GameMaster owns an engine and is the only goroutine touching it. Callers
// talk to it through context-aware methods that queue requests to Run.
type GameMaster struct {
	engine   *engine.Engine
	comm     communication.Communicator
	searcher *searcher.Searcher
	validate *validator.Validate
	clock    func() time.Time
	tick     time.Duration

	requests chan request
	stopped  chan struct{}
}

type Option func(*GameMaster)

// WithTick sets how often turn expiry is checked.
func WithTick(tick time.Duration) Option {
	return func(gm *GameMaster) {
		if tick > 0 {
			gm.tick = tick
		}
	}
}

func WithSearcher(s *searcher.Searcher) Option {
	return func(gm *GameMaster) {
		if s != nil {
			gm.searcher = s
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(gm *GameMaster) {
		if clock != nil {
			gm.clock = clock
		}
	}
}

func New(eng *engine.Engine, comm communication.Communicator, opts ...Option) *GameMaster {
	// Default values
	gm := &GameMaster{
		engine:   eng,
		comm:     comm,
		searcher: searcher.New(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    time.Now,
		tick:     time.Second,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

// Run serves requests until ctx is done.
func (gm *GameMaster) Run(ctx context.Context) error {
	defer close(gm.stopped)
	ticker := time.NewTicker(gm.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-gm.requests:
			req.response <- gm.handle(req)
		case <-ticker.C:
			gm.engine.Expire(gm.clock())
		}
	}
}

func (gm *GameMaster) handle(req request) response {
	switch {
	case req.expire:
		gm.engine.Expire(gm.clock())
		return response{}
	case req.action == nil:
		return response{snapshot: gm.snapshot()}
	}

	a := req.action
	var resp response
	switch a.Type {
	case game.EnterAction:
		resp.err = gm.engine.EnterGame(game.Player{ID: a.PlayerID})
	case game.RollAction:
		resp.reply.Outcome, resp.err = gm.engine.Roll(a.PlayerID)
	case game.MoveAction:
		resp.reply.Result, resp.err = gm.engine.Move(a.PlayerID, a.KnightIDs, a.Path)
	case game.SurrenderAction:
		resp.err = gm.engine.Surrender(a.PlayerID)
	case game.QuitAction:
		resp.err = gm.engine.Quit(a.PlayerID)
	}
	if resp.err != nil {
		log.Debug().Msgf("%s by %s rejected: %v", a.Type, a.PlayerID, resp.err)
	}
	return resp
}

func (gm *GameMaster) snapshot() Snapshot {
	s := Snapshot{
		State:     gm.engine.State(),
		Positions: gm.engine.Positions(),
	}
	s.Turn, _ = gm.engine.Turn()
	s.Winner, _ = gm.engine.Winner()
	return s
}

func (gm *GameMaster) do(ctx context.Context, req request) (response, error) {
	req.response = make(chan response, 1)
	select {
	case gm.requests <- req:
	case <-gm.stopped:
		return response{}, ErrStopped
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	resp := <-req.response
	return resp, resp.err
}

// Submit validates and applies one action.
func (gm *GameMaster) Submit(ctx context.Context, action game.Action) (Reply, error) {
	if err := gm.validate.Struct(action); err != nil {
		return Reply{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	resp, err := gm.do(ctx, request{action: &action})
	return resp.reply, err
}

func (gm *GameMaster) Enter(ctx context.Context, playerID string) error {
	_, err := gm.Submit(ctx, game.Action{PlayerID: playerID, Type: game.EnterAction})
	return err
}

func (gm *GameMaster) Roll(ctx context.Context, playerID string) (game.Outcome, error) {
	reply, err := gm.Submit(ctx, game.Action{PlayerID: playerID, Type: game.RollAction})
	return reply.Outcome, err
}

func (gm *GameMaster) Move(ctx context.Context, playerID string, knightIDs []string, path game.MovePath) (battleground.Result, error) {
	reply, err := gm.Submit(ctx, game.Action{
		PlayerID:  playerID,
		Type:      game.MoveAction,
		KnightIDs: knightIDs,
		Path:      path,
	})
	return reply.Result, err
}

func (gm *GameMaster) Surrender(ctx context.Context, playerID string) error {
	_, err := gm.Submit(ctx, game.Action{PlayerID: playerID, Type: game.SurrenderAction})
	return err
}

func (gm *GameMaster) Quit(ctx context.Context, playerID string) error {
	_, err := gm.Submit(ctx, game.Action{PlayerID: playerID, Type: game.QuitAction})
	return err
}

// Expire checks the turn deadline right away instead of waiting for the ticker.
func (gm *GameMaster) Expire(ctx context.Context) error {
	_, err := gm.do(ctx, request{expire: true})
	return err
}

func (gm *GameMaster) Snapshot(ctx context.Context) (Snapshot, error) {
	resp, err := gm.do(ctx, request{})
	return resp.snapshot, err
}

func (gm *GameMaster) Info() game.Info {
	return gm.engine.Info()
}

func (gm *GameMaster) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	return gm.comm.Subscribe(ctx)
}

func (gm *GameMaster) Ack(eventID, playerID string) {
	gm.comm.Ack(eventID, playerID)
}

// Suggest ranks every path the player's groups can take with the pending
// dice. The search runs on the caller's goroutine against a snapshot.
func (gm *GameMaster) Suggest(ctx context.Context, playerID string) ([]searcher.Candidate, error) {
	snap, err := gm.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.State != engine.InProgress || snap.Turn.PlayerID != playerID {
		return nil, nil
	}
	var own []game.Position
	for _, p := range snap.Positions {
		if p.PlayerID() == playerID {
			own = append(own, p)
		}
	}
	return gm.searcher.Candidates(ctx, own, snap.Turn.Pending, snap.Positions)
}
