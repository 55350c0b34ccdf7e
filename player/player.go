package player

import (
	"context"
	"errors"
	"fmt"

	"yut/battleground"
	"yut/events"
	"yut/game"
	"yut/gamemaster"
	"yut/searcher"

	"github.com/rs/zerolog/log"
)

var ErrSubscriptionClosed = errors.New("event stream closed before the game ended")

// Master is the part of the game master a player talks to.
type Master interface {
	Enter(ctx context.Context, playerID string) error
	Roll(ctx context.Context, playerID string) (game.Outcome, error)
	Move(ctx context.Context, playerID string, knightIDs []string, path game.MovePath) (battleground.Result, error)
	Suggest(ctx context.Context, playerID string) ([]searcher.Candidate, error)
	Snapshot(ctx context.Context) (gamemaster.Snapshot, error)
	Subscribe(ctx context.Context) (<-chan events.Event, error)
	Ack(eventID, playerID string)
}

// Player is an automated participant. It acknowledges every event it sees
// and acts whenever an event says it owns the turn.
type Player struct {
	ID       string
	Strategy Strategy
	master   Master
}

func NewPlayer(id string, strategy Strategy, master Master) *Player {
	return &Player{
		ID:       id,
		Strategy: strategy,
		master:   master,
	}
}

// Play enters the game and plays until it ends. It returns the winner.
func (p *Player) Play(ctx context.Context) (string, error) {
	stream, err := p.master.Subscribe(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to subscribe: %w", err)
	}
	if err := p.master.Enter(ctx, p.ID); err != nil {
		return "", fmt.Errorf("failed to enter: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-stream:
			if !ok {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				return "", ErrSubscriptionClosed
			}
			p.master.Ack(ev.ID(), p.ID)

			switch ev := ev.(type) {
			case events.GameEnd:
				return ev.WinnerID, nil
			case events.TurnChange:
				err = p.act(ctx, ev.Turn)
			case events.TurnUpdated:
				err = p.act(ctx, ev.Turn)
			}
			if err != nil {
				return "", err
			}
		}
	}
}

// act takes the next step of a turn. Turns seen in events may already be
// stale; the engine rejects those commands and a later event catches up.
func (p *Player) act(ctx context.Context, turn game.Turn) error {
	if turn.PlayerID != p.ID {
		return nil
	}

	var err error
	switch {
	case turn.RemainingRolls > 0:
		_, err = p.master.Roll(ctx, p.ID)
	case turn.CanMove():
		err = p.move(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug().Msgf("%s: %v", p.ID, err)
	}
	return nil
}

func (p *Player) move(ctx context.Context) error {
	candidates, err := p.master.Suggest(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}
	snap, err := p.master.Snapshot(ctx)
	if err != nil {
		return err
	}
	pick := p.Strategy.Choose(candidates, snap.Positions)
	_, err = p.master.Move(ctx, p.ID, pick.Position.KnightIDs(), pick.Path)
	return err
}
