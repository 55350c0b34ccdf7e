package gamemaster

import (
	"context"
	"testing"
	"time"

	"yut/communication"
	"yut/engine"
	"yut/events"
	"yut/game"

	"github.com/stretchr/testify/require"
)

func newInfo(t *testing.T) game.Info {
	t.Helper()
	info, err := game.NewInfo([]game.Player{{ID: "p1", Nickname: "one"}, {ID: "p2", Nickname: "two"}}, 4, 1)
	require.NoError(t, err)
	return info
}

type fixture struct {
	gm     *GameMaster
	events <-chan events.Event
	cancel context.CancelFunc
	done   chan error
}

func setup(t *testing.T, roller game.Roller, engineOpts []engine.Option, opts ...Option) *fixture {
	t.Helper()
	info := newInfo(t)
	comm := communication.New(info.PlayerIDs())
	gm := New(engine.New(info, roller, comm, engineOpts...), comm, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := gm.Subscribe(ctx)
	require.NoError(t, err)

	f := &fixture{gm: gm, events: ch, cancel: cancel, done: make(chan error, 1)}
	go func() { f.done <- gm.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-f.done
		require.NoError(t, comm.Close())
	})
	return f
}

func (f *fixture) next(t *testing.T) events.Event {
	t.Helper()
	select {
	case ev := <-f.events:
		return ev
	case <-time.After(2 * time.Second):
		require.FailNow(t, "No event received in time")
		return nil
	}
}

func (f *fixture) expect(t *testing.T, kinds ...events.Kind) []events.Event {
	t.Helper()
	got := make([]events.Event, len(kinds))
	for i, kind := range kinds {
		got[i] = f.next(t)
		require.Equal(t, kind, got[i].Kind(), "event %d", i)
	}
	return got
}

func TestGameMaster(t *testing.T) {
	ctx := context.Background()

	t.Run("plays a turn end to end", func(t *testing.T) {
		f := setup(t, game.NewScriptedRoller(game.Gae), nil)
		require.NoError(t, f.gm.Enter(ctx, "p1"))
		require.NoError(t, f.gm.Enter(ctx, "p2"))
		f.expect(t,
			events.KindPlayerPresenceChanged,
			events.KindPlayerPresenceChanged,
			events.KindGameStart,
			events.KindTurnChange,
		)

		outcome, err := f.gm.Roll(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, game.Gae, outcome)
		f.expect(t, events.KindRollResult, events.KindTurnUpdated)

		candidates, err := f.gm.Suggest(ctx, "p1")
		require.NoError(t, err)
		require.NotEmpty(t, candidates)
		for _, c := range candidates {
			require.Equal(t, []game.Outcome{game.Gae}, c.Path.Outcomes())
		}
		none, err := f.gm.Suggest(ctx, "p2")
		require.NoError(t, err)
		require.Empty(t, none, "Only the turn owner gets suggestions")

		pick := candidates[0]
		_, err = f.gm.Move(ctx, "p1", pick.Position.KnightIDs(), pick.Path)
		require.NoError(t, err)
		f.expect(t, events.KindTurnUpdated, events.KindOccupationUpdate, events.KindTurnChange)

		snap, err := f.gm.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, engine.InProgress, snap.State)
		require.Equal(t, "p2", snap.Turn.PlayerID)
		require.Len(t, snap.Positions, 8)
	})

	t.Run("rejected actions", func(t *testing.T) {
		f := setup(t, game.NewScriptedRoller(game.Do), nil)
		_, err := f.gm.Submit(ctx, game.Action{Type: game.RollAction})
		require.ErrorIs(t, err, ErrInvalidAction, "player id is required")
		_, err = f.gm.Submit(ctx, game.Action{PlayerID: "p1", Type: game.MoveAction})
		require.ErrorIs(t, err, ErrInvalidAction, "moves need knights")

		_, err = f.gm.Roll(ctx, "p1")
		require.ErrorIs(t, err, engine.ErrNotStarted)
		require.ErrorIs(t, f.gm.Enter(ctx, "ghost"), engine.ErrUnknownPlayer)
	})

	t.Run("expired turns pass on the tick", func(t *testing.T) {
		now := time.Now()
		clock := func() time.Time { return now }
		f := setup(t, game.NewScriptedRoller(game.Do), []engine.Option{engine.WithClock(clock)}, WithClock(clock), WithTick(time.Hour))
		require.NoError(t, f.gm.Enter(ctx, "p1"))
		require.NoError(t, f.gm.Enter(ctx, "p2"))
		f.expect(t,
			events.KindPlayerPresenceChanged,
			events.KindPlayerPresenceChanged,
			events.KindGameStart,
			events.KindTurnChange,
		)

		require.NoError(t, f.gm.Expire(ctx))
		snap, err := f.gm.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, "p1", snap.Turn.PlayerID, "Turn should not expire early")

		now = now.Add(3 * time.Minute)
		require.NoError(t, f.gm.Expire(ctx))
		ev := f.expect(t, events.KindTurnChange)[0].(events.TurnChange)
		require.Equal(t, "p2", ev.Turn.PlayerID)
	})

	t.Run("surrender ends a duel", func(t *testing.T) {
		f := setup(t, game.NewScriptedRoller(game.Do), nil)
		require.NoError(t, f.gm.Enter(ctx, "p1"))
		require.NoError(t, f.gm.Enter(ctx, "p2"))
		require.NoError(t, f.gm.Surrender(ctx, "p2"))

		snap, err := f.gm.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, engine.Ended, snap.State)
		require.Equal(t, "p1", snap.Winner)
	})

	t.Run("stopped master refuses work", func(t *testing.T) {
		f := setup(t, game.NewScriptedRoller(game.Do), nil)
		f.cancel()
		require.NoError(t, <-f.done)
		f.done <- nil

		_, err := f.gm.Snapshot(ctx)
		require.ErrorIs(t, err, ErrStopped)
	})
}
