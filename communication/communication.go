package communication

import (
	"context"
	"time"

	"yut/events"
)

// After gates a send on an earlier event: publication waits until EventID
// has been published and acknowledged by every player, or until Timeout.
type After struct {
	EventID string
	Timeout time.Duration
}

// Emitter is what the engine needs to publish events.
type Emitter interface {
	Send(ev events.Event, after *After)
}

// Communicator is the broadcaster as seen by observers and the game master.
type Communicator interface {
	Emitter
	Ack(eventID, playerID string)
	Subscribe(ctx context.Context) (<-chan events.Event, error)
	Close() error
}
