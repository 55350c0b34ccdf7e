package communication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"yut/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

const (
	topic       = "game.events"
	kindKey     = "kind"
	defaultSize = 64
	// Delivered event ids remembered after their record is dropped
	historySize = 1024
)

var ErrClosed = errors.New("broadcaster closed")

// record tracks one event from Send, or from a gate naming it, until it is
// published, acked by every player and no gate waits on it anymore.
type record struct {
	sent    chan struct{}
	acked   chan struct{}
	acks    map[string]bool
	isSent  bool
	full    bool
	waiters int
}

// Broadcaster publishes events in send order. A send can be gated on an
// earlier event being published and acknowledged by every player; the gate
// always opens after its timeout.
type Broadcaster struct {
	players map[string]bool
	buffer  int
	bus     *gochannel.GoChannel

	mu        sync.Mutex
	records   map[string]*record
	delivered map[string]bool
	history   []string // delivered ids, oldest first
	queue     []events.Event
	wake      chan struct{}

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type Option func(*Broadcaster)

// WithBuffer sets the capacity of each subscription channel.
func WithBuffer(size int) Option {
	return func(b *Broadcaster) {
		if size >= 0 {
			b.buffer = size
		}
	}
}

// New starts a broadcaster whose ack gates wait on playerIDs.
func New(playerIDs []string, opts ...Option) *Broadcaster {
	players := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		players[id] = true
	}

	// Default values
	b := &Broadcaster{
		players: players,
		buffer:  defaultSize,
		records:   make(map[string]*record),
		delivered: make(map[string]bool),
		wake:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.bus = gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
		Persistent:                     false,
	}, newLoggerAdapter())

	b.wg.Add(1)
	go b.run()
	return b
}

// Send never blocks. Without after the event is queued right away. A gate
// naming an event that was not sent yet waits for it to be sent.
func (b *Broadcaster) Send(ev events.Event, after *After) {
	b.mu.Lock()
	b.track(ev.ID())
	var target *record
	if after != nil && !b.delivered[after.EventID] {
		target = b.track(after.EventID)
		target.waiters++
	}
	b.mu.Unlock()

	if target == nil {
		b.enqueue(ev)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.leave(after.EventID, target)
		b.await(ev, target, after.Timeout)
	}()
}

func (b *Broadcaster) await(ev events.Event, target *record, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-target.sent:
	case <-timer.C:
		log.Debug().Msgf("%s %s: timed out waiting for publication", ev.Kind(), ev.ID())
		b.enqueue(ev)
		return
	case <-b.done:
		return
	}

	select {
	case <-target.acked:
	case <-timer.C:
		log.Debug().Msgf("%s %s: timed out waiting for acks", ev.Kind(), ev.ID())
	case <-b.done:
		return
	}
	b.enqueue(ev)
}

// Ack records that playerID has seen eventID. Unknown events and players are ignored.
func (b *Broadcaster) Ack(eventID, playerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[eventID]
	if !ok || !b.players[playerID] || rec.full {
		return
	}
	rec.acks[playerID] = true
	if len(rec.acks) == len(b.players) {
		rec.full = true
		close(rec.acked)
		b.release(eventID)
	}
}

// Subscribe streams every event published from now on until ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	select {
	case <-b.done:
		return nil, ErrClosed
	default:
	}

	messages, err := b.bus.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan events.Event, b.buffer)
	go func() {
		defer close(out)
		for msg := range messages {
			ev, err := events.Decode(events.Kind(msg.Metadata.Get(kindKey)), msg.Payload)
			if err != nil {
				log.Warn().Msgf("dropping message %s: %v", msg.UUID, err)
				msg.Ack()
				continue
			}
			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			case <-b.done:
				return
			}
		}
	}()
	return out, nil
}

// Close stops publication. Queued and gated events are dropped.
func (b *Broadcaster) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.bus.Close()
		b.wg.Wait()
	})
	return err
}

// track must be called with mu held.
func (b *Broadcaster) track(id string) *record {
	if rec, ok := b.records[id]; ok {
		return rec
	}
	rec := &record{
		sent:  make(chan struct{}),
		acked: make(chan struct{}),
		acks:  make(map[string]bool),
	}
	if len(b.players) == 0 {
		rec.full = true
		close(rec.acked)
	}
	b.records[id] = rec
	return rec
}

// leave drops a gate from its target.
func (b *Broadcaster) leave(id string, rec *record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec.waiters--
	b.release(id)
}

// release forgets a record once it can no longer hold anything back and
// remembers its id as delivered. mu must be held.
func (b *Broadcaster) release(id string) {
	rec := b.records[id]
	if rec == nil || !rec.isSent || !rec.full || rec.waiters > 0 {
		return
	}
	delete(b.records, id)
	b.delivered[id] = true
	b.history = append(b.history, id)
	if len(b.history) > historySize {
		delete(b.delivered, b.history[0])
		b.history = b.history[1:]
	}
}

func (b *Broadcaster) enqueue(ev events.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Broadcaster) next() (events.Event, bool) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			ev := b.queue[0]
			b.queue = b.queue[1:]
			b.mu.Unlock()
			return ev, true
		}
		b.mu.Unlock()

		select {
		case <-b.wake:
		case <-b.done:
			return nil, false
		}
	}
}

func (b *Broadcaster) run() {
	defer b.wg.Done()
	for {
		ev, ok := b.next()
		if !ok {
			return
		}
		if err := b.publish(ev); err != nil {
			log.Error().Msgf("failed to publish %s %s: %v", ev.Kind(), ev.ID(), err)
		}
		b.markSent(ev.ID())
	}
}

func (b *Broadcaster) publish(ev events.Event) error {
	data, err := events.Encode(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(ev.ID(), data)
	msg.Metadata.Set(kindKey, string(ev.Kind()))
	return b.bus.Publish(topic, msg)
}

func (b *Broadcaster) markSent(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.records[id]
	if rec == nil || rec.isSent {
		return
	}
	rec.isSent = true
	close(rec.sent)
	b.release(id)
}
