// Package channel implements the named-event message channel between the
// compose screen and the background poster. A Channel pairs a Transport
// (which moves envelopes between processes) with a subscription table
// (which routes received envelopes to handlers by name).
//
// Handlers never run on transport goroutines: received envelopes surface on
// Events() and are routed by Dispatch, which the owner calls from its own
// loop (the Bubble Tea Update loop on the compose side, Run on the poster
// side). A single stream and a single dispatcher keep envelopes of the same
// name in emission order.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/tweet-popup/internal/logging/events"
)

// ErrClosed is returned when sending on a closed transport.
var ErrClosed = errors.New("channel closed")

// Transport moves envelopes to and from the peer process.
type Transport interface {
	Name() string
	Send(ctx context.Context, env Envelope) error
	Incoming() <-chan Envelope
	Close() error
}

// Handler consumes a dispatched envelope.
type Handler func(Envelope)

type handlerEntry struct {
	id int
	fn Handler
}

// Channel routes envelopes between a transport and named subscriptions.
type Channel struct {
	transport Transport

	mu       sync.Mutex
	handlers map[string][]handlerEntry
	nextID   int
}

// New wraps transport in a Channel.
func New(transport Transport) *Channel {
	return &Channel{
		transport: transport,
		handlers:  make(map[string][]handlerEntry),
	}
}

// Send wraps payload under name and hands it to the transport. The sent
// envelope is returned so callers can correlate replies.
func (c *Channel) Send(ctx context.Context, name string, payload interface{}) (Envelope, error) {
	env, err := NewEnvelope(name, payload)
	if err != nil {
		return Envelope{}, err
	}
	if err := c.SendEnvelope(ctx, env); err != nil {
		return env, err
	}
	return env, nil
}

// SendEnvelope hands a prepared envelope to the transport.
func (c *Channel) SendEnvelope(ctx context.Context, env Envelope) error {
	if c.transport == nil {
		return ErrClosed
	}
	if err := c.transport.Send(ctx, env); err != nil {
		events.Channel.Error(c.transport.Name(), err)
		return fmt.Errorf("send %s: %w", env.Name(), err)
	}
	events.Channel.Send(c.transport.Name(), env.Name(), env.Meta.ID)
	return nil
}

// Subscribe registers h for envelopes named name. Handlers for one name run
// in subscription order.
func (c *Channel) Subscribe(name string, h Handler) *Subscription {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[name] = append(c.handlers[name], handlerEntry{id: id, fn: h})
	count := len(c.handlers[name])
	c.mu.Unlock()
	events.Channel.Subscribe(name, count)
	return &Subscription{channel: c, name: name, id: id}
}

func (c *Channel) unsubscribe(name string, id int) {
	c.mu.Lock()
	entries := c.handlers[name]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.id != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(c.handlers, name)
	} else {
		c.handlers[name] = kept
	}
	count := len(kept)
	c.mu.Unlock()
	events.Channel.Unsubscribe(name, count)
}

// Events exposes envelopes received from the peer. The stream closes when
// the transport shuts down.
func (c *Channel) Events() <-chan Envelope {
	if c.transport == nil {
		return nil
	}
	return c.transport.Incoming()
}

// Dispatch runs every handler subscribed to env's name on the calling
// goroutine and returns how many ran.
func (c *Channel) Dispatch(env Envelope) int {
	c.mu.Lock()
	entries := append([]handlerEntry(nil), c.handlers[env.Name()]...)
	c.mu.Unlock()
	if c.transport != nil {
		events.Channel.Receive(c.transport.Name(), env.Name(), env.Meta.ID)
	}
	if len(entries) == 0 {
		events.Channel.Unhandled(env.Name())
		return 0
	}
	for _, entry := range entries {
		if entry.fn != nil {
			entry.fn(env)
		}
	}
	return len(entries)
}

// Run dispatches received envelopes until the stream closes or ctx ends.
func (c *Channel) Run(ctx context.Context) error {
	incoming := c.Events()
	if incoming == nil {
		return ErrClosed
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-incoming:
			if !ok {
				return nil
			}
			c.Dispatch(env)
		}
	}
}

// Close shuts down the transport.
func (c *Channel) Close() error {
	if c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// Subscription is a disposable handle for one handler registration.
type Subscription struct {
	channel *Channel
	name    string
	id      int
	once    sync.Once
}

// Name returns the subscribed event name.
func (s *Subscription) Name() string {
	return s.name
}

// Close removes the handler. Further calls are no-ops.
func (s *Subscription) Close() error {
	if s == nil || s.channel == nil {
		return nil
	}
	s.once.Do(func() {
		s.channel.unsubscribe(s.name, s.id)
	})
	return nil
}
