// Package local provides an in-process transport pair. The compose screen
// holds one end and a poster goroutine holds the other.
package local

import (
	"context"
	"sync"

	"github.com/atomicstack/tweet-popup/internal/channel"
)

const bufferSize = 16

type pipe struct {
	once sync.Once
	done chan struct{}
}

func (p *pipe) close() {
	p.once.Do(func() { close(p.done) })
}

// Transport is one end of an in-process pipe.
type Transport struct {
	name string
	pipe *pipe
	in   chan channel.Envelope
	out  chan channel.Envelope
	peer *Transport
}

// Pipe returns two connected transports. Closing either end closes both.
func Pipe() (*Transport, *Transport) {
	p := &pipe{done: make(chan struct{})}
	a := newEnd("local", p)
	b := newEnd("local", p)
	a.peer = b
	b.peer = a
	go a.forward()
	go b.forward()
	return a, b
}

func newEnd(name string, p *pipe) *Transport {
	return &Transport{
		name: name,
		pipe: p,
		in:   make(chan channel.Envelope, bufferSize),
		out:  make(chan channel.Envelope),
	}
}

// forward moves envelopes from the internal buffer to the exposed stream so
// that out can be closed without racing senders.
func (t *Transport) forward() {
	defer close(t.out)
	for {
		select {
		case <-t.pipe.done:
			return
		case env := <-t.in:
			select {
			case t.out <- env:
			case <-t.pipe.done:
				return
			}
		}
	}
}

func (t *Transport) Name() string {
	return t.name
}

// Send delivers env to the peer end.
func (t *Transport) Send(ctx context.Context, env channel.Envelope) error {
	select {
	case <-t.pipe.done:
		return channel.ErrClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.pipe.done:
		return channel.ErrClosed
	case t.peer.in <- env:
		return nil
	}
}

func (t *Transport) Incoming() <-chan channel.Envelope {
	return t.out
}

func (t *Transport) Close() error {
	t.pipe.close()
	return nil
}
