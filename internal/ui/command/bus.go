package command

import (
	"fmt"
	"sync"

	"github.com/atomicstack/tweet-popup/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Request names one background job. Jobs sharing an ID never overlap.
type Request struct {
	ID    string
	Label string
	Run   tea.Cmd
}

// Bus runs jobs off the UI loop and drops a request while another with
// the same ID is still running.
type Bus struct {
	mu      sync.Mutex
	running map[string]string
}

func New() *Bus {
	return &Bus{running: make(map[string]string)}
}

// Execute returns a command running req, or nil when req has no job or a
// job with its ID is already in flight.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	if req.Run == nil {
		events.Command.Skip(req.ID, req.Label)
		return nil
	}
	b.mu.Lock()
	if label, busy := b.running[req.ID]; busy {
		b.mu.Unlock()
		events.Command.Busy(req.ID, req.Label, label)
		return nil
	}
	b.running[req.ID] = req.Label
	b.mu.Unlock()

	return func() tea.Msg {
		defer b.finish(req.ID)
		msg := req.Run()
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}

// Running reports whether a job with id is in flight.
func (b *Bus) Running(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.running[id]
	return ok
}

func (b *Bus) finish(id string) {
	b.mu.Lock()
	delete(b.running, id)
	b.mu.Unlock()
}
