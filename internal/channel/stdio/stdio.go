// Package stdio carries envelopes as JSON lines over a pair of streams. The
// compose screen spawns the poster as a child process and talks to it over
// the child's stdin and stdout.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
)

// maxLine bounds a single envelope; base64 images dominate the size.
const maxLine = 16 << 20

const waitTimeout = 3 * time.Second

// Transport exchanges envelopes over a reader and a writer.
type Transport struct {
	name string

	wmu    sync.Mutex
	writer io.Writer

	out    chan channel.Envelope
	done   chan struct{}
	once   sync.Once
	closer func() error
}

// New starts reading envelopes from r. closer, when set, runs once on Close.
func New(name string, r io.Reader, w io.Writer, closer func() error) *Transport {
	t := &Transport{
		name:   name,
		writer: w,
		out:    make(chan channel.Envelope),
		done:   make(chan struct{}),
		closer: closer,
	}
	go t.read(r)
	return t
}

// Serve attaches to the current process's stdin and stdout.
func Serve() *Transport {
	return New("stdio", os.Stdin, os.Stdout, nil)
}

// Spawn starts path with args and connects to its stdin and stdout. The
// child's stderr is discarded; it is expected to log to a file.
func Spawn(ctx context.Context, path string, args ...string) (*Transport, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = os.Environ()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("poster stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("poster stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start poster: %w", err)
	}
	closer := func() error {
		_ = stdin.Close()
		waited := make(chan error, 1)
		go func() { waited <- cmd.Wait() }()
		select {
		case err := <-waited:
			return exitError(err)
		case <-time.After(waitTimeout):
			_ = cmd.Process.Kill()
			return exitError(<-waited)
		}
	}
	return New("stdio", stdout, stdin, closer), nil
}

func exitError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && !exitErr.Exited() {
		// killed by us after stdin closed
		return nil
	}
	return err
}

func (t *Transport) read(r io.Reader) {
	defer close(t.out)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env channel.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			events.Channel.Error(t.name, fmt.Errorf("decode line: %w", err))
			continue
		}
		select {
		case t.out <- env:
		case <-t.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		events.Channel.Error(t.name, err)
	}
}

func (t *Transport) Name() string {
	return t.name
}

// Send writes env as one JSON line.
func (t *Transport) Send(ctx context.Context, env channel.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-t.done:
		return channel.ErrClosed
	default:
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	data = append(data, '\n')
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

func (t *Transport) Incoming() <-chan channel.Envelope {
	return t.out
}

// Close stops delivery and runs the closer.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		if t.closer != nil {
			err = t.closer()
		}
	})
	return err
}
