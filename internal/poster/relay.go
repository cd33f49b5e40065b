package poster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/atomicstack/tweet-popup/internal/logging"
)

// ErrRelayUnsupported is returned where the platform has no shortcut signal.
var ErrRelayUnsupported = errors.New("shortcut relay not supported on this platform")

// WritePIDFile records the current pid at path and returns a cleanup func
// that removes it.
func WritePIDFile(path string) (func(), error) {
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o600); err != nil {
		return func() {}, fmt.Errorf("write pidfile: %w", err)
	}
	return func() {
		if pid, err := ReadPIDFile(path); err == nil && pid == os.Getpid() {
			_ = os.Remove(path)
		}
	}, nil
}

// ReadPIDFile returns the pid stored at path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read pidfile: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pidfile %s holds no pid", path)
	}
	return pid, nil
}

// RelayShortcuts forwards the shortcut signal to the compose screen until
// ctx ends.
func (s *Service) RelayShortcuts(ctx context.Context) error {
	sigs := shortcutSignals()
	if len(sigs) == 0 {
		return ErrRelayUnsupported
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if err := s.Shortcut(ctx); err != nil {
					logging.Error(err)
				}
			}
		}
	}()
	return nil
}
