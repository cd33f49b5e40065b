//go:build windows

package poster

import "os"

func shortcutSignals() []os.Signal {
	return nil
}

// SignalShortcut is unavailable on Windows; use the amqp transport instead.
func SignalShortcut(int) error {
	return ErrRelayUnsupported
}
