//go:build !windows

package poster

import (
	"fmt"
	"os"
	"syscall"
)

func shortcutSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}

// SignalShortcut asks the poster with the given pid to relay a shortcut.
func SignalShortcut(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find poster %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGUSR1); err != nil {
		return fmt.Errorf("signal poster %d: %w", pid, err)
	}
	return nil
}
