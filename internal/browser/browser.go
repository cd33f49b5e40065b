// Package browser opens URLs in the system browser.
package browser

import (
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/tweet-popup/internal/logging"
	pkgbrowser "github.com/pkg/browser"
)

// Opener opens external URLs.
type Opener interface {
	OpenExternal(url string) error
}

// System opens URLs with the platform's default handler.
type System struct{}

func init() {
	// xdg-open and friends would otherwise write into the TUI.
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

// OpenExternal launches url outside the application. Only http and https
// URLs are accepted.
func (System) OpenExternal(url string) error {
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return fmt.Errorf("refusing to open non-web url %q", url)
	}
	if err := pkgbrowser.OpenURL(url); err != nil {
		logging.Errorf("open %s: %v", url, err)
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// Func adapts a function to Opener.
type Func func(url string) error

func (f Func) OpenExternal(url string) error {
	return f(url)
}
