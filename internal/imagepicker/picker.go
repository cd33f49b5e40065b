// Package imagepicker is the image selection collaborator of the compose
// screen. Pick opens a filterable list of image files; the UI drives it as a
// mode of the main program and hands key presses to the level it exposes.
// The selection callback runs on the UI loop, and only when a file was
// chosen and loaded.
package imagepicker

import (
	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	uistate "github.com/atomicstack/tweet-popup/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// LevelID identifies the picker's list.
const LevelID = "image"

// LoadedMsg carries the result of loading the chosen file.
type LoadedMsg struct {
	Path  string
	Image *draft.StatusImage
	Err   error
}

// Picker holds the picker state between Pick and the user's choice.
type Picker struct {
	root    string
	depth   int
	level   *uistate.Level
	pending func(*draft.StatusImage)
	loading string
	err     string
}

// New returns a picker rooted at root.
func New(root string) *Picker {
	return &Picker{root: root, depth: DefaultDepth}
}

// Root returns the directory the picker lists.
func (p *Picker) Root() string {
	return p.root
}

// Pick opens the picker. fn runs once with the chosen image; it never runs
// if the user cancels. A second Pick while open replaces the callback.
func (p *Picker) Pick(fn func(*draft.StatusImage)) {
	p.pending = fn
	p.err = ""
	p.loading = ""
	items, err := Scan(p.root, p.depth)
	if err != nil {
		logging.Error(err)
		p.err = err.Error()
	}
	p.level = uistate.NewLevel(LevelID, p.root, items)
}

// Active reports whether the picker is open.
func (p *Picker) Active() bool {
	return p.pending != nil
}

// Level exposes the list for key handling and rendering. Nil when closed.
func (p *Picker) Level() *uistate.Level {
	if !p.Active() {
		return nil
	}
	return p.level
}

// Err returns the last scan or load error.
func (p *Picker) Err() string {
	return p.err
}

// Loading returns the path being loaded, if any.
func (p *Picker) Loading() string {
	return p.loading
}

// Choose starts loading the item under the cursor.
func (p *Picker) Choose() tea.Cmd {
	if !p.Active() || p.loading != "" {
		return nil
	}
	item, ok := p.level.Current()
	if !ok {
		return nil
	}
	p.loading = item.ID
	p.err = ""
	path := item.ID
	return func() tea.Msg {
		image, err := Load(path)
		return LoadedMsg{Path: path, Image: image, Err: err}
	}
}

// Resolve applies a load result. On success the pending callback runs and
// the picker closes; on failure the picker stays open with the error shown.
// It reports whether the picker closed.
func (p *Picker) Resolve(msg LoadedMsg) bool {
	if !p.Active() || msg.Path != p.loading {
		return false
	}
	p.loading = ""
	if msg.Err != nil {
		logging.Error(msg.Err)
		p.err = msg.Err.Error()
		return false
	}
	fn := p.pending
	p.close()
	fn(msg.Image)
	return true
}

// Cancel closes the picker without invoking the callback.
func (p *Picker) Cancel() {
	if !p.Active() {
		return
	}
	p.close()
	events.Compose.PickCancelled()
}

func (p *Picker) close() {
	p.pending = nil
	p.level = nil
	p.loading = ""
	p.err = ""
}
