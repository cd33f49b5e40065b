package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/atomicstack/tweet-popup/internal/imagepicker"
	"github.com/atomicstack/tweet-popup/internal/locale"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/atomicstack/tweet-popup/internal/notify"
	"github.com/atomicstack/tweet-popup/internal/protocol"
	"github.com/atomicstack/tweet-popup/internal/theme"
	"github.com/atomicstack/tweet-popup/internal/ui/command"
	uistate "github.com/atomicstack/tweet-popup/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

type Mode int

const (
	ModeCompose Mode = iota
	ModeImagePicker
)

func (m Mode) String() string {
	switch m {
	case ModeImagePicker:
		return "image-picker"
	default:
		return "compose"
	}
}

type msgHandler func(tea.Msg) tea.Cmd

// Controller is the part of the compose controller the screen drives.
type Controller interface {
	Submit(ctx context.Context) (protocol.SubmissionRequest, error)
	AttachImage()
	RemoveImage()
}

// Weigher scores draft text against the platform limit.
type Weigher interface {
	Weigh(text string) *draft.WeightedStatus
}

// Events is the UI side of the background channel.
type Events interface {
	Events() <-chan channel.Envelope
	Dispatch(channel.Envelope) int
}

// Notifications exposes the latest desktop notification.
type Notifications interface {
	Latest() (notify.Notification, bool)
	Activate() bool
}

// Options wires the model to the rest of the application.
type Options struct {
	Context       context.Context
	Store         draft.Store
	Weigher       Weigher
	Controller    Controller
	Picker        *imagepicker.Picker
	Channel       Events
	Notifications Notifications
	Strings       locale.Strings
	Styles        *theme.Styles
	Width         int
	Height        int
	ShowFooter    bool
}

// Model implements the Bubble Tea model for the compose screen.
type Model struct {
	ctx           context.Context
	store         draft.Store
	weigher       Weigher
	controller    Controller
	picker        *imagepicker.Picker
	channel       Events
	notifications Notifications
	strings       locale.Strings
	styles        *theme.Styles

	editor  textarea.Model
	meter   progress.Model
	mode    Mode
	errMsg  string
	infoMsg string

	infoExpire  time.Time
	toastSeq    int
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool

	storeDirty        bool
	unsubscribe       func()
	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler
	bus      *command.Bus
}

// NewModel initialises the compose screen.
func NewModel(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	st := opts.Styles
	if st == nil {
		st = theme.Default()
	}
	m := &Model{
		ctx:           ctx,
		store:         opts.Store,
		weigher:       opts.Weigher,
		controller:    opts.Controller,
		picker:        opts.Picker,
		channel:       opts.Channel,
		notifications: opts.Notifications,
		strings:       opts.Strings,
		styles:        st,
		showFooter:    opts.ShowFooter,
		mode:          ModeCompose,
		bus:           command.New(),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}

	editor := textarea.New()
	editor.Placeholder = opts.Strings.Composer.Placeholder
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	// the weight meter flags long drafts; the editor must not cut them
	editor.CharLimit = 0
	editor.Focus()
	m.editor = editor

	m.meter = progress.New(
		progress.WithSolidFill(st.MeterColor),
		progress.WithoutPercentage(),
	)

	c := cursor.New()
	if st.Cursor != nil {
		c.Style = st.Cursor.Copy()
	}
	if st.Filter != nil {
		c.TextStyle = st.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c

	if m.store != nil {
		m.unsubscribe = m.store.OnChange(m.Refresh)
		m.syncEditor()
	}
	m.layout()
	m.registerHandlers()
	return m
}

// Refresh marks the editor stale so the next update resyncs it from the
// draft store.
func (m *Model) Refresh() {
	m.storeDirty = true
}

// Close detaches the model from the draft store.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Mode reports the active screen.
func (m *Model) Mode() Mode {
	return m.mode
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.channel != nil {
		cmds = append(cmds, waitForChannelEvent(m.channel))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if m.mode == ModeImagePicker {
		if cmd := m.updateFilterCursorModel(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}
	if m.mode == ModeCompose {
		if cmd := m.updateEditor(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):            m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):     m.handleWindowSizeMsg,
		reflect.TypeOf(channelEventMsg{}):       m.handleChannelEventMsg,
		reflect.TypeOf(channelDoneMsg{}):        m.handleChannelDoneMsg,
		reflect.TypeOf(imagepicker.LoadedMsg{}): m.handleImageLoadedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.storeDirty {
		m.storeDirty = false
		m.syncEditor()
	}
	m.syncMode()
	m.syncToast()
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// syncMode follows the picker: it opens from AttachImage and closes on
// choice or cancel.
func (m *Model) syncMode() {
	next := ModeCompose
	if m.picker != nil && m.picker.Active() {
		next = ModeImagePicker
	}
	if next == m.mode {
		return
	}
	m.mode = next
	events.UI.Mode(next.String())
	if next == ModeImagePicker {
		m.editor.Blur()
		m.filterCursorDirty = true
		return
	}
	m.editor.Focus()
}

// syncEditor copies the draft text into the editor when they diverge, which
// happens when the draft is cleared after a submit.
func (m *Model) syncEditor() {
	text := ""
	if status := m.store.WeightedStatus(); status != nil {
		text = status.Text
	}
	if m.editor.Value() == text {
		return
	}
	if text == "" {
		m.editor.Reset()
		return
	}
	m.editor.SetValue(text)
}

// syncToast shows the latest notification on the info line once.
func (m *Model) syncToast() {
	if m.notifications == nil {
		return
	}
	latest, ok := m.notifications.Latest()
	if !ok || latest.Seq == m.toastSeq {
		return
	}
	m.toastSeq = latest.Seq
	text := latest.Title
	if latest.Body != "" {
		text += ": " + latest.Body
	}
	if latest.Activatable {
		text += " (ctrl+n to open)"
	}
	m.setInfo(text)
	events.UI.Toast(latest.Seq, latest.Title)
}
