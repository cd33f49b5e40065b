// Package compose holds the compose screen's controller: it turns user
// actions and background channel events into draft mutations, submission
// requests and notifications.
//
// The controller owns no draft state. Text and image live in a draft.Store
// handed in by the application, and every mutation goes through the store's
// setters. All methods are expected to run on the UI loop; channel handlers
// are invoked from Channel.Dispatch on that same loop.
package compose

import (
	"context"
	"sync"

	"github.com/atomicstack/tweet-popup/internal/browser"
	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/atomicstack/tweet-popup/internal/locale"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/atomicstack/tweet-popup/internal/protocol"
)

// Submission sources, recorded in traces only.
const (
	SourceUser     = "user"
	SourceShortcut = "shortcut"
)

// Bus is the part of channel.Channel the controller needs.
type Bus interface {
	Send(ctx context.Context, name string, payload interface{}) (channel.Envelope, error)
	Subscribe(name string, h channel.Handler) *channel.Subscription
}

// Notifier shows a notification. onActivate may be nil.
type Notifier interface {
	Send(title, body string, silent bool, onActivate func())
}

// Picker asks the user for an image. The callback is invoked only when an
// image was chosen.
type Picker interface {
	Pick(func(*draft.StatusImage))
}

// Options wires a Controller to its collaborators.
type Options struct {
	Store    draft.Store
	Bus      Bus
	Notifier Notifier
	Opener   browser.Opener
	Picker   Picker
	Strings  locale.Strings
	Token    protocol.AccessTokenPair
	Host     string
	// Refresh is called after a submit so the render layer redraws even when
	// it missed the store's change notification.
	Refresh func()
}

// Controller mediates between user actions, the draft store and the
// background channel.
type Controller struct {
	store    draft.Store
	bus      Bus
	notifier Notifier
	opener   browser.Opener
	picker   Picker
	strings  locale.Strings
	token    protocol.AccessTokenPair
	host     string
	refresh  func()

	mu   sync.Mutex
	ctx  context.Context
	subs []*channel.Subscription
}

// New returns a controller. Store, Bus and Notifier are required.
func New(opts Options) *Controller {
	if opts.Store == nil || opts.Bus == nil || opts.Notifier == nil {
		panic("compose: store, bus and notifier are required")
	}
	host := opts.Host
	if host == "" {
		host = protocol.DefaultHost
	}
	opener := opts.Opener
	if opener == nil {
		opener = browser.System{}
	}
	return &Controller{
		store:    opts.Store,
		bus:      opts.Bus,
		notifier: opts.Notifier,
		opener:   opener,
		picker:   opts.Picker,
		strings:  opts.Strings,
		token:    opts.Token,
		host:     host,
		refresh:  opts.Refresh,
		ctx:      context.Background(),
	}
}

// Activate subscribes to the poster's outcome events and the shortcut
// relay. ctx is used for shortcut-triggered submits. Calling Activate on an
// active controller does nothing.
func (c *Controller) Activate(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) > 0 {
		return
	}
	c.ctx = ctx
	c.subs = []*channel.Subscription{
		c.bus.Subscribe(protocol.PostStatusError, c.handleError),
		c.bus.Subscribe(protocol.PostStatusComplete, c.handleComplete),
		c.bus.Subscribe(protocol.SendTweetShortcut, c.handleShortcut),
	}
	names := make([]string, 0, len(c.subs))
	for _, sub := range c.subs {
		names = append(names, sub.Name())
	}
	events.Compose.Activate(names)
}

// Deactivate releases every subscription. Safe to call more than once and
// on a controller that was never activated.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Close()
	}
	events.Compose.Deactivate(len(subs))
}

// Active reports whether subscriptions are held.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs) > 0
}

// AttachImage opens the picker. A chosen image replaces any attached one;
// cancelling leaves the draft untouched.
func (c *Controller) AttachImage() {
	if c.picker == nil {
		logging.Errorf("compose: attach requested without an image picker")
		return
	}
	c.picker.Pick(func(image *draft.StatusImage) {
		if image == nil {
			events.Compose.PickCancelled()
			return
		}
		c.store.SetStatusImage(image)
		events.Compose.ImageAttached(image.Name, image.Size)
	})
}

// RemoveImage detaches the image, if any.
func (c *Controller) RemoveImage() {
	had := c.store.StatusImage() != nil
	c.store.SetStatusImage(nil)
	events.Compose.ImageRemoved(had)
}

// Submit sends the current draft to the poster and clears it. The draft is
// cleared before Submit returns whether or not the send succeeded; a send
// error is also reported through the failure notification.
func (c *Controller) Submit(ctx context.Context) (protocol.SubmissionRequest, error) {
	return c.submit(ctx, SourceUser)
}

func (c *Controller) submit(ctx context.Context, source string) (protocol.SubmissionRequest, error) {
	req := c.buildRequest()
	events.Compose.Submit(source, len(req.StatusText), req.ImageData != nil)

	_, err := c.bus.Send(ctx, protocol.PostStatus, req)

	c.store.SetStatusImage(nil)
	c.store.UpdateWeightedStatus(nil)
	if c.refresh != nil {
		c.refresh()
	}

	if err != nil {
		logging.Error(err)
		c.notifyFailure()
		return req, err
	}
	return req, nil
}

// BuildRequest returns the request Submit would send for the current draft.
func (c *Controller) BuildRequest() protocol.SubmissionRequest {
	return c.buildRequest()
}

func (c *Controller) buildRequest() protocol.SubmissionRequest {
	req := protocol.SubmissionRequest{AccessTokenPair: c.token}
	if status := c.store.WeightedStatus(); status != nil {
		req.StatusText = status.Text
	}
	if image := c.store.StatusImage(); image != nil {
		data := image.Data
		req.ImageData = &data
	}
	return req
}

func (c *Controller) handleError(env channel.Envelope) {
	var payload protocol.PostStatusErrorEvent
	if err := env.Decode(&payload); err != nil {
		logging.Error(err)
	}
	if payload.Message != "" {
		logging.Errorf("post failed: %s", payload.Message)
	}
	c.notifyFailure()
}

func (c *Controller) notifyFailure() {
	msg := c.strings.PostStatusError
	c.notifier.Send(msg.Title, msg.Description, false, nil)
}

func (c *Controller) handleComplete(env channel.Envelope) {
	var payload protocol.PostStatusCompleteEvent
	if err := env.Decode(&payload); err != nil {
		logging.Error(err)
	}
	msg := c.strings.PostStatusSuccess
	var onActivate func()
	if payload.IDStr != "" && payload.User.ScreenName != "" {
		url := protocol.StatusURL(c.host, payload.User.ScreenName, payload.IDStr)
		onActivate = func() {
			if err := c.opener.OpenExternal(url); err != nil {
				logging.Error(err)
			}
		}
	}
	c.notifier.Send(msg.Title, msg.Description, false, onActivate)
}

func (c *Controller) handleShortcut(channel.Envelope) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	_, _ = c.submit(ctx, SourceShortcut)
}
