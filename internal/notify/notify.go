// Package notify dispatches desktop notifications. It uses the beeep library
// to reach the platform notifier on macOS, Linux, and Windows.
//
// Desktop notifications sent from a terminal cannot report clicks back, so
// the dispatcher also remembers the most recent notification; the compose
// screen binds a key to Activate, which runs that notification's callback.
package notify

import (
	"sync"
	"time"

	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/gen2brain/beeep"
)

// NotifierFunc delivers a notification to the desktop.
type NotifierFunc func(title, message string, icon any) error

// Notification is a dispatched notification.
type Notification struct {
	Seq         int
	Title       string
	Body        string
	Silent      bool
	Activatable bool
	SentAt      time.Time
}

// Dispatcher sends notifications and tracks the latest one for activation.
type Dispatcher struct {
	mu       sync.Mutex
	notify   NotifierFunc
	alert    NotifierFunc
	latest   Notification
	callback func()
	wg       sync.WaitGroup
}

// New returns a dispatcher backed by beeep.
func New() *Dispatcher {
	return &Dispatcher{
		notify: beeep.Notify,
		alert:  beeep.Alert,
	}
}

// SetNotifier replaces both delivery functions. Used by tests.
func (d *Dispatcher) SetNotifier(fn NotifierFunc) {
	d.mu.Lock()
	d.notify = fn
	d.alert = fn
	d.mu.Unlock()
}

// Send shows a notification. Non-silent notifications use the alert path,
// which plays the platform sound. onActivate may be nil. Send never blocks
// on the desktop call.
func (d *Dispatcher) Send(title, body string, silent bool, onActivate func()) {
	d.mu.Lock()
	d.latest = Notification{
		Seq:         d.latest.Seq + 1,
		Title:       title,
		Body:        body,
		Silent:      silent,
		Activatable: onActivate != nil,
		SentAt:      time.Now(),
	}
	d.callback = onActivate
	deliver := d.alert
	if silent {
		deliver = d.notify
	}
	d.mu.Unlock()

	events.Notify.Dispatch(title, silent, onActivate != nil)
	if deliver == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := deliver(title, body, ""); err != nil {
			events.Notify.Error(err)
			logging.Errorf("notification %q failed: %v", title, err)
		}
	}()
}

// Latest returns the most recent notification, if any.
func (d *Dispatcher) Latest() (Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest, d.latest.Seq > 0
}

// Activate runs the latest notification's callback. A callback runs at most
// once; it reports whether one ran.
func (d *Dispatcher) Activate() bool {
	d.mu.Lock()
	fn := d.callback
	d.callback = nil
	title := d.latest.Title
	if fn != nil {
		d.latest.Activatable = false
	}
	d.mu.Unlock()
	events.Notify.Activate(title, fn != nil)
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Wait blocks until in-flight desktop deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
