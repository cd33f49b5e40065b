package compose

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/atomicstack/tweet-popup/internal/browser"
	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/atomicstack/tweet-popup/internal/locale"
	"github.com/atomicstack/tweet-popup/internal/protocol"
)

type recordingTransport struct {
	sent    []channel.Envelope
	sendErr error
	in      chan channel.Envelope
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{in: make(chan channel.Envelope, 8)}
}

func (t *recordingTransport) Name() string { return "test" }

func (t *recordingTransport) Send(_ context.Context, env channel.Envelope) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, env)
	return nil
}

func (t *recordingTransport) Incoming() <-chan channel.Envelope { return t.in }

func (t *recordingTransport) Close() error { return nil }

type sentNotification struct {
	title, body string
	silent      bool
	onActivate  func()
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Send(title, body string, silent bool, onActivate func()) {
	n.sent = append(n.sent, sentNotification{title: title, body: body, silent: silent, onActivate: onActivate})
}

type stubPicker struct {
	image *draft.StatusImage
	calls int
}

func (p *stubPicker) Pick(fn func(*draft.StatusImage)) {
	p.calls++
	if p.image != nil {
		fn(p.image)
	}
}

type fixture struct {
	ctrl      *Controller
	store     draft.Store
	transport *recordingTransport
	bus       *channel.Channel
	notifier  *recordingNotifier
	picker    *stubPicker
	opened    []string
	refreshes int
}

var testToken = protocol.AccessTokenPair{Token: "tok", Secret: "sec"}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	strs, err := locale.Load("en")
	if err != nil {
		t.Fatalf("load strings: %v", err)
	}
	f := &fixture{
		store:     draft.NewStore(),
		transport: newRecordingTransport(),
		notifier:  &recordingNotifier{},
		picker:    &stubPicker{},
	}
	f.bus = channel.New(f.transport)
	f.ctrl = New(Options{
		Store:    f.store,
		Bus:      f.bus,
		Notifier: f.notifier,
		Opener: browser.Func(func(url string) error {
			f.opened = append(f.opened, url)
			return nil
		}),
		Picker:  f.picker,
		Strings: strs,
		Token:   testToken,
		Refresh: func() { f.refreshes++ },
	})
	return f
}

func (f *fixture) lastRequest(t *testing.T) (protocol.SubmissionRequest, map[string]json.RawMessage) {
	t.Helper()
	if len(f.transport.sent) == 0 {
		t.Fatalf("expected a request to be sent")
	}
	env := f.transport.sent[len(f.transport.sent)-1]
	if env.Name() != protocol.PostStatus {
		t.Fatalf("expected %s, got %s", protocol.PostStatus, env.Name())
	}
	var req protocol.SubmissionRequest
	if err := env.Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		t.Fatalf("decode raw request: %v", err)
	}
	return req, raw
}

func (f *fixture) emit(t *testing.T, name string, payload interface{}) int {
	t.Helper()
	env, err := channel.NewEnvelope(name, payload)
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	return f.bus.Dispatch(env)
}

func TestSubmitTextWithoutImage(t *testing.T) {
	f := newFixture(t)
	f.store.UpdateWeightedStatus(&draft.WeightedStatus{Text: "hello", Permillage: 20})

	req, err := f.ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := protocol.SubmissionRequest{AccessTokenPair: testToken, StatusText: "hello"}
	if !reflect.DeepEqual(req, want) {
		t.Fatalf("expected %+v, got %+v", want, req)
	}
	sent, raw := f.lastRequest(t)
	if !reflect.DeepEqual(sent, want) {
		t.Fatalf("expected wire request %+v, got %+v", want, sent)
	}
	if string(raw["imageData"]) != "null" {
		t.Fatalf("expected imageData null on the wire, got %s", raw["imageData"])
	}
	if f.store.WeightedStatus() != nil || f.store.StatusImage() != nil {
		t.Fatalf("expected draft cleared after submit")
	}
	if f.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", f.refreshes)
	}
}

func TestSubmitImageWithoutText(t *testing.T) {
	f := newFixture(t)
	f.store.SetStatusImage(&draft.StatusImage{Data: "b64...", Name: "cat.png"})

	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	req, raw := f.lastRequest(t)
	if req.StatusText != "" {
		t.Fatalf("expected empty status text, got %q", req.StatusText)
	}
	if string(raw["statusText"]) != `""` {
		t.Fatalf("expected statusText to be sent as empty string, got %s", raw["statusText"])
	}
	if req.ImageData == nil || *req.ImageData != "b64..." {
		t.Fatalf("expected image data b64..., got %v", req.ImageData)
	}
	if f.store.WeightedStatus() != nil || f.store.StatusImage() != nil {
		t.Fatalf("expected draft cleared after submit")
	}
}

func TestSubmitEmptyDraft(t *testing.T) {
	f := newFixture(t)
	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	req, _ := f.lastRequest(t)
	if req.StatusText != "" || req.ImageData != nil {
		t.Fatalf("expected empty request, got %+v", req)
	}
	if req.AccessTokenPair != testToken {
		t.Fatalf("expected token passed through, got %+v", req.AccessTokenPair)
	}
}

func TestRapidSecondSubmitDoesNotReuseDraft(t *testing.T) {
	f := newFixture(t)
	f.store.UpdateWeightedStatus(&draft.WeightedStatus{Text: "first", Permillage: 18})
	f.store.SetStatusImage(&draft.StatusImage{Data: "img"})

	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if len(f.transport.sent) != 2 {
		t.Fatalf("expected two independent requests, got %d", len(f.transport.sent))
	}
	req, _ := f.lastRequest(t)
	if req.StatusText != "" || req.ImageData != nil {
		t.Fatalf("expected second request to carry no stale draft, got %+v", req)
	}
}

func TestSubmitSendErrorStillClearsAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.transport.sendErr = errors.New("broken pipe")
	f.store.UpdateWeightedStatus(&draft.WeightedStatus{Text: "lost", Permillage: 14})

	if _, err := f.ctrl.Submit(context.Background()); err == nil {
		t.Fatalf("expected send error")
	}
	if f.store.WeightedStatus() != nil {
		t.Fatalf("expected draft cleared even when send fails")
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one failure notification, got %d", len(f.notifier.sent))
	}
	if f.notifier.sent[0].title != f.ctrl.strings.PostStatusError.Title {
		t.Fatalf("expected failure title, got %q", f.notifier.sent[0].title)
	}
}

func TestShortcutSubmitMatchesUserSubmit(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Activate(context.Background())
	defer f.ctrl.Deactivate()

	status := &draft.WeightedStatus{Text: "same", Permillage: 14}
	image := &draft.StatusImage{Data: "pix"}

	f.store.UpdateWeightedStatus(status)
	f.store.SetStatusImage(image)
	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	direct, directRaw := f.lastRequest(t)

	f.store.UpdateWeightedStatus(status)
	f.store.SetStatusImage(image)
	if n := f.emit(t, protocol.SendTweetShortcut, nil); n != 1 {
		t.Fatalf("expected shortcut handler to run once, got %d", n)
	}
	viaShortcut, shortcutRaw := f.lastRequest(t)

	if !reflect.DeepEqual(direct, viaShortcut) {
		t.Fatalf("expected identical requests, got %+v and %+v", direct, viaShortcut)
	}
	if !reflect.DeepEqual(directRaw, shortcutRaw) {
		t.Fatalf("expected identical wire shape, got %v and %v", directRaw, shortcutRaw)
	}
	if f.store.WeightedStatus() != nil || f.store.StatusImage() != nil {
		t.Fatalf("expected shortcut submit to clear the draft")
	}
}

func TestCompleteNotificationOpensStatusURL(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Activate(context.Background())
	defer f.ctrl.Deactivate()

	f.emit(t, protocol.PostStatusComplete, map[string]interface{}{
		"id_str": "123",
		"user":   map[string]interface{}{"screen_name": "alice"},
	})
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.sent))
	}
	n := f.notifier.sent[0]
	if n.silent {
		t.Fatalf("expected audible success notification")
	}
	if n.title != f.ctrl.strings.PostStatusSuccess.Title || n.body != f.ctrl.strings.PostStatusSuccess.Description {
		t.Fatalf("expected success strings, got %q / %q", n.title, n.body)
	}
	if len(f.opened) != 0 {
		t.Fatalf("expected nothing opened before activation, got %v", f.opened)
	}
	if n.onActivate == nil {
		t.Fatalf("expected activation callback")
	}
	n.onActivate()
	if len(f.opened) != 1 || f.opened[0] != "https://twitter.com/alice/status/123" {
		t.Fatalf("expected https://twitter.com/alice/status/123, got %v", f.opened)
	}
}

func TestCompleteNotificationUsesConfiguredHost(t *testing.T) {
	f := newFixture(t)
	f.ctrl.host = "x.com"
	f.ctrl.Activate(context.Background())
	defer f.ctrl.Deactivate()

	f.emit(t, protocol.PostStatusComplete, protocol.PostStatusCompleteEvent{IDStr: "9", User: protocol.User{ScreenName: "bob"}})
	f.notifier.sent[0].onActivate()
	if len(f.opened) != 1 || f.opened[0] != "https://x.com/bob/status/9" {
		t.Fatalf("expected x.com url, got %v", f.opened)
	}
}

func TestErrorEventNotifiesOnceAndKeepsDraftCleared(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Activate(context.Background())
	defer f.ctrl.Deactivate()

	f.store.UpdateWeightedStatus(&draft.WeightedStatus{Text: "doomed", Permillage: 21})
	f.store.SetStatusImage(&draft.StatusImage{Data: "img"})
	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	f.emit(t, protocol.PostStatusError, nil)
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected exactly one failure notification, got %d", len(f.notifier.sent))
	}
	n := f.notifier.sent[0]
	if n.silent || n.onActivate != nil {
		t.Fatalf("expected audible notification without callback, got %+v", n)
	}
	if n.title != f.ctrl.strings.PostStatusError.Title {
		t.Fatalf("expected failure title, got %q", n.title)
	}
	if f.store.WeightedStatus() != nil || f.store.StatusImage() != nil {
		t.Fatalf("expected draft to stay cleared after failure")
	}
	if len(f.transport.sent) != 1 {
		t.Fatalf("expected no retry, got %d requests", len(f.transport.sent))
	}
}

func TestRemoveImageIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.store.UpdateWeightedStatus(&draft.WeightedStatus{Text: "keep", Permillage: 14})
	f.store.SetStatusImage(&draft.StatusImage{Data: "img"})

	f.ctrl.RemoveImage()
	once := [2]interface{}{f.store.WeightedStatus(), f.store.StatusImage()}
	f.ctrl.RemoveImage()
	twice := [2]interface{}{f.store.WeightedStatus(), f.store.StatusImage()}

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected same state, got %v and %v", once, twice)
	}
	if f.store.StatusImage() != nil {
		t.Fatalf("expected image removed")
	}
	if got := f.store.WeightedStatus(); got == nil || got.Text != "keep" {
		t.Fatalf("expected text untouched, got %+v", got)
	}
}

func TestAttachImageReplacesExisting(t *testing.T) {
	f := newFixture(t)
	f.store.SetStatusImage(&draft.StatusImage{Data: "old", Name: "old.png"})
	f.picker.image = &draft.StatusImage{Data: "new", Name: "new.png"}

	f.ctrl.AttachImage()
	got := f.store.StatusImage()
	if got == nil || got.Data != "new" {
		t.Fatalf("expected new image attached, got %+v", got)
	}
}

func TestAttachImageCancelIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.store.SetStatusImage(&draft.StatusImage{Data: "keep"})
	changes := 0
	unsubscribe := f.store.OnChange(func() { changes++ })
	defer unsubscribe()

	f.ctrl.AttachImage()
	if f.picker.calls != 1 {
		t.Fatalf("expected picker to open once, got %d", f.picker.calls)
	}
	if changes != 0 {
		t.Fatalf("expected no store mutation on cancel, got %d", changes)
	}
	if got := f.store.StatusImage(); got == nil || got.Data != "keep" {
		t.Fatalf("expected existing image kept, got %+v", got)
	}
}

func TestDeactivateReleasesSubscriptions(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Activate(context.Background())
	f.ctrl.Activate(context.Background())
	if !f.ctrl.Active() {
		t.Fatalf("expected controller active")
	}
	f.ctrl.Deactivate()
	f.ctrl.Deactivate()
	if f.ctrl.Active() {
		t.Fatalf("expected controller inactive")
	}
	for _, name := range []string{protocol.PostStatusError, protocol.PostStatusComplete, protocol.SendTweetShortcut} {
		if n := f.emit(t, name, nil); n != 0 {
			t.Fatalf("expected no handlers for %s after deactivate, got %d", name, n)
		}
	}
	if len(f.notifier.sent) != 0 || len(f.transport.sent) != 0 {
		t.Fatalf("expected no side effects after deactivate")
	}
}

func TestActivateTwiceSubscribesOnce(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Activate(context.Background())
	f.ctrl.Activate(context.Background())
	defer f.ctrl.Deactivate()
	if n := f.emit(t, protocol.PostStatusError, nil); n != 1 {
		t.Fatalf("expected one handler, got %d", n)
	}
}
