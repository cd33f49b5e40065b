package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/tweet-popup/internal/browser"
	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/channel/local"
	"github.com/atomicstack/tweet-popup/internal/compose"
	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/atomicstack/tweet-popup/internal/imagepicker"
	"github.com/atomicstack/tweet-popup/internal/locale"
	"github.com/atomicstack/tweet-popup/internal/notify"
	"github.com/atomicstack/tweet-popup/internal/protocol"
	"github.com/atomicstack/tweet-popup/internal/testutil"
	"github.com/atomicstack/tweet-popup/internal/weight"
)

type composeFixture struct {
	store   draft.Store
	poster  *local.Transport
	harness *Harness
	opened  []string
}

func newComposeFixture(t *testing.T, imageDir string) *composeFixture {
	t.Helper()
	strs, err := locale.Load("en")
	if err != nil {
		t.Fatalf("load locale: %v", err)
	}
	uiEnd, posterEnd := local.Pipe()
	ch := channel.New(uiEnd)
	t.Cleanup(func() { _ = ch.Close() })

	notifier := notify.New()
	notifier.SetNotifier(func(string, string, any) error { return nil })

	f := &composeFixture{store: draft.NewStore(), poster: posterEnd}
	picker := imagepicker.New(imageDir)
	ctrl := compose.New(compose.Options{
		Store:    f.store,
		Bus:      ch,
		Notifier: notifier,
		Opener: browser.Func(func(url string) error {
			f.opened = append(f.opened, url)
			return nil
		}),
		Picker:  picker,
		Strings: strs,
		Token:   protocol.AccessTokenPair{Token: "tok", Secret: "sec"},
	})
	ctrl.Activate(context.Background())
	t.Cleanup(ctrl.Deactivate)

	m := NewModel(Options{
		Store:         f.store,
		Weigher:       weight.New(),
		Controller:    ctrl,
		Picker:        picker,
		Channel:       ch,
		Notifications: notifier,
		Strings:       strs,
		Width:         80,
		Height:        24,
		ShowFooter:    true,
	})
	t.Cleanup(m.Close)
	f.harness = NewHarness(m)
	return f
}

func (f *composeFixture) receive(t *testing.T) channel.Envelope {
	t.Helper()
	return testutil.Receive(t, f.poster.Incoming(), "request")
}

func (f *composeFixture) deliver(t *testing.T, name string, payload interface{}) {
	t.Helper()
	env, err := channel.NewEnvelope(name, payload)
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	f.harness.Send(channelEventMsg{env: env})
}

func TestComposeSubmitReachesPosterAndCompletes(t *testing.T) {
	f := newComposeFixture(t, t.TempDir())
	f.harness.Type("hello")
	f.harness.Key("ctrl+s")

	env := f.receive(t)
	if env.Name() != protocol.PostStatus {
		t.Fatalf("expected %s, got %s", protocol.PostStatus, env.Name())
	}
	var req protocol.SubmissionRequest
	if err := env.Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.StatusText != "hello" || req.ImageData != nil {
		t.Fatalf("unexpected request %#v", req)
	}
	if req.AccessTokenPair.Token != "tok" {
		t.Fatalf("expected token passed through, got %#v", req.AccessTokenPair)
	}
	if f.store.WeightedStatus() != nil {
		t.Fatalf("expected draft cleared after submit")
	}

	f.deliver(t, protocol.PostStatusComplete, protocol.PostStatusCompleteEvent{
		IDStr: "123",
		User:  protocol.User{ScreenName: "alice"},
	})
	if view := testutil.Plain(f.harness.View()); !strings.Contains(view, "Tweet sent") {
		t.Fatalf("expected success toast, got:\n%s", view)
	}
	f.harness.Key("ctrl+n")
	if len(f.opened) != 1 || f.opened[0] != "https://twitter.com/alice/status/123" {
		t.Fatalf("expected status url opened, got %v", f.opened)
	}
}

func TestComposeErrorEventShowsFailureToast(t *testing.T) {
	f := newComposeFixture(t, t.TempDir())
	f.deliver(t, protocol.PostStatusError, protocol.PostStatusErrorEvent{Message: "rate limited"})
	if view := testutil.Plain(f.harness.View()); !strings.Contains(view, "Tweet failed") {
		t.Fatalf("expected failure toast, got:\n%s", view)
	}
}

func TestComposeShortcutSubmitsDraft(t *testing.T) {
	f := newComposeFixture(t, t.TempDir())
	f.harness.Type("via shortcut")
	f.deliver(t, protocol.SendTweetShortcut, struct{}{})

	env := f.receive(t)
	var req protocol.SubmissionRequest
	if err := env.Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.StatusText != "via shortcut" {
		t.Fatalf("expected shortcut to send the draft, got %q", req.StatusText)
	}
	if got := f.harness.Model().editor.Value(); got != "" {
		t.Fatalf("expected editor cleared, got %q", got)
	}
}

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	data := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImagePickerAttachesChosenFile(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "cat.png")
	writeImage(t, dir, "dog.png")
	f := newComposeFixture(t, dir)

	f.harness.Key("ctrl+o")
	if f.harness.Model().Mode() != ModeImagePicker {
		t.Fatalf("expected picker mode after ctrl+o")
	}
	if view := testutil.Plain(f.harness.View()); !strings.Contains(view, "cat.png") || !strings.Contains(view, "dog.png") {
		t.Fatalf("expected both images listed, got:\n%s", view)
	}

	f.harness.Type("dog")
	lvl := f.harness.Model().pickerLevel()
	if lvl == nil || len(lvl.Items) != 1 || lvl.Items[0].Label != "dog.png" {
		t.Fatalf("expected filter to leave dog.png, got %#v", lvl)
	}

	f.harness.Key("enter")
	if f.harness.Model().Mode() != ModeCompose {
		t.Fatalf("expected compose mode after choosing")
	}
	image := f.store.StatusImage()
	if image == nil || image.Name != "dog.png" {
		t.Fatalf("expected dog.png attached, got %#v", image)
	}
	if view := testutil.Plain(f.harness.View()); !strings.Contains(view, "Image: dog.png") {
		t.Fatalf("expected image line, got:\n%s", view)
	}

	f.harness.Key("ctrl+x")
	if f.store.StatusImage() != nil {
		t.Fatalf("expected image removed")
	}
}

func TestImagePickerEscCancels(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "cat.png")
	f := newComposeFixture(t, dir)

	f.harness.Key("ctrl+o")
	f.harness.Key("esc")
	if f.harness.Model().Mode() != ModeCompose {
		t.Fatalf("expected compose mode after cancel")
	}
	if f.harness.Quit() {
		t.Fatalf("expected esc in picker to cancel, not quit")
	}
	if f.store.StatusImage() != nil {
		t.Fatalf("expected no image after cancel")
	}
}

func TestImagePickerShowsLoadError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fake.png"), []byte("not an image at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := newComposeFixture(t, dir)

	f.harness.Key("ctrl+o")
	f.harness.Key("enter")
	if f.harness.Model().Mode() != ModeImagePicker {
		t.Fatalf("expected picker to stay open on load error")
	}
	if view := testutil.Plain(f.harness.View()); !strings.Contains(view, "Error:") {
		t.Fatalf("expected load error in view, got:\n%s", view)
	}
}
