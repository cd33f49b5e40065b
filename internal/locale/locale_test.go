package locale

import (
	"errors"
	"strings"
	"testing"
)

func TestEveryBundleLoads(t *testing.T) {
	langs := Languages()
	if len(langs) < 2 {
		t.Fatalf("expected at least two bundles, got %v", langs)
	}
	for _, lang := range langs {
		if _, err := Load(lang); err != nil {
			t.Fatalf("bundle %s: %v", lang, err)
		}
	}
}

func TestLoadDefaultsToEnglish(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Composer.TweetButton != "Tweet" {
		t.Fatalf("expected english button label, got %q", s.Composer.TweetButton)
	}
}

func TestUnknownLanguage(t *testing.T) {
	_, err := Load("xx")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
}

func TestParseReportsMissingKeys(t *testing.T) {
	_, err := Parse([]byte("composer:\n  title: Hi\n  placeholder: Type\n  tweet_button: Go\npost_status_error:\n  title: Bad\n"))
	if err == nil {
		t.Fatalf("expected missing keys error")
	}
	msg := err.Error()
	for _, key := range []string{"post_status_error.description", "post_status_success.title", "post_status_success.description"} {
		if !strings.Contains(msg, key) {
			t.Fatalf("expected %s in %q", key, msg)
		}
	}
	if strings.Contains(msg, "composer.title") {
		t.Fatalf("expected present keys to be omitted, got %q", msg)
	}
}

func TestMustLoadPanicsOnUnknownLanguage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLoad("zz")
}
