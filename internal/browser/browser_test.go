package browser

import "testing"

func TestOpenExternalRejectsNonWebURLs(t *testing.T) {
	for _, url := range []string{"file:///etc/passwd", "javascript:alert(1)", ""} {
		if err := (System{}).OpenExternal(url); err == nil {
			t.Fatalf("expected %q to be rejected", url)
		}
	}
}

func TestFuncAdapter(t *testing.T) {
	var opened string
	var o Opener = Func(func(url string) error {
		opened = url
		return nil
	})
	if err := o.OpenExternal("https://twitter.com/alice/status/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opened != "https://twitter.com/alice/status/1" {
		t.Fatalf("expected url passed through, got %q", opened)
	}
}
