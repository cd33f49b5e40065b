package weight

import (
	"strings"
	"testing"
)

func TestWeighEmptyClearsDraft(t *testing.T) {
	if got := New().Weigh(""); got != nil {
		t.Fatalf("expected nil status for empty text, got %#v", got)
	}
}

func TestPermillage(t *testing.T) {
	w := New()
	tests := []struct {
		name string
		text string
		want int
	}{
		{"ascii", "hello", 17},
		{"full ascii", strings.Repeat("a", 280), 1000},
		{"over limit cjk", strings.Repeat("日", 141), 1007},
		{"single url", "https://example.com/a/very/long/path/that/keeps/going", 82},
		{"emoji family counts once", "👨‍👩‍👧", 7},
		{"flag counts once", "🇯🇵", 7},
		{"combining accent normalises", "e\u0301", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Permillage(tt.text); got != tt.want {
				t.Fatalf("expected permillage %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWeighKeepsText(t *testing.T) {
	got := New().Weigh("hello")
	if got == nil || got.Text != "hello" || got.Permillage != 17 {
		t.Fatalf("unexpected weighted status %#v", got)
	}
}

func TestLength(t *testing.T) {
	w := New()
	if got := w.Length("see https://go.dev now"); got != 4+23+4 {
		t.Fatalf("expected url-shortened length 31, got %d", got)
	}
	if got := w.Length("日本"); got != 4 {
		t.Fatalf("expected CJK chars to weigh two each, got %d", got)
	}
}

func TestZeroValueWeigherUsesDefaults(t *testing.T) {
	var w Weigher
	if got := w.Permillage(strings.Repeat("a", 140)); got != 500 {
		t.Fatalf("expected defaults to apply, got %d", got)
	}
}
