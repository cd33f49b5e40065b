package table

import (
	"reflect"
	"strings"
	"testing"

	"github.com/atomicstack/tweet-popup/internal/testutil"
)

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"ID", "WHEN", "TEXT"},
		{"1", "now", "hi"},
		{"12", "2 minutes ago", "hello"},
	}
	got := Format(rows, []Column{{Align: AlignRight}, {}, {}})
	want := []string{
		"ID  WHEN           TEXT",
		" 1  now            hi",
		"12  2 minutes ago  hello",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatMeasuresCells(t *testing.T) {
	rows := [][]string{
		{"日本", "x"},
		{"ab", "y"},
	}
	got := Format(rows, nil)
	want := []string{"日本  x", "ab    y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatTruncatesToMaxWidth(t *testing.T) {
	rows := [][]string{{"a very long status text", "end"}}
	got := Format(rows, []Column{{MaxWidth: 8}})
	if got[0] != "a very …  end" {
		t.Fatalf("expected truncated cell, got %q", got[0])
	}
}

func TestFormatShortRows(t *testing.T) {
	got := Format([][]string{{"a", "b"}, {"c"}}, nil)
	if got[1] != "c" {
		t.Fatalf("expected missing cells to render empty, got %q", got[1])
	}
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}

func TestFormatHistoryGolden(t *testing.T) {
	rows := [][]string{
		{"3 minutes ago", "posted", "hello world", "https://x/1"},
		{"2 hours ago", "failed", "[img] retry", "rate limited"},
	}
	lines := Format(rows, []Column{{Align: AlignRight}, {}, {MaxWidth: 48}, {}})
	testutil.AssertGolden(t, "table_history.golden", strings.Join(lines, "\n")+"\n")
}
