package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "trace.log")
	Configure(path)
	t.Cleanup(func() {
		Configure("")
		SetTraceEnabled(false)
		SetComponent("")
	})
	return path
}

func TestTraceWritesJSONOnlyWhenEnabled(t *testing.T) {
	path := useTempLog(t)

	Trace("ignored", nil)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no log file while tracing disabled, got err=%v", err)
	}

	SetTraceEnabled(true)
	SetComponent("poster")
	Trace("compose.submit", map[string]interface{}{"chars": 5})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry struct {
		Event     string                 `json:"event"`
		Component string                 `json:"component"`
		Payload   map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("expected JSON trace entry, got %q: %v", string(data), err)
	}
	if entry.Event != "compose.submit" {
		t.Fatalf("expected event compose.submit, got %q", entry.Event)
	}
	if entry.Component != "poster" {
		t.Fatalf("expected component poster, got %q", entry.Component)
	}
	if entry.Payload["chars"] != float64(5) {
		t.Fatalf("expected chars payload 5, got %v", entry.Payload["chars"])
	}
}

func TestErrorAppendsLine(t *testing.T) {
	path := useTempLog(t)

	Error(nil)
	Error(errors.New("boom"))
	Errorf("post %s failed", "123")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "boom") || !strings.Contains(text, "post 123 failed") {
		t.Fatalf("expected both lines in log, got %q", text)
	}
	if got := strings.Count(strings.TrimSpace(text), "\n"); got != 1 {
		t.Fatalf("expected exactly two lines, got %q", text)
	}
}

func TestConfigureEmptyFallsBackToDefault(t *testing.T) {
	useTempLog(t)
	Configure("   ")
	if Path() != defaultLogFile {
		t.Fatalf("expected default log path, got %q", Path())
	}
}
