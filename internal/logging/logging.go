package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "tweet-popup.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	component    string
	logPath      = defaultLogFile
)

// Error appends err to the shared log file. Nil errors are ignored.
func Error(err error) {
	if err == nil {
		return
	}
	write(err.Error())
}

// Errorf formats and appends a line to the shared log file.
func Errorf(format string, args ...interface{}) {
	write(fmt.Sprintf(format, args...))
}

func write(line string) {
	mu.Lock()
	path := logPath
	prefix := component
	mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return
	}
	defer f.Close()

	logger := log.New(f, "", log.LstdFlags)
	if prefix != "" {
		logger.SetPrefix(prefix + " ")
	}
	logger.Println(line)
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// SetComponent tags every subsequent entry with the emitting process role
// ("compose", "poster", ...). The compose screen and its poster child share
// one log file, so the tag is how their lines are told apart.
func SetComponent(name string) {
	mu.Lock()
	component = strings.TrimSpace(name)
	mu.Unlock()
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	path := logPath
	comp := component
	mu.Unlock()
	if !enabled {
		return
	}

	entry := struct {
		Time      time.Time   `json:"time"`
		Component string      `json:"component,omitempty"`
		Event     string      `json:"event"`
		Payload   interface{} `json:"payload,omitempty"`
	}{
		Time:      time.Now().UTC(),
		Component: comp,
		Event:     event,
		Payload:   payload,
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
	}
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Path returns the active log destination.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}
