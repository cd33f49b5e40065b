package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/atomicstack/tweet-popup/internal/app"
	"github.com/atomicstack/tweet-popup/internal/config"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configError marks failures that exit with status 2.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func main() {
	root := newRootCommand(os.Args[1:], os.Environ())
	if err := root.Execute(); err != nil {
		var cfgErr configError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(2)
		}
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. The root command opens the compose
// screen; subcommands run the poster, trigger the send shortcut, and list
// past posts.
func newRootCommand(argv, environ []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "tweet-popup",
		Short:         "Compose and send a post from a terminal popup",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	root.SetArgs(argv)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return configError{err}
	})
	values := config.Register(root.PersistentFlags(), environ)

	root.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(values, argv, config.ValidateCompose)
		if err != nil {
			return err
		}
		return app.Run(cfg.App)
	}

	var serveStdio bool
	posterCmd := &cobra.Command{
		Use:   "poster",
		Short: "Serve post requests from the compose screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(values, argv, config.ValidatePoster)
			if err != nil {
				return err
			}
			return app.RunPoster(cfg.App, serveStdio)
		},
	}
	posterCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve on stdin/stdout, as when spawned by the compose screen")

	shortcutCmd := &cobra.Command{
		Use:   "shortcut",
		Short: "Ask the running compose screen to send its draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(values, argv)
			if err != nil {
				return err
			}
			return app.RunShortcut(cfg.App)
		},
	}

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return configError{fmt.Errorf("limit must be >= 0 (got %d)", limit)}
			}
			cfg, err := setup(values, argv)
			if err != nil {
				return err
			}
			return app.RunHistory(cfg.App, limit, cmd.OutOrStdout())
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of posts to show")

	root.AddCommand(posterCmd, shortcutCmd, historyCmd)
	return root
}

// setup resolves and validates configuration, then configures logging.
func setup(values *config.Values, argv []string, checks ...func(config.Config) error) (config.Config, error) {
	cfg, err := values.Resolve(argv)
	if err != nil {
		return config.Config{}, configError{err}
	}
	checks = append([]func(config.Config) error{config.Validate}, checks...)
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return config.Config{}, configError{err}
		}
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	traceStartup(cfg)
	return cfg, nil
}

func traceStartup(cfg config.Config) {
	if !logging.TraceEnabled() {
		return
	}
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging. Secrets
// are masked before they reach the log.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":    cfg.Args,
		"flags":   flags,
		"config":  cfg.Redacted(),
		"version": version,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
