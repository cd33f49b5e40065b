package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomicstack/tweet-popup/internal/browser"
	"github.com/atomicstack/tweet-popup/internal/compose"
	"github.com/atomicstack/tweet-popup/internal/draft"
	"github.com/atomicstack/tweet-popup/internal/imagepicker"
	"github.com/atomicstack/tweet-popup/internal/locale"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/notify"
	"github.com/atomicstack/tweet-popup/internal/protocol"
	"github.com/atomicstack/tweet-popup/internal/theme"
	"github.com/atomicstack/tweet-popup/internal/ui"
	"github.com/atomicstack/tweet-popup/internal/weight"
	tea "github.com/charmbracelet/bubbletea"
)

// Transport names accepted by Config.Transport.
const (
	TransportStdio = "stdio"
	TransportLocal = "local"
	TransportAMQP  = "amqp"
)

// Credentials are the OAuth1 keys. Consumer keys are read by the poster;
// the access token travels with each request.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Redacted masks every set value.
func (c Credentials) Redacted() Credentials {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	return Credentials{
		ConsumerKey:    mask(c.ConsumerKey),
		ConsumerSecret: mask(c.ConsumerSecret),
		AccessToken:    mask(c.AccessToken),
		AccessSecret:   mask(c.AccessSecret),
	}
}

// Config describes user-provided application options.
type Config struct {
	Transport    string
	AMQPURL      string
	AMQPExchange string
	Host         string
	Lang         string
	Theme        string
	ImageDir     string
	Width        int
	Height       int
	ShowFooter   bool
	DryRun       bool
	HistoryDB    string
	PIDFile      string
	LogFile      string
	Trace        bool
	Credentials  Credentials
}

// Run bootstraps and executes the compose screen.
func Run(cfg Config) error {
	strs, err := locale.Load(cfg.Lang)
	if err != nil {
		return fmt.Errorf("load strings: %w", err)
	}
	styles, err := theme.ForName(cfg.Theme)
	if err != nil {
		return err
	}
	logging.SetComponent("compose")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, closeChannel, err := openComposeChannel(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeChannel()

	store := draft.NewStore()
	notifier := notify.New()
	defer notifier.Wait()
	picker := imagepicker.New(cfg.ImageDir)

	var model *ui.Model
	ctrl := compose.New(compose.Options{
		Store:    store,
		Bus:      ch,
		Notifier: notifier,
		Opener:   browser.System{},
		Picker:   picker,
		Strings:  strs,
		Token: protocol.AccessTokenPair{
			Token:  cfg.Credentials.AccessToken,
			Secret: cfg.Credentials.AccessSecret,
		},
		Host: cfg.Host,
		Refresh: func() {
			if model != nil {
				model.Refresh()
			}
		},
	})
	ctrl.Activate(ctx)
	defer ctrl.Deactivate()

	model = ui.NewModel(ui.Options{
		Context:       ctx,
		Store:         store,
		Weigher:       weight.New(),
		Controller:    ctrl,
		Picker:        picker,
		Channel:       ch,
		Notifications: notifier,
		Strings:       strs,
		Styles:        styles,
		Width:         cfg.Width,
		Height:        cfg.Height,
		ShowFooter:    cfg.ShowFooter,
	})
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
