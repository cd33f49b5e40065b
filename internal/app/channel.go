package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/channel/amqp"
	"github.com/atomicstack/tweet-popup/internal/channel/local"
	"github.com/atomicstack/tweet-popup/internal/channel/stdio"
	"github.com/atomicstack/tweet-popup/internal/history"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/poster"
)

// openComposeChannel connects the compose screen to a poster according to
// cfg.Transport. The returned func closes the channel and anything started
// alongside it.
func openComposeChannel(ctx context.Context, cfg Config) (*channel.Channel, func(), error) {
	switch cfg.Transport {
	case TransportLocal:
		return openLocal(ctx, cfg)
	case TransportAMQP:
		t, err := amqp.Dial(ctx, amqp.Config{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Role:     amqp.RoleCompose,
		})
		if err != nil {
			return nil, nil, err
		}
		ch := channel.New(t)
		return ch, closer(ch), nil
	case TransportStdio, "":
		exe, err := os.Executable()
		if err != nil {
			return nil, nil, fmt.Errorf("locate executable: %w", err)
		}
		t, err := stdio.Spawn(ctx, exe, PosterArgs(cfg)...)
		if err != nil {
			return nil, nil, err
		}
		ch := channel.New(t)
		return ch, closer(ch), nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func closer(ch *channel.Channel) func() {
	return func() {
		if err := ch.Close(); err != nil {
			logging.Error(err)
		}
	}
}

// openLocal runs the poster in this process on the far end of a pipe.
func openLocal(ctx context.Context, cfg Config) (*channel.Channel, func(), error) {
	opts, closeHistory, err := posterOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	uiEnd, posterEnd := local.Pipe()
	posterCh := channel.New(posterEnd)
	svc := poster.New(posterCh, opts)
	if err := svc.RelayShortcuts(ctx); err != nil && !errors.Is(err, poster.ErrRelayUnsupported) {
		logging.Error(err)
	}
	removePID := startPIDFile(cfg.PIDFile)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := svc.Run(ctx); err != nil {
			logging.Error(err)
		}
	}()

	ch := channel.New(uiEnd)
	return ch, func() {
		closer(ch)()
		wg.Wait()
		removePID()
		closeHistory()
	}, nil
}

// posterOptions builds the publisher and history recorder from cfg.
func posterOptions(cfg Config) (poster.Options, func(), error) {
	opts := poster.Options{Host: cfg.Host, MinInterval: poster.DefaultMinInterval}
	if cfg.DryRun {
		opts.Publisher = poster.DryRunPublisher{}
	} else {
		opts.Publisher = poster.NewTwitterPublisher(cfg.Credentials.ConsumerKey, cfg.Credentials.ConsumerSecret)
	}
	if cfg.HistoryDB == "" {
		return opts, func() {}, nil
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return poster.Options{}, nil, err
	}
	opts.History = store
	return opts, func() {
		if err := store.Close(); err != nil {
			logging.Error(err)
		}
	}, nil
}

func startPIDFile(path string) func() {
	if path == "" {
		return func() {}
	}
	remove, err := poster.WritePIDFile(path)
	if err != nil {
		logging.Error(err)
	}
	return remove
}

// PosterArgs returns the command line for a poster child that mirrors cfg.
// Credentials stay in the inherited environment.
func PosterArgs(cfg Config) []string {
	args := []string{
		"poster", "--stdio",
		"--host", cfg.Host,
		"--history-db", cfg.HistoryDB,
		"--pid-file", cfg.PIDFile,
	}
	if cfg.DryRun {
		args = append(args, "--dry-run")
	}
	if cfg.LogFile != "" {
		args = append(args, "--log-file", cfg.LogFile)
	}
	if cfg.Trace {
		args = append(args, "--trace")
	}
	return args
}
