package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/channel/amqp"
	"github.com/atomicstack/tweet-popup/internal/channel/stdio"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/poster"
	"github.com/atomicstack/tweet-popup/internal/protocol"
)

// RunPoster serves post requests until the channel closes or the process
// is interrupted. With serveStdio the channel is stdin/stdout, as when
// spawned by the compose screen; otherwise cfg.Transport must be amqp.
func RunPoster(cfg Config, serveStdio bool) error {
	logging.SetComponent("poster")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var transport channel.Transport
	switch {
	case serveStdio:
		transport = stdio.Serve()
	case cfg.Transport == TransportAMQP:
		t, err := amqp.Dial(ctx, amqp.Config{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Role:     amqp.RolePoster,
		})
		if err != nil {
			return err
		}
		transport = t
	default:
		return fmt.Errorf("poster needs --stdio or --transport %s", TransportAMQP)
	}

	opts, closeHistory, err := posterOptions(cfg)
	if err != nil {
		_ = transport.Close()
		return err
	}
	defer closeHistory()

	ch := channel.New(transport)
	defer closer(ch)()

	svc := poster.New(ch, opts)
	if err := svc.RelayShortcuts(ctx); err != nil && !errors.Is(err, poster.ErrRelayUnsupported) {
		logging.Error(err)
	}
	defer startPIDFile(cfg.PIDFile)()
	return svc.Run(ctx)
}

// RunShortcut asks a running poster to submit the open draft. Over amqp the
// event is published directly; otherwise the poster is signalled through
// its pidfile.
func RunShortcut(cfg Config) error {
	if cfg.Transport == TransportAMQP {
		ctx := context.Background()
		t, err := amqp.Dial(ctx, amqp.Config{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Role:     amqp.RoleRelay,
		})
		if err != nil {
			return err
		}
		ch := channel.New(t)
		defer closer(ch)()
		if _, err := ch.Send(ctx, protocol.SendTweetShortcut, nil); err != nil {
			return fmt.Errorf("publish shortcut: %w", err)
		}
		return nil
	}
	pid, err := poster.ReadPIDFile(cfg.PIDFile)
	if err != nil {
		return fmt.Errorf("no running poster: %w", err)
	}
	return poster.SignalShortcut(pid)
}
