// Package poster is the background process that performs the network post.
// It reads postStatus requests from a channel one at a time, publishes them,
// and answers each with postStatusComplete or postStatusError correlated to
// the request's message id.
package poster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/history"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/atomicstack/tweet-popup/internal/protocol"
)

// DefaultMinInterval spaces successive posts.
const DefaultMinInterval = 2 * time.Second

// Options configures a Service.
type Options struct {
	Publisher   Publisher
	History     history.Recorder
	Host        string
	MinInterval time.Duration
}

// Service answers post requests arriving on a channel.
type Service struct {
	ch        *channel.Channel
	publisher Publisher
	history   history.Recorder
	host      string
	throttle  *throttle
}

// New returns a service bound to ch. A nil publisher falls back to a dry run.
func New(ch *channel.Channel, opts Options) *Service {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = DryRunPublisher{}
	}
	host := opts.Host
	if host == "" {
		host = protocol.DefaultHost
	}
	return &Service{
		ch:        ch,
		publisher: publisher,
		history:   opts.History,
		host:      host,
		throttle:  newThrottle(opts.MinInterval),
	}
}

// Run handles requests until the channel closes or ctx ends. A closed
// channel is a clean shutdown.
func (s *Service) Run(ctx context.Context) error {
	sub := s.ch.Subscribe(protocol.PostStatus, func(env channel.Envelope) {
		s.handle(ctx, env)
	})
	defer sub.Close()
	events.Poster.Start(s.publisher.Name(), os.Getpid())
	err := s.ch.Run(ctx)
	switch {
	case err == nil:
		events.Poster.Stop("channel closed")
		return nil
	case errors.Is(err, context.Canceled):
		events.Poster.Stop("cancelled")
		return nil
	default:
		events.Poster.Stop(err.Error())
		return err
	}
}

// Shortcut relays a keyboard shortcut to the compose screen.
func (s *Service) Shortcut(ctx context.Context) error {
	events.Poster.Shortcut()
	if _, err := s.ch.Send(ctx, protocol.SendTweetShortcut, nil); err != nil {
		return fmt.Errorf("relay shortcut: %w", err)
	}
	return nil
}

func (s *Service) handle(ctx context.Context, env channel.Envelope) {
	var req protocol.SubmissionRequest
	if err := env.Decode(&req); err != nil {
		s.fail(ctx, env, req, err)
		return
	}
	events.Poster.Request(env.Meta.ID, len(req.StatusText), req.ImageData != nil)
	if err := s.throttle.wait(ctx); err != nil {
		s.fail(ctx, env, req, err)
		return
	}
	post, err := s.publisher.Publish(ctx, req)
	if err != nil {
		s.fail(ctx, env, req, err)
		return
	}
	events.Poster.Complete(env.Meta.ID, post.IDStr, post.User.ScreenName)
	s.reply(ctx, env, protocol.PostStatusComplete, post)
	url := ""
	if post.IDStr != "" && post.User.ScreenName != "" {
		url = protocol.StatusURL(s.host, post.User.ScreenName, post.IDStr)
	}
	s.record(ctx, history.Entry{
		RequestID:  env.Meta.ID,
		StatusText: req.StatusText,
		HasImage:   req.ImageData != nil,
		Outcome:    history.OutcomePosted,
		PostID:     post.IDStr,
		URL:        url,
	})
}

func (s *Service) fail(ctx context.Context, env channel.Envelope, req protocol.SubmissionRequest, cause error) {
	logging.Error(cause)
	events.Poster.Error(env.Meta.ID, cause)
	s.reply(ctx, env, protocol.PostStatusError, protocol.PostStatusErrorEvent{Message: cause.Error()})
	s.record(ctx, history.Entry{
		RequestID:  env.Meta.ID,
		StatusText: req.StatusText,
		HasImage:   req.ImageData != nil,
		Outcome:    history.OutcomeFailed,
		Error:      cause.Error(),
	})
}

func (s *Service) reply(ctx context.Context, req channel.Envelope, name string, payload interface{}) {
	env, err := req.Reply(name, payload)
	if err != nil {
		logging.Error(err)
		return
	}
	if err := s.ch.SendEnvelope(ctx, env); err != nil {
		logging.Error(err)
	}
}

func (s *Service) record(ctx context.Context, e history.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(context.WithoutCancel(ctx), e); err != nil {
		logging.Error(err)
	}
}
