// Package amqp carries envelopes over a RabbitMQ topic exchange so the
// compose screen, the poster, and the shortcut relay can run as independent
// processes, possibly on different hosts.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"
)

// Role selects what a connection publishes and consumes.
type Role int

const (
	// RoleCompose publishes requests and consumes events.
	RoleCompose Role = iota
	// RolePoster consumes requests and publishes events.
	RolePoster
	// RoleRelay publishes events and consumes nothing.
	RoleRelay
)

const (
	DefaultExchange    = "tweet-popup"
	DefaultPosterQueue = "tweet-popup.poster"
	DefaultAttempts    = 5

	requestPrefix = "request."
	eventPrefix   = "event."
	prefetch      = 4
)

// Config describes the broker connection.
type Config struct {
	URL      string
	Exchange string
	Queue    string
	Role     Role
	Attempts int
}

// Transport is a channel.Transport backed by an AMQP connection.
type Transport struct {
	cfg  Config
	conn *amqp091.Connection
	ch   *amqp091.Channel

	out  chan channel.Envelope
	done chan struct{}
	once sync.Once
}

// Dial connects to the broker with exponential backoff, declares the
// exchange, and starts consuming according to cfg.Role.
func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	cfg = withDefaults(cfg)
	conn, err := dialWithRetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	t := &Transport{
		cfg:  cfg,
		conn: conn,
		ch:   ch,
		out:  make(chan channel.Envelope),
		done: make(chan struct{}),
	}
	if cfg.Role == RoleRelay {
		close(t.out)
		return t, nil
	}
	deliveries, err := t.consume()
	if err != nil {
		conn.Close()
		return nil, err
	}
	go t.pump(deliveries)
	return t, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" && cfg.Role == RolePoster {
		cfg.Queue = DefaultPosterQueue
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	return cfg
}

func dialWithRetry(ctx context.Context, cfg Config) (*amqp091.Connection, error) {
	var conn *amqp091.Connection
	attempt := 0
	op := func() error {
		attempt++
		c, err := amqp091.Dial(cfg.URL)
		events.Channel.Dial("amqp", attempt, err)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(cfg.Attempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", redact(cfg.URL), attempt, err)
	}
	return conn, nil
}

func (t *Transport) consume() (<-chan amqp091.Delivery, error) {
	if err := t.ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	var (
		q   amqp091.Queue
		err error
	)
	switch t.cfg.Role {
	case RolePoster:
		q, err = t.ch.QueueDeclare(t.cfg.Queue, true, false, false, false, nil)
	default:
		// each compose screen gets its own exclusive queue
		q, err = t.ch.QueueDeclare(t.cfg.Queue, false, true, true, false, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := t.ch.QueueBind(q.Name, Binding(t.cfg.Role), t.cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	deliveries, err := t.ch.Consume(q.Name, "", false, t.cfg.Role != RolePoster, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return deliveries, nil
}

func (t *Transport) pump(deliveries <-chan amqp091.Delivery) {
	defer close(t.out)
	for {
		select {
		case <-t.done:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			env, err := decodeDelivery(d.Body)
			if err != nil {
				events.Channel.Error("amqp", err)
				_ = d.Nack(false, false)
				continue
			}
			select {
			case t.out <- env:
				_ = d.Ack(false)
			case <-t.done:
				_ = d.Nack(false, true)
				return
			}
		}
	}
}

func decodeDelivery(body []byte) (channel.Envelope, error) {
	var env channel.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return channel.Envelope{}, fmt.Errorf("decode delivery: %w", err)
	}
	if env.Name() == "" {
		return channel.Envelope{}, fmt.Errorf("decode delivery: missing type")
	}
	return env, nil
}

func (t *Transport) Name() string {
	return "amqp"
}

// Send publishes env with the routing key for this transport's role.
func (t *Transport) Send(ctx context.Context, env channel.Envelope) error {
	select {
	case <-t.done:
		return channel.ErrClosed
	default:
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	ch, err := t.conn.Channel()
	if err != nil {
		return fmt.Errorf("open publish channel: %w", err)
	}
	defer ch.Close()
	return ch.PublishWithContext(ctx, t.cfg.Exchange, RoutingKey(t.cfg.Role, env.Name()), false, false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     env.Meta.ID,
			CorrelationId: env.Correlation(),
			Timestamp:     env.Meta.Time,
			Type:          env.Name(),
			Body:          body,
		},
	)
}

func (t *Transport) Incoming() <-chan channel.Envelope {
	return t.out
}

// Close stops consuming and closes the connection.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		_ = t.ch.Close()
		err = t.conn.Close()
	})
	return err
}

// RoutingKey returns the key a role publishes name under.
func RoutingKey(role Role, name string) string {
	if role == RoleCompose {
		return requestPrefix + name
	}
	return eventPrefix + name
}

// Binding returns the pattern a role consumes.
func Binding(role Role) string {
	if role == RolePoster {
		return requestPrefix + "#"
	}
	return eventPrefix + "#"
}

// redact hides credentials embedded in a broker URL.
func redact(url string) string {
	scheme := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if scheme < 0 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
