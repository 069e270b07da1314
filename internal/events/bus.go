// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// DefaultTopic is used when the configuration leaves the topic empty.
const DefaultTopic = "waypoint.invalidations"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event bus closed")

// Publisher publishes invalidations. Handlers and tests depend on this
// rather than on the Bus.
type Publisher interface {
	Publish(ctx context.Context, invs ...Invalidation) error
}

// HandlerFunc processes one invalidation. A returned error triggers a retry.
type HandlerFunc func(ctx context.Context, inv Invalidation) error

// Transport is a publisher/subscriber pair plus whatever must be shut down
// with it.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Close      func() error
}

// Bus publishes invalidations and routes them to handlers.
type Bus struct {
	topic     string
	transport Transport
	router    *message.Router
	logger    watermill.LoggerAdapter

	mu     sync.Mutex
	closed bool
}

// NewBus builds the transport named by cfg and a router with recovery and
// retry middleware.
func NewBus(cfg *config.EventsConfig) (*Bus, error) {
	logger := logging.NewWatermillLogger()

	var (
		transport Transport
		err       error
	)
	switch cfg.Transport {
	case "", "gochannel":
		transport = NewGoChannelTransport(logger)
	case "nats":
		transport, err = NewNATSTransport(cfg, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return newBus(topic, transport, logger)
}

// NewGoChannelTransport returns an in-process transport.
func NewGoChannelTransport(logger watermill.LoggerAdapter) Transport {
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
	return Transport{Publisher: ps, Subscriber: ps, Close: ps.Close}
}

func newBus(topic string, transport Transport, logger watermill.LoggerAdapter) (*Bus, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
	)
	return &Bus{topic: topic, transport: transport, router: router, logger: logger}, nil
}

// Topic returns the topic invalidations are published on.
func (b *Bus) Topic() string {
	return b.topic
}

// Publish sends each invalidation as its own message.
func (b *Bus) Publish(ctx context.Context, invs ...Invalidation) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	msgs := make([]*message.Message, 0, len(invs))
	for i := range invs {
		inv := invs[i]
		if inv.OccurredAt.IsZero() {
			inv.OccurredAt = time.Now().UTC()
		}
		payload, err := json.Marshal(inv)
		if err != nil {
			return fmt.Errorf("encode invalidation: %w", err)
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("source", string(inv.Source))
		msg.Metadata.Set("reason", inv.Reason)
		msg.SetContext(ctx)
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := b.transport.Publisher.Publish(b.topic, msgs...); err != nil {
		return fmt.Errorf("publish invalidations: %w", err)
	}
	for i := range invs {
		metrics.EventsPublished.WithLabelValues(string(invs[i].Source)).Inc()
	}
	return nil
}

// Handle registers fn under name. Handlers must be registered before Run.
func (b *Bus) Handle(name string, fn HandlerFunc) {
	b.router.AddConsumerHandler(name, b.topic, b.transport.Subscriber, func(msg *message.Message) error {
		var inv Invalidation
		if err := json.Unmarshal(msg.Payload, &inv); err != nil {
			// Undecodable messages are acked; retrying cannot fix them.
			metrics.EventsHandled.WithLabelValues("unknown", "malformed").Inc()
			b.logger.Error("Dropping malformed invalidation", err, watermill.LogFields{"uuid": msg.UUID})
			return nil
		}
		if err := fn(msg.Context(), inv); err != nil {
			metrics.EventsHandled.WithLabelValues(string(inv.Source), "error").Inc()
			return err
		}
		metrics.EventsHandled.WithLabelValues(string(inv.Source), "ok").Inc()
		return nil
	})
}

// Run starts the router and blocks until ctx is cancelled or the router
// stops.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once the router is consuming messages.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Close stops the router and the transport.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	return errors.Join(b.router.Close(), b.transport.Close())
}
