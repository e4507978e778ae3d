package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/wheelspin/go/internal/gateway"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// Config holds the NATS connection and stream settings
type Config struct {
	URL           string
	StreamName    string
	SubjectPrefix string        // e.g., "wheel.events"
	MaxAge        time.Duration // How long the stream keeps events
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default event bus configuration
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		StreamName:    "WHEEL_EVENTS",
		SubjectPrefix: "wheel.events",
		MaxAge:        24 * time.Hour,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// streamPublisher is the part of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher fans wheel events out to a JetStream stream. It implements gateway.EventSink.
type Publisher struct {
	nc     *nats.Conn
	js     streamPublisher
	prefix string
}

// NewPublisher wraps an existing JetStream handle.
func NewPublisher(js streamPublisher, prefix string) *Publisher {
	return &Publisher{js: js, prefix: prefix}
}

// Connect dials NATS and makes sure the event stream exists.
func Connect(ctx context.Context, config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("wheelspin"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "Wheel roster, spin and audio events",
		Subjects:    []string{config.SubjectPrefix + ".>"},
		MaxAge:      config.MaxAge,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", config.StreamName, err)
	}

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Str("stream", config.StreamName).
		Msg("event bus connected")

	p := NewPublisher(js, config.SubjectPrefix)
	p.nc = nc
	return p, nil
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(event *gateway.WheelEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, event.WheelID, event.Type)
}

// Publish implements gateway.EventSink.
func (p *Publisher) Publish(ctx context.Context, event *gateway.WheelEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.Subject(event)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Uint64("seq", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("event published")
	return nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("failed to drain NATS connection")
	}
}
