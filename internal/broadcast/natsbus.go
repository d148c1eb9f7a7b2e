package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NATSBusConfig tunes the NATS transport.
type NATSBusConfig struct {
	// URL is the NATS server URL.
	URL string
	// Subject is the subject events are published on.
	Subject string
}

// DefaultNATSBusConfig returns the production settings.
func DefaultNATSBusConfig() NATSBusConfig {
	return NATSBusConfig{
		URL:     nats.DefaultURL,
		Subject: "coderscup.broadcast",
	}
}

// NATSBus carries events over core NATS pub/sub. Delivery is at-most-once
// with no replay, which matches the advisory nature of the channel: tabs
// that are offline during a publish catch up on their next poll. Deployments
// without a NATS server use StorageBus instead.
type NATSBus struct {
	nc      *nats.Conn
	subject string
	source  string
	logger  zerolog.Logger

	subs subscribers
}

// ConnectNATSBus dials the NATS server and returns a bus on cfg.Subject.
// The connection retries forever on loss; gaps are tolerated.
func ConnectNATSBus(cfg NATSBusConfig, source string) (*NATSBus, error) {
	logger := log.With().Str("component", "broadcast").Str("source", source).Logger()
	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	b := &NATSBus{
		nc:      nc,
		subject: cfg.Subject,
		source:  source,
		logger:  logger,
	}
	if _, err := nc.Subscribe(cfg.Subject, func(m *nats.Msg) {
		b.handleMessage(m.Data)
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", cfg.Subject, err)
	}
	logger.Info().Str("url", cfg.URL).Str("subject", cfg.Subject).Msg("Connected to NATS broadcast")
	return b, nil
}

// Publish sends ev to every connected tab.
func (b *NATSBus) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("failed to publish broadcast event: %w", err)
	}
	return nil
}

// Subscribe registers fn for events published by other sources.
func (b *NATSBus) Subscribe(fn func(Event)) (stop func()) {
	return b.subs.add(fn)
}

// Close drains the connection.
func (b *NATSBus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

func (b *NATSBus) handleMessage(data []byte) {
	ev, err := decodeEvent(data)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Discarding corrupt broadcast message")
		return
	}
	if ev.Source == b.source {
		return
	}
	b.subs.dispatch(ev)
}
