package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/winds-aloft-service/internal/domain"
	natsgo "github.com/nats-io/nats.go"
)

// conn is the subset of *natsgo.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Publisher sends each station forecast to "<prefix>.<STATION>".
// It implements pipeline.Publisher.
type Publisher struct {
	conn   conn
	prefix string
	logger *slog.Logger
}

// Connect dials the NATS server and returns a Publisher.
func Connect(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	nc, err := natsgo.Connect(url,
		natsgo.Name("winds-aloft-service"),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newPublisher(nc, prefix, logger), nil
}

func newPublisher(c conn, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{conn: c, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// Name identifies this sink in logs and metrics.
func (p *Publisher) Name() string { return "nats" }

// Publish sends every station forecast and flushes the connection.
func (p *Publisher) Publish(ctx context.Context, forecast domain.WindsAloftForecast) (int, error) {
	sent := 0
	for _, station := range forecast.Forecasts {
		data, err := json.Marshal(station)
		if err != nil {
			return sent, fmt.Errorf("serialize station forecast: %w", err)
		}
		if err := p.conn.Publish(p.subject(station.Station), data); err != nil {
			return sent, fmt.Errorf("publish %s: %w", station.Station, err)
		}
		sent++
	}
	if sent == 0 {
		return 0, nil
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return sent, fmt.Errorf("flush nats: %w", err)
	}
	return sent, nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}

func (p *Publisher) subject(station string) string {
	return p.prefix + "." + strings.ToUpper(station)
}
