package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/winds-aloft-service/internal/config"
	"github.com/couchcryptid/winds-aloft-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes station forecasts to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies this sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Publish writes one message per station in a single WriteMessages call.
// Messages are keyed by station so each station stays on one partition.
func (w *Writer) Publish(ctx context.Context, forecast domain.WindsAloftForecast) (int, error) {
	if len(forecast.Forecasts) == 0 {
		return 0, nil
	}
	msgs := make([]kafkago.Message, len(forecast.Forecasts))
	for i := range forecast.Forecasts {
		msg, err := serializeToMessage(forecast, forecast.Forecasts[i])
		if err != nil {
			return 0, err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("write station forecasts: %w", err)
	}
	w.logger.Debug("station forecasts published", "topic", w.writer.Topic, "count", len(msgs))
	return len(msgs), nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationForecast into a Kafka message.
func serializeToMessage(forecast domain.WindsAloftForecast, station domain.StationForecast) (kafkago.Message, error) {
	data, err := json.Marshal(station)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station forecast: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(station.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(station.Station)},
			{Key: "forecast_time", Value: []byte(formatHHMM(forecast.ForecastTime))},
			{Key: "time_retrieved", Value: []byte(formatHHMM(forecast.TimeRetrieved))},
		},
	}, nil
}

// formatHHMM renders an HHMM integer zero-padded, e.g. 600 -> "0600".
func formatHHMM(hhmm uint32) string {
	return fmt.Sprintf("%04d", hhmm)
}
