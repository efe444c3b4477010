// Package kafka adapts a consumer-group reader on the declarations topic to
// the ingest loop's batch-extraction interface.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/stormhaven/stormhaven/internal/config"
	"github.com/stormhaven/stormhaven/internal/domain"
)

// batchDrainWait bounds how long ExtractBatch waits for messages beyond the
// first one before handing back a partial batch.
const batchDrainWait = 500 * time.Millisecond

// Reader consumes declaration events from Kafka.
// It implements ingest.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader on the configured topic.
func NewReader(cfg config.KafkaConfig, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        batchDrainWait,
		CommitInterval: 0, // explicit commits only
	})
	return &Reader{reader: r, logger: logger}
}

// ExtractBatch blocks for the first message, then drains whatever else
// arrives within the batch window, up to batchSize. Each returned event
// carries a Commit callback bound to its own offset.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	events := []domain.RawEvent{r.mapMessage(first)}

	drainCtx, cancel := context.WithTimeout(ctx, batchDrainWait)
	defer cancel()
	for len(events) < batchSize {
		msg, err := r.reader.FetchMessage(drainCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			// Partial batch is still worth processing; surface the error on
			// the next call.
			r.logger.Warn("batch drain interrupted", "error", err)
			break
		}
		events = append(events, r.mapMessage(msg))
	}
	return events, nil
}

// Close shuts the underlying reader down, committing its final offsets.
func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) mapMessage(msg kafkago.Message) domain.RawEvent {
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}
