// Package ingest keeps the disaster tables current from a declarations topic:
// an extract-parse-upsert loop with offset commits after durable load.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/stormhaven/stormhaven/internal/domain"
	"github.com/stormhaven/stormhaven/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source topic.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Loader writes parsed declarations to storage.
type Loader interface {
	UpsertDeclarations(ctx context.Context, decls []domain.Declaration) error
}

// Consumer orchestrates the declarations-ingest loop.
type Consumer struct {
	extractor BatchExtractor
	loader    Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int
}

// New creates a Consumer with the given stages and observability.
func New(e BatchExtractor, l Loader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Consumer {
	return &Consumer{
		extractor: e,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Run executes the ingest loop until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("ingest consumer started", "batch_size", c.batchSize)
	c.metrics.ConsumerRunning.Set(1)
	defer c.metrics.ConsumerRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("ingest consumer stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !c.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-parse-upsert cycle. Returns false if the
// consumer should stop.
func (c *Consumer) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	rawBatch, err := c.extractor.ExtractBatch(ctx, c.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		c.logger.Error("extract batch failed", "error", err)
		return c.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}
	*backoff = 200 * time.Millisecond

	decls := make([]domain.Declaration, 0, len(rawBatch))
	parsedRaws := make([]domain.RawEvent, 0, len(rawBatch))
	for _, raw := range rawBatch {
		dec, err := domain.ParseDeclaration(raw)
		if err != nil {
			// Poison message. Commit it so the partition keeps moving.
			c.logger.Warn("declaration rejected, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			c.metrics.IngestErrors.Inc()
			c.commitOffset(ctx, raw)
			continue
		}
		decls = append(decls, dec)
		parsedRaws = append(parsedRaws, raw)
	}

	if len(decls) == 0 {
		return true
	}

	if err := c.loader.UpsertDeclarations(ctx, decls); err != nil {
		// No commit: the whole batch is re-delivered and the upsert replays
		// cleanly.
		c.logger.Error("upsert batch failed", "error", err, "batch_size", len(decls))
		return c.backoffOrStop(ctx, backoff, maxBackoff)
	}
	c.metrics.IngestRecords.Add(float64(len(decls)))

	for _, raw := range parsedRaws {
		c.commitOffset(ctx, raw)
	}
	return true
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the consumer should stop.
func (c *Consumer) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func (c *Consumer) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		c.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
