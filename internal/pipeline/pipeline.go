package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into zero or more output events.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has processed at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Run consumes sensor readings until the context is cancelled. Each batch
// is transformed into level records for the affected tanks, the records are
// published in one write, and only then are the reading offsets committed.
// Extract and publish failures back off and retry.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	r := newRetry(initialBackoff, maxBackoff)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, r) {
			return nil
		}
	}
}

// batchResult summarizes one batch of readings.
type batchResult struct {
	readings int // readings transformed without error, committed after publish
	levels   int // level records published
	skipped  int // unparseable readings, committed without output
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, r *retry) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return r.wait(ctx)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	r.reset()

	res, ok := p.transformAndLoad(ctx, rawBatch)
	if !ok {
		return r.wait(ctx)
	}

	p.logger.Debug("batch processed",
		"readings", res.readings,
		"levels", res.levels,
		"skipped", res.skipped,
	)
	if res.readings > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// transformAndLoad fans each reading out to the level records of the tanks
// that use its entity, publishes every record of the batch at once and
// commits the readings. A reading that affects no tank is still committed.
// It returns false when publishing failed; no offsets are committed then.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent) (batchResult, bool) {
	var res batchResult
	levels := make([]domain.OutputEvent, 0, len(rawBatch))
	transformed := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("reading rejected, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			res.skipped++
			continue
		}
		levels = append(levels, out...)
		transformed = append(transformed, raw)
	}

	if len(levels) > 0 {
		if err := p.loader.LoadBatch(ctx, levels); err != nil {
			p.logger.Error("publish levels failed", "error", err, "levels", len(levels))
			return res, false
		}
		p.metrics.MessagesProduced.Add(float64(len(levels)))
	}

	for _, raw := range transformed {
		p.commitOffset(ctx, raw)
	}

	res.readings = len(transformed)
	res.levels = len(levels)
	return res, true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
