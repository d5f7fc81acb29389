// Package pipeline batches dashboard interaction events and ships them to the
// event sink in an extract-transform-load loop.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

// BatchExtractor reads up to batchSize interaction events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.InteractionEvent, error)
}

// Transformer converts an interaction event into an output event.
type Transformer interface {
	Transform(ctx context.Context, event domain.InteractionEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	running     atomic.Bool
	healthy     atomic.Bool
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

// CheckReadiness returns nil while the loop is running and the last load
// succeeded, or an error describing why the sink is not ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("event pipeline is not running")
	}
	if !p.healthy.Load() {
		return errors.New("event sink rejected the last batch")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("event pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	p.running.Store(true)
	p.healthy.Store(true)
	defer func() {
		p.running.Store(false)
		p.metrics.PipelineRunning.Set(0)
	}()

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("event pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	start := time.Now()
	p.metrics.BatchSize.Observe(float64(len(batch)))

	loaded, ok := p.transformAndLoad(ctx, batch, backoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	}
	return true
}

// transformAndLoad serializes each event in the batch and loads the
// successes, retrying the load with backoff until it succeeds or ctx ends.
// Returns the number of loaded events and false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, batch []domain.InteractionEvent, backoff *time.Duration) (int, bool) {
	out := make([]domain.OutputEvent, 0, len(batch))
	for _, event := range batch {
		o, err := p.transformer.Transform(ctx, event)
		if err != nil {
			p.logger.Warn("transform failed, skipping event",
				"error", err,
				"session_id", event.SessionID,
				"event_type", event.Type,
			)
			p.metrics.TransformErrors.Inc()
			continue
		}
		out = append(out, o)
	}

	if len(out) == 0 {
		return 0, true
	}

	for {
		err := p.loader.LoadBatch(ctx, out)
		if err == nil {
			break
		}
		p.healthy.Store(false)
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		if !p.backoffOrStop(ctx, backoff) {
			return 0, false
		}
	}

	*backoff = initialBackoff
	p.healthy.Store(true)
	p.metrics.EventsPublished.Add(float64(len(out)))
	return len(out), true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
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
