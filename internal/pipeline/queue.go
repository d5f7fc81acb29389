package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

// Queue is the in-process source of interaction events. Handlers publish
// into it without blocking; the pipeline drains it in batches.
// It implements BatchExtractor.
type Queue struct {
	events        chan domain.InteractionEvent
	clock         clockwork.Clock
	flushInterval time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewQueue creates a queue holding up to size events. A partial batch is
// flushed flushInterval after its first event arrived.
func NewQueue(size int, flushInterval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Queue {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Queue{
		events:        make(chan domain.InteractionEvent, size),
		clock:         clock,
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       metrics,
	}
}

// Publish enqueues an event. When the queue is full the event is dropped and
// Publish returns false.
func (q *Queue) Publish(event domain.InteractionEvent) bool {
	select {
	case q.events <- event:
		return true
	default:
		q.metrics.EventsDropped.Inc()
		q.logger.Debug("event queue full, dropping event", "event_type", event.Type)
		return false
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}

// ExtractBatch blocks for the first event, then collects more until the batch
// is full or the flush interval elapses.
func (q *Queue) ExtractBatch(ctx context.Context, batchSize int) ([]domain.InteractionEvent, error) {
	var batch []domain.InteractionEvent
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e := <-q.events:
		batch = append(batch, e)
	}

	timer := q.clock.NewTimer(q.flushInterval)
	defer timer.Stop()

	for len(batch) < batchSize {
		select {
		case <-ctx.Done():
			q.logger.Warn("discarding pending events on shutdown", "count", len(batch)+q.Len())
			return nil, ctx.Err()
		case e := <-q.events:
			batch = append(batch, e)
		case <-timer.Chan():
			return batch, nil
		}
	}
	return batch, nil
}
