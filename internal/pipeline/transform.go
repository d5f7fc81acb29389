package pipeline

import (
	"context"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// EventTransformer implements Transformer by serializing events to JSON.
type EventTransformer struct{}

// NewTransformer creates an EventTransformer.
func NewTransformer() *EventTransformer {
	return &EventTransformer{}
}

func (t *EventTransformer) Transform(_ context.Context, event domain.InteractionEvent) (domain.OutputEvent, error) {
	return domain.SerializeInteractionEvent(event)
}
