// Package events handles event emission for plan document lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/cheatday/planner/pkg/kafka"
	"github.com/cheatday/planner/pkg/models"
	"github.com/cheatday/planner/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes plan document lifecycle events. A nil producer disables
// emission so the server runs fine without Kafka.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitPlanSetSaved emits a planset.saved event after a successful save.
func (e *Emitter) EmitPlanSetSaved(ctx context.Context, set models.PlanSet) {
	if e.producer == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPlanSetSaved")
	defer span.End()

	size := 0
	if raw, err := json.Marshal(set); err == nil {
		size = len(raw)
	}

	event := &kafka.PlanEventMessage{
		Type:       "planset.saved",
		DocumentID: set.CurrentID,
		PlanCount:  len(set.Plans),
		ItemCount:  countItems(set),
		SizeBytes:  size,
	}

	if err := e.producer.PublishPlanEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit planset.saved event")
	}
}

// EmitPlanSetLoaded emits a planset.loaded event after a successful load.
func (e *Emitter) EmitPlanSetLoaded(ctx context.Context, set models.PlanSet) {
	if e.producer == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPlanSetLoaded")
	defer span.End()

	event := &kafka.PlanEventMessage{
		Type:       "planset.loaded",
		DocumentID: set.CurrentID,
		PlanCount:  len(set.Plans),
		ItemCount:  countItems(set),
	}

	if err := e.producer.PublishPlanEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit planset.loaded event")
	}
}

func countItems(set models.PlanSet) int {
	total := 0
	for _, plan := range set.Plans {
		total += len(plan.Items)
	}
	return total
}
