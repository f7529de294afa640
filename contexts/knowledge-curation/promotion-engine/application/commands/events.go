package commands

import (
	"context"
	"log/slog"
	"time"

	"veritas/contexts/knowledge-curation/promotion-engine/ports"
	"veritas/internal/shared/events"
)

const (
	TopicEligibilityUpdated = "eligibility_updated"
	TopicGraphPromoted      = "graph_promoted"
)

// publishEvent is fire-and-forget: publish failures are logged and never roll
// back or fail the already-committed write.
func publishEvent(
	ctx context.Context,
	publisher ports.EventPublisher,
	idgen ports.IDGenerator,
	logger *slog.Logger,
	topic string,
	graphID string,
	occurredAt time.Time,
	payload map[string]any,
) {
	if publisher == nil {
		return
	}
	eventID, err := idgen.NewID(ctx)
	if err != nil {
		logger.Warn("event id generation failed; event dropped",
			"event", "curation_event_id_failed",
			"module", "knowledge-curation/promotion-engine",
			"layer", "application",
			"topic", topic,
			"graph_id", graphID,
			"error", err.Error(),
		)
		return
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      topic,
		SourceService:  "veritas",
		OccurredAtUTC:  occurredAt.UTC(),
		EntityType:     "claim_graph",
		EntityID:       graphID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	if err := publisher.Publish(ctx, topic, envelope); err != nil {
		logger.Warn("event publish failed",
			"event", "curation_event_publish_failed",
			"module", "knowledge-curation/promotion-engine",
			"layer", "application",
			"topic", topic,
			"graph_id", graphID,
			"error", err.Error(),
		)
	}
}
