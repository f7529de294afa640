package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "veritas/contexts/knowledge-curation/promotion-engine/application"
	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// StepUseCase records methodology step completions. Completing the same step
// twice for a graph is a DuplicateCompletion error, never a silent no-op.
type StepUseCase struct {
	Graphs      ports.GraphRepository
	Methodology ports.MethodologyRepository
	Tx          ports.TransactionManager
	Cache       ports.EligibilityCache
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc StepUseCase) CompleteStep(ctx context.Context, graphID string, stepID string, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	graphID = strings.TrimSpace(graphID)
	stepID = strings.TrimSpace(stepID)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrAuthenticationRequired
	}
	if graphID == "" || stepID == "" {
		return domainerrors.ErrValidation
	}

	now := uc.now()
	err := application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		graph, err := uc.Graphs.GetGraph(txCtx, graphID)
		if err != nil {
			return err
		}
		if graph.Immutable() {
			return domainerrors.ErrImmutableEntity
		}

		step, err := uc.Methodology.GetStep(txCtx, stepID)
		if err != nil {
			return err
		}
		// A step from another methodology is unknown from this graph's
		// point of view.
		if graph.MethodologyID == "" || step.MethodologyID != graph.MethodologyID {
			return domainerrors.ErrStepNotFound
		}

		completionID, err := uc.IDGen.NewID(txCtx)
		if err != nil {
			return err
		}
		return uc.Methodology.SaveCompletion(txCtx, entities.StepCompletion{
			CompletionID: completionID,
			GraphID:      graphID,
			StepID:       stepID,
			CompletedBy:  userID,
			CompletedAt:  now,
		})
	})
	if err != nil {
		return err
	}

	if uc.Cache != nil {
		uc.Cache.Invalidate(graphID)
	}
	publishEvent(ctx, uc.Publisher, uc.IDGen, logger, TopicEligibilityUpdated, graphID, now, map[string]any{
		"graph_id": graphID,
		"reason":   "step_completed",
		"step_id":  stepID,
	})

	logger.Info("methodology step completed",
		"event", "curation_step_completed",
		"module", "knowledge-curation/promotion-engine",
		"layer", "application",
		"graph_id", graphID,
		"step_id", stepID,
		"user_id", userID,
	)
	return nil
}

func (uc StepUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
