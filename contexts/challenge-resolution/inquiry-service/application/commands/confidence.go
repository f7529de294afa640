package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "veritas/contexts/challenge-resolution/inquiry-service/application"
	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	domainerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	"veritas/contexts/challenge-resolution/inquiry-service/ports"
	"veritas/internal/shared/events"
)

const TopicEligibilityUpdated = "eligibility_updated"

// WriteConfidenceCommand carries the AI evaluator's requested score and
// narrative for an inquiry.
type WriteConfidenceCommand struct {
	InquiryID      string
	RequestedScore float64
	Determination  string
	Rationale      string
}

// WriteConfidenceResult reports the stored inquiry plus an explicit capped
// marker so a discrepancy between requested and stored confidence is never
// silent.
type WriteConfidenceResult struct {
	Inquiry entities.FormalInquiry
	Capped  bool
}

// ConfidenceUseCase enforces the confidence-ceiling invariant. The ceiling is
// computed and applied inside the same transaction as the write; there is no
// post-hoc corrective pass for a crash to interrupt.
type ConfidenceUseCase struct {
	Inquiries   ports.InquiryRepository
	Credibility ports.CredibilityReader
	Tx          ports.TransactionManager
	Eligibility ports.EligibilityInvalidator
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc ConfidenceUseCase) WriteConfidence(ctx context.Context, cmd WriteConfidenceCommand) (WriteConfidenceResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	inquiryID := strings.TrimSpace(cmd.InquiryID)
	if inquiryID == "" || cmd.RequestedScore < 0 || cmd.RequestedScore > 1 {
		logger.Warn("confidence write validation failed",
			"event", "inquiry_confidence_validation_failed",
			"module", "challenge-resolution/inquiry-service",
			"layer", "application",
			"inquiry_id", inquiryID,
			"requested_score", cmd.RequestedScore,
		)
		return WriteConfidenceResult{}, domainerrors.ErrValidation
	}

	now := uc.now()
	var result WriteConfidenceResult
	err := application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		inquiry, err := uc.Inquiries.GetInquiry(txCtx, inquiryID)
		if err != nil {
			return err
		}
		if inquiry.Status == entities.InquiryStatusResolved {
			return domainerrors.ErrInquiryResolved
		}

		refs, err := uc.Credibility.ListReferencedCredibility(txCtx, inquiryID)
		if err != nil {
			return err
		}
		ceiling, weakestNode := entities.ConfidenceCeiling(refs)

		stored := cmd.RequestedScore
		capped := false
		if stored > ceiling {
			stored = ceiling
			capped = true
		}

		inquiry.ConfidenceScore = stored
		inquiry.MaxAllowedScore = ceiling
		inquiry.WeakestNodeID = weakestNode
		inquiry.WeakestNodeCredibility = ceiling
		inquiry.Status = entities.InquiryStatusEvaluated
		inquiry.AIDetermination = strings.TrimSpace(cmd.Determination)
		inquiry.AIRationale = strings.TrimSpace(cmd.Rationale)
		inquiry.EvaluatedBy = "ai"
		evaluatedAt := now
		inquiry.EvaluatedAt = &evaluatedAt
		inquiry.UpdatedAt = now

		if err := uc.Inquiries.SaveInquiry(txCtx, inquiry); err != nil {
			return err
		}
		result = WriteConfidenceResult{Inquiry: inquiry, Capped: capped}
		return nil
	})
	if err != nil {
		return WriteConfidenceResult{}, err
	}

	uc.invalidateAndPublish(ctx, logger, result.Inquiry.GraphID, now, "inquiry_evaluated")

	logger.Info("inquiry confidence written",
		"event", "inquiry_confidence_written",
		"module", "challenge-resolution/inquiry-service",
		"layer", "application",
		"inquiry_id", inquiryID,
		"requested_score", cmd.RequestedScore,
		"stored_score", result.Inquiry.ConfidenceScore,
		"max_allowed_score", result.Inquiry.MaxAllowedScore,
		"capped", result.Capped,
	)
	return result, nil
}

// ResolveInquiry closes an evaluated inquiry. Resolving the last open
// challenge re-opens the graph's path to promotion.
func (uc ConfidenceUseCase) ResolveInquiry(ctx context.Context, inquiryID string, userID string) (entities.FormalInquiry, error) {
	logger := application.ResolveLogger(uc.Logger)
	inquiryID = strings.TrimSpace(inquiryID)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.FormalInquiry{}, domainerrors.ErrAuthenticationRequired
	}
	if inquiryID == "" {
		return entities.FormalInquiry{}, domainerrors.ErrValidation
	}

	now := uc.now()
	var resolved entities.FormalInquiry
	err := application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		inquiry, err := uc.Inquiries.GetInquiry(txCtx, inquiryID)
		if err != nil {
			return err
		}
		switch inquiry.Status {
		case entities.InquiryStatusResolved:
			return domainerrors.ErrInquiryResolved
		case entities.InquiryStatusOpen:
			return domainerrors.ErrInquiryNotEvaluated
		}
		inquiry.Status = entities.InquiryStatusResolved
		inquiry.UpdatedAt = now
		if err := uc.Inquiries.SaveInquiry(txCtx, inquiry); err != nil {
			return err
		}
		resolved = inquiry
		return nil
	})
	if err != nil {
		return entities.FormalInquiry{}, err
	}

	uc.invalidateAndPublish(ctx, logger, resolved.GraphID, now, "inquiry_resolved")

	logger.Info("inquiry resolved",
		"event", "inquiry_resolved",
		"module", "challenge-resolution/inquiry-service",
		"layer", "application",
		"inquiry_id", inquiryID,
		"graph_id", resolved.GraphID,
		"resolved_by", userID,
	)
	return resolved, nil
}

func (uc ConfidenceUseCase) invalidateAndPublish(
	ctx context.Context,
	logger *slog.Logger,
	graphID string,
	occurredAt time.Time,
	reason string,
) {
	if uc.Eligibility != nil && graphID != "" {
		uc.Eligibility.Invalidate(graphID)
	}
	if uc.Publisher == nil || graphID == "" {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("event id generation failed; event dropped",
			"event", "inquiry_event_id_failed",
			"module", "challenge-resolution/inquiry-service",
			"layer", "application",
			"graph_id", graphID,
			"error", err.Error(),
		)
		return
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      TopicEligibilityUpdated,
		SourceService:  "veritas",
		OccurredAtUTC:  occurredAt.UTC(),
		EntityType:     "claim_graph",
		EntityID:       graphID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"graph_id": graphID,
			"reason":   reason,
		},
	}
	if err := uc.Publisher.Publish(ctx, TopicEligibilityUpdated, envelope); err != nil {
		logger.Warn("event publish failed",
			"event", "inquiry_event_publish_failed",
			"module", "challenge-resolution/inquiry-service",
			"layer", "application",
			"graph_id", graphID,
			"error", err.Error(),
		)
	}
}

func (uc ConfidenceUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
