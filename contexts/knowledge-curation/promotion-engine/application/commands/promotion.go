package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "veritas/contexts/knowledge-curation/promotion-engine/application"
	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// RequestPromotionCommand is the write-model input for an explicit promotion
// request. The idempotency key makes retries replay-safe: a resent request
// whose transition already committed reports the achieved level instead of
// promoting again.
type RequestPromotionCommand struct {
	GraphID        string
	UserID         string
	IdempotencyKey string
}

// PromotionResult reports the outcome of an explicit promotion request.
// Failing eligibility is a normal result, not an error; MissingRequirements
// carries the gap descriptions in that case.
type PromotionResult struct {
	Success             bool
	GraphID             string
	Level               int
	AlreadyPromoted     bool
	Eligibility         entities.PromotionEligibility
	MissingRequirements []string
}

// PromotionUseCase is the only code path that mutates a graph's level. The
// transition is explicit: it never fires as a side effect of a vote or step
// completion, even when that mutation pushes the score over the threshold.
type PromotionUseCase struct {
	Graphs         ports.GraphRepository
	Events         ports.PromotionEventRepository
	Idempotency    ports.IdempotencyStore
	Evaluator      application.Evaluator
	Tx             ports.TransactionManager
	Cache          ports.EligibilityCache
	Publisher      ports.EventPublisher
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// RequestPromotion evaluates eligibility fresh (the cache is never consulted
// here) and applies level-N to level-N+1 under one transaction. Two guards
// keep the transition single-shot: a replayed idempotency key short-circuits
// before any write, and the level observed when the request arrived is
// re-checked inside the transaction, so a request that lost a concurrent
// race returns success with the already-achieved level instead of stacking
// a second increment.
func (uc PromotionUseCase) RequestPromotion(ctx context.Context, cmd RequestPromotionCommand) (PromotionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	graphID := strings.TrimSpace(cmd.GraphID)
	userID := strings.TrimSpace(cmd.UserID)
	idempotencyKey := strings.TrimSpace(cmd.IdempotencyKey)
	if userID == "" {
		return PromotionResult{}, domainerrors.ErrAuthenticationRequired
	}
	if graphID == "" {
		return PromotionResult{}, domainerrors.ErrValidation
	}
	if idempotencyKey == "" {
		logger.Warn("promotion request idempotency key missing",
			"event", "curation_promotion_idempotency_missing",
			"module", "knowledge-curation/promotion-engine",
			"layer", "application",
			"graph_id", graphID,
			"user_id", userID,
		)
		return PromotionResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.now()
	requestHash := hashPromotionCommand(graphID, userID)
	if record, found, err := uc.Idempotency.Get(ctx, idempotencyKey, now); err != nil {
		return PromotionResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			logger.Warn("promotion request idempotency conflict",
				"event", "curation_promotion_idempotency_conflict",
				"module", "knowledge-curation/promotion-engine",
				"layer", "application",
				"graph_id", graphID,
				"user_id", userID,
			)
			return PromotionResult{}, domainerrors.ErrIdempotencyConflict
		}
		logger.Info("promotion request replayed",
			"event", "curation_promotion_replayed",
			"module", "knowledge-curation/promotion-engine",
			"layer", "application",
			"graph_id", graphID,
			"user_id", userID,
			"level", record.ToLevel,
		)
		return PromotionResult{
			Success:         true,
			GraphID:         graphID,
			Level:           record.ToLevel,
			AlreadyPromoted: true,
		}, nil
	}

	observed, err := uc.Graphs.GetGraph(ctx, graphID)
	if err != nil {
		return PromotionResult{}, err
	}

	var result PromotionResult
	err = application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		graph, err := uc.Graphs.GetGraph(txCtx, graphID)
		if err != nil {
			return err
		}
		if graph.Level > observed.Level {
			// The level moved between request arrival and this transaction:
			// another request already performed the transition this caller
			// asked for. Record the key so a retry replays this outcome.
			if err := uc.Idempotency.Put(txCtx, ports.IdempotencyRecord{
				Key:         idempotencyKey,
				RequestHash: requestHash,
				GraphID:     graphID,
				ToLevel:     graph.Level,
				ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
			}); err != nil {
				return err
			}
			result = PromotionResult{
				Success:         true,
				GraphID:         graphID,
				Level:           graph.Level,
				AlreadyPromoted: true,
			}
			return nil
		}
		if graph.Immutable() {
			return domainerrors.ErrImmutableEntity
		}
		if graph.AtTerminalLevel() {
			return domainerrors.ErrTerminalLevel
		}

		eligibility, err := uc.Evaluator.Evaluate(txCtx, graph)
		if err != nil {
			return err
		}
		if !eligibility.IsEligible {
			result = PromotionResult{
				GraphID:             graphID,
				Level:               graph.Level,
				Eligibility:         eligibility,
				MissingRequirements: eligibility.MissingRequirements,
			}
			return nil
		}

		promoted, err := uc.Graphs.PromoteGraph(txCtx, graphID, graph.Level, now)
		if err != nil {
			return err
		}
		if !promoted {
			current, err := uc.Graphs.GetGraph(txCtx, graphID)
			if err != nil {
				return err
			}
			if current.Level > graph.Level {
				// Another request won the race; the transition and its
				// event already exist.
				if err := uc.Idempotency.Put(txCtx, ports.IdempotencyRecord{
					Key:         idempotencyKey,
					RequestHash: requestHash,
					GraphID:     graphID,
					ToLevel:     current.Level,
					ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
				}); err != nil {
					return err
				}
				result = PromotionResult{
					Success:         true,
					GraphID:         graphID,
					Level:           current.Level,
					AlreadyPromoted: true,
					Eligibility:     eligibility,
				}
				return nil
			}
			return domainerrors.ErrTransientConflict
		}

		eventID, err := uc.IDGen.NewID(txCtx)
		if err != nil {
			return err
		}
		if err := uc.Events.AppendPromotionEvent(txCtx, entities.PromotionEvent{
			EventID:          eventID,
			GraphID:          graphID,
			FromLevel:        graph.Level,
			ToLevel:          graph.Level + 1,
			RequestedBy:      userID,
			MethodologyScore: eligibility.MethodologyCompletionScore,
			ConsensusScore:   eligibility.ConsensusScore,
			EvidenceScore:    eligibility.EvidenceQualityScore,
			ChallengeScore:   eligibility.ChallengeResolutionScore,
			OverallScore:     eligibility.OverallScore,
			CreatedAt:        now,
		}); err != nil {
			return err
		}
		if err := uc.Idempotency.Put(txCtx, ports.IdempotencyRecord{
			Key:         idempotencyKey,
			RequestHash: requestHash,
			GraphID:     graphID,
			ToLevel:     graph.Level + 1,
			ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
		}); err != nil {
			return err
		}

		result = PromotionResult{
			Success:     true,
			GraphID:     graphID,
			Level:       graph.Level + 1,
			Eligibility: eligibility,
		}
		return nil
	})
	if err != nil {
		return PromotionResult{}, err
	}

	if result.Success && !result.AlreadyPromoted {
		if uc.Cache != nil {
			uc.Cache.Invalidate(graphID)
		}
		publishEvent(ctx, uc.Publisher, uc.IDGen, logger, TopicGraphPromoted, graphID, now, map[string]any{
			"graph_id":  graphID,
			"new_level": result.Level,
		})
	}

	logger.Info("promotion request processed",
		"event", "curation_promotion_processed",
		"module", "knowledge-curation/promotion-engine",
		"layer", "application",
		"graph_id", graphID,
		"user_id", userID,
		"success", result.Success,
		"level", result.Level,
		"already_promoted", result.AlreadyPromoted,
		"overall_score", result.Eligibility.OverallScore,
	)
	return result, nil
}

func (uc PromotionUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func (uc PromotionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func hashPromotionCommand(graphID string, userID string) string {
	payload, _ := json.Marshal(map[string]string{
		"graph_id": graphID,
		"user_id":  userID,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
