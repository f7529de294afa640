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

// CastVoteCommand is the write-model input for casting or replacing a
// consensus vote.
type CastVoteCommand struct {
	GraphID   string
	UserID    string
	Value     float64
	Reasoning string
}

// CastVoteResult returns final vote state and an update marker the transport
// layer maps to API semantics.
type CastVoteResult struct {
	Vote      entities.ConsensusVote
	WasUpdate bool
}

// VoteUseCase orchestrates consensus vote writes: value validation,
// reputation-weight snapshotting, upsert per (graph, user), cache
// invalidation, and eligibility event emission.
type VoteUseCase struct {
	Graphs     ports.GraphRepository
	Votes      ports.VoteRepository
	Reputation ports.ReputationReader
	Tx         ports.TransactionManager
	Cache      ports.EligibilityCache
	Publisher  ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// CastVote creates or replaces the caller's vote for a graph. The vote weight
// is snapshotted from current reputation at cast time, floored at the
// minimum; later reputation changes never rewrite historical consensus.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	graphID := strings.TrimSpace(cmd.GraphID)
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return CastVoteResult{}, domainerrors.ErrAuthenticationRequired
	}
	if graphID == "" || cmd.Value < 0 || cmd.Value > 1 {
		logger.Warn("vote cast validation failed",
			"event", "curation_vote_cast_validation_failed",
			"module", "knowledge-curation/promotion-engine",
			"layer", "application",
			"graph_id", graphID,
			"user_id", userID,
			"value", cmd.Value,
		)
		return CastVoteResult{}, domainerrors.ErrValidation
	}

	now := uc.now()
	var result CastVoteResult
	err := application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		graph, err := uc.Graphs.GetGraph(txCtx, graphID)
		if err != nil {
			return err
		}
		if graph.Immutable() {
			return domainerrors.ErrImmutableEntity
		}

		snapshot, err := uc.reputationSnapshot(txCtx, userID)
		if err != nil {
			return err
		}
		vote := entities.ConsensusVote{
			GraphID:            graphID,
			UserID:             userID,
			Value:              cmd.Value,
			Weight:             entities.VoteWeight(snapshot),
			ReputationSnapshot: snapshot,
			Reasoning:          strings.TrimSpace(cmd.Reasoning),
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		existing, found, err := uc.Votes.GetVoteByIdentity(txCtx, graphID, userID)
		if err != nil {
			return err
		}
		if found {
			vote.VoteID = existing.VoteID
			vote.CreatedAt = existing.CreatedAt
		} else {
			voteID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			vote.VoteID = voteID
		}
		if err := uc.Votes.UpsertVote(txCtx, vote); err != nil {
			return err
		}
		result = CastVoteResult{Vote: vote, WasUpdate: found}
		return nil
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	if uc.Cache != nil {
		uc.Cache.Invalidate(graphID)
	}
	publishEvent(ctx, uc.Publisher, uc.IDGen, logger, TopicEligibilityUpdated, graphID, now, map[string]any{
		"graph_id": graphID,
		"reason":   "vote_cast",
	})

	logger.Info("consensus vote stored",
		"event", "curation_vote_stored",
		"module", "knowledge-curation/promotion-engine",
		"layer", "application",
		"vote_id", result.Vote.VoteID,
		"graph_id", graphID,
		"user_id", userID,
		"value", result.Vote.Value,
		"weight", result.Vote.Weight,
		"was_update", result.WasUpdate,
	)
	return result, nil
}

// RemoveVote deletes the caller's vote if present. An absent vote is not an
// error so client retries stay safe.
func (uc VoteUseCase) RemoveVote(ctx context.Context, graphID string, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	graphID = strings.TrimSpace(graphID)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrAuthenticationRequired
	}
	if graphID == "" {
		return domainerrors.ErrValidation
	}

	err := application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		graph, err := uc.Graphs.GetGraph(txCtx, graphID)
		if err != nil {
			return err
		}
		if graph.Immutable() {
			return domainerrors.ErrImmutableEntity
		}
		return uc.Votes.DeleteVote(txCtx, graphID, userID)
	})
	if err != nil {
		return err
	}

	if uc.Cache != nil {
		uc.Cache.Invalidate(graphID)
	}
	publishEvent(ctx, uc.Publisher, uc.IDGen, logger, TopicEligibilityUpdated, graphID, uc.now(), map[string]any{
		"graph_id": graphID,
		"reason":   "vote_removed",
	})

	logger.Info("consensus vote removed",
		"event", "curation_vote_removed",
		"module", "knowledge-curation/promotion-engine",
		"layer", "application",
		"graph_id", graphID,
		"user_id", userID,
	)
	return nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// reputationSnapshot reads the voter's current reputation. A read failure
// aborts the cast: the snapshot is permanent once stored, so a fallback
// weight would misrecord this voter in every future consensus score. An
// unknown user legitimately has zero reputation and takes the floor weight.
func (uc VoteUseCase) reputationSnapshot(ctx context.Context, userID string) (float64, error) {
	logger := application.ResolveLogger(uc.Logger)
	score, found, err := uc.Reputation.GetReputationScore(ctx, userID)
	if err != nil {
		logger.Error("reputation lookup failed; aborting vote cast",
			"event", "curation_reputation_lookup_failed",
			"module", "knowledge-curation/promotion-engine",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return score, nil
}
