package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"veritas/contexts/knowledge-curation/promotion-engine/application/commands"
	"veritas/contexts/knowledge-curation/promotion-engine/application/queries"
	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	httptransport "veritas/contexts/knowledge-curation/promotion-engine/transport/http"
)

type Handler struct {
	Votes      commands.VoteUseCase
	Steps      commands.StepUseCase
	Promotions commands.PromotionUseCase
	Queries    queries.EligibilityQueries
	Logger     *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	graphID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		GraphID:   graphID,
		UserID:    userID,
		Value:     req.Value,
		Reasoning: req.Reasoning,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:             result.Vote.VoteID,
		GraphID:            result.Vote.GraphID,
		UserID:             result.Vote.UserID,
		Value:              result.Vote.Value,
		Weight:             result.Vote.Weight,
		ReputationSnapshot: result.Vote.ReputationSnapshot,
		Reasoning:          result.Vote.Reasoning,
		WasUpdate:          result.WasUpdate,
	}, nil
}

func (h Handler) RemoveVoteHandler(ctx context.Context, graphID string, userID string) error {
	return h.Votes.RemoveVote(ctx, graphID, userID)
}

func (h Handler) CompleteStepHandler(ctx context.Context, graphID string, stepID string, userID string) error {
	return h.Steps.CompleteStep(ctx, graphID, stepID, userID)
}

func (h Handler) RequestPromotionHandler(ctx context.Context, graphID string, userID string, idempotencyKey string) (httptransport.PromotionResponse, error) {
	result, err := h.Promotions.RequestPromotion(ctx, commands.RequestPromotionCommand{
		GraphID:        graphID,
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.PromotionResponse{}, err
	}
	return httptransport.PromotionResponse{
		Success:             result.Success,
		GraphID:             result.GraphID,
		Level:               result.Level,
		AlreadyPromoted:     result.AlreadyPromoted,
		MissingRequirements: result.MissingRequirements,
	}, nil
}

// EligibilityHandler serves display reads through the TTL cache.
func (h Handler) EligibilityHandler(ctx context.Context, graphID string) (httptransport.EligibilityResponse, error) {
	eligibility, err := h.Queries.GetOrCompute(ctx, graphID)
	if err != nil {
		return httptransport.EligibilityResponse{}, err
	}
	return mapEligibility(graphID, eligibility), nil
}

// EvaluateHandler bypasses the cache for callers that need a fresh verdict.
func (h Handler) EvaluateHandler(ctx context.Context, graphID string) (httptransport.EligibilityResponse, error) {
	eligibility, err := h.Queries.Evaluate(ctx, graphID)
	if err != nil {
		return httptransport.EligibilityResponse{}, err
	}
	return mapEligibility(graphID, eligibility), nil
}

func (h Handler) ConsensusHandler(ctx context.Context, graphID string) (httptransport.ConsensusResponse, error) {
	summary, err := h.Queries.GetConsensus(ctx, graphID)
	if err != nil {
		return httptransport.ConsensusResponse{}, err
	}
	return httptransport.ConsensusResponse{
		GraphID:   summary.GraphID,
		Score:     summary.Score,
		VoteCount: summary.VoteCount,
		Reached:   summary.Reached,
	}, nil
}

func (h Handler) PromotionLedgerHandler(ctx context.Context, graphID string) (httptransport.PromotionLedgerResponse, error) {
	events, err := h.Queries.ListPromotionEvents(ctx, graphID)
	if err != nil {
		return httptransport.PromotionLedgerResponse{}, err
	}
	items := make([]httptransport.PromotionEventItem, 0, len(events))
	for _, event := range events {
		items = append(items, httptransport.PromotionEventItem{
			EventID:          event.EventID,
			GraphID:          event.GraphID,
			FromLevel:        event.FromLevel,
			ToLevel:          event.ToLevel,
			RequestedBy:      event.RequestedBy,
			MethodologyScore: event.MethodologyScore,
			ConsensusScore:   event.ConsensusScore,
			EvidenceScore:    event.EvidenceScore,
			ChallengeScore:   event.ChallengeScore,
			OverallScore:     event.OverallScore,
			CreatedAt:        event.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.PromotionLedgerResponse{
		GraphID: graphID,
		Items:   items,
	}, nil
}

func mapEligibility(graphID string, eligibility entities.PromotionEligibility) httptransport.EligibilityResponse {
	return httptransport.EligibilityResponse{
		GraphID:                    graphID,
		MethodologyCompletionScore: eligibility.MethodologyCompletionScore,
		ConsensusScore:             eligibility.ConsensusScore,
		EvidenceQualityScore:       eligibility.EvidenceQualityScore,
		ChallengeResolutionScore:   eligibility.ChallengeResolutionScore,
		OverallScore:               eligibility.OverallScore,
		IsEligible:                 eligibility.IsEligible,
		MissingRequirements:        eligibility.MissingRequirements,
	}
}
