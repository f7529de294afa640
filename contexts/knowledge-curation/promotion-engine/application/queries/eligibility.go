package queries

import (
	"context"
	"strings"

	application "veritas/contexts/knowledge-curation/promotion-engine/application"
	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// EligibilityQueries serves read paths: fresh evaluation, cached evaluation
// for progress displays, consensus summaries, and the promotion ledger.
type EligibilityQueries struct {
	Graphs    ports.GraphRepository
	Votes     ports.VoteRepository
	Events    ports.PromotionEventRepository
	Evaluator application.Evaluator
	Cache     ports.EligibilityCache
}

// Evaluate recomputes eligibility from current stored data.
func (q EligibilityQueries) Evaluate(ctx context.Context, graphID string) (entities.PromotionEligibility, error) {
	graphID = strings.TrimSpace(graphID)
	if graphID == "" {
		return entities.PromotionEligibility{}, domainerrors.ErrValidation
	}
	graph, err := q.Graphs.GetGraph(ctx, graphID)
	if err != nil {
		return entities.PromotionEligibility{}, err
	}
	return q.Evaluator.Evaluate(ctx, graph)
}

// GetOrCompute serves eligibility through the TTL cache. Staleness here is
// acceptable for display reads; promotion never goes through this path.
func (q EligibilityQueries) GetOrCompute(ctx context.Context, graphID string) (entities.PromotionEligibility, error) {
	graphID = strings.TrimSpace(graphID)
	if graphID == "" {
		return entities.PromotionEligibility{}, domainerrors.ErrValidation
	}
	if q.Cache != nil {
		if cached, found := q.Cache.Get(graphID); found {
			return cached, nil
		}
	}
	eligibility, err := q.Evaluate(ctx, graphID)
	if err != nil {
		return entities.PromotionEligibility{}, err
	}
	if q.Cache != nil {
		q.Cache.Set(graphID, eligibility)
	}
	return eligibility, nil
}

// GetConsensus returns the raw weighted consensus for a graph alongside the
// minimum-vote "reached" marker used by displays.
func (q EligibilityQueries) GetConsensus(ctx context.Context, graphID string) (entities.ConsensusSummary, error) {
	graphID = strings.TrimSpace(graphID)
	if graphID == "" {
		return entities.ConsensusSummary{}, domainerrors.ErrValidation
	}
	if _, err := q.Graphs.GetGraph(ctx, graphID); err != nil {
		return entities.ConsensusSummary{}, err
	}
	votes, err := q.Votes.ListVotesByGraph(ctx, graphID)
	if err != nil {
		return entities.ConsensusSummary{}, err
	}
	return entities.SummarizeConsensus(graphID, votes), nil
}

// ListPromotionEvents reads the append-only promotion ledger.
func (q EligibilityQueries) ListPromotionEvents(ctx context.Context, graphID string) ([]entities.PromotionEvent, error) {
	graphID = strings.TrimSpace(graphID)
	if graphID == "" {
		return nil, domainerrors.ErrValidation
	}
	if _, err := q.Graphs.GetGraph(ctx, graphID); err != nil {
		return nil, err
	}
	return q.Events.ListPromotionEvents(ctx, graphID)
}
