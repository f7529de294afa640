package application

import (
	"context"

	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// Evaluator assembles the eligibility snapshot from current stored data and
// scores it. Every call recomputes all four criteria fresh; nothing is
// incrementally patched. Repository calls join the caller's transaction when
// the context carries one.
type Evaluator struct {
	Methodology ports.MethodologyRepository
	Votes       ports.VoteRepository
	Evidence    ports.EvidenceReader
	Challenges  ports.ChallengeReader
}

func (e Evaluator) Evaluate(ctx context.Context, graph entities.ClaimGraph) (entities.PromotionEligibility, error) {
	snapshot := entities.EligibilitySnapshot{}

	if graph.MethodologyID != "" {
		steps, err := e.Methodology.ListSteps(ctx, graph.MethodologyID)
		if err != nil {
			return entities.PromotionEligibility{}, err
		}
		required := make(map[string]bool, len(steps))
		for _, step := range steps {
			if step.Required {
				required[step.StepID] = true
			}
		}
		snapshot.RequiredSteps = len(required)

		completions, err := e.Methodology.ListCompletions(ctx, graph.GraphID)
		if err != nil {
			return entities.PromotionEligibility{}, err
		}
		for _, completion := range completions {
			if required[completion.StepID] {
				snapshot.CompletedRequired++
			}
		}
	}

	votes, err := e.Votes.ListVotesByGraph(ctx, graph.GraphID)
	if err != nil {
		return entities.PromotionEligibility{}, err
	}
	snapshot.Votes = votes

	confidences, err := e.Evidence.ListEvidenceConfidences(ctx, graph.GraphID)
	if err != nil {
		return entities.PromotionEligibility{}, err
	}
	snapshot.EvidenceConfidences = confidences

	open, err := e.Challenges.CountOpenChallenges(ctx, graph.GraphID)
	if err != nil {
		return entities.PromotionEligibility{}, err
	}
	snapshot.OpenChallenges = open

	return entities.ComputeEligibility(snapshot), nil
}
