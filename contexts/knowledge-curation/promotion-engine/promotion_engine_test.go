package promotionengine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	promotionengine "veritas/contexts/knowledge-curation/promotion-engine"
	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	httptransport "veritas/contexts/knowledge-curation/promotion-engine/transport/http"
)

func seedGraph(module promotionengine.Module, level int) {
	now := time.Now().UTC()
	module.Store.SetGraph(entities.ClaimGraph{
		GraphID:       "graph-1",
		Title:         "Ocean acidification drives coral bleaching",
		OwnerID:       "owner-1",
		Level:         level,
		MethodologyID: "methodology-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	module.Store.SetStep(entities.MethodologyStep{
		StepID:        "step-1",
		MethodologyID: "methodology-1",
		Name:          "Define hypothesis",
		Required:      true,
	})
	module.Store.SetStep(entities.MethodologyStep{
		StepID:        "step-2",
		MethodologyID: "methodology-1",
		Name:          "Collect evidence",
		Required:      true,
	})
}

func TestCastVoteSnapshotsWeight(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	module.Store.SetReputationScore("user-1", 0.85)

	resp, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-1", httptransport.CastVoteRequest{
		Value: 0.9,
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if resp.Weight != 0.85 {
		t.Fatalf("weight = %f, want reputation 0.85", resp.Weight)
	}
	if resp.ReputationSnapshot != 0.85 {
		t.Fatalf("snapshot = %f, want 0.85", resp.ReputationSnapshot)
	}
	if resp.WasUpdate {
		t.Fatalf("first cast must not be an update")
	}
}

func TestCastVoteFloorsLowReputation(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	module.Store.SetReputationScore("user-low", 0.1)

	resp, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-low", httptransport.CastVoteRequest{
		Value: 0.4,
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if resp.Weight != entities.MinVoteWeight {
		t.Fatalf("weight = %f, want floor %f", resp.Weight, entities.MinVoteWeight)
	}
	if resp.ReputationSnapshot != 0.1 {
		t.Fatalf("snapshot = %f, want raw reputation 0.1", resp.ReputationSnapshot)
	}

	// Unknown voters get the floor too.
	anon, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-unknown", httptransport.CastVoteRequest{
		Value: 0.4,
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if anon.Weight != entities.MinVoteWeight {
		t.Fatalf("weight = %f, want floor for unknown voter", anon.Weight)
	}
}

func TestCastVoteUpsertsPerIdentity(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	module.Store.SetReputationScore("user-1", 0.9)

	first, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-1", httptransport.CastVoteRequest{
		Value: 0.2,
	})
	if err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	second, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-1", httptransport.CastVoteRequest{
		Value: 0.8,
	})
	if err != nil {
		t.Fatalf("second cast failed: %v", err)
	}
	if !second.WasUpdate {
		t.Fatalf("expected second cast to update in place")
	}
	if first.VoteID != second.VoteID {
		t.Fatalf("vote id changed on update: %s then %s", first.VoteID, second.VoteID)
	}

	summary, err := module.Handler.ConsensusHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("consensus failed: %v", err)
	}
	if summary.VoteCount != 1 {
		t.Fatalf("vote count = %d, want 1 after re-vote", summary.VoteCount)
	}
	if summary.Score != 0.8 {
		t.Fatalf("score = %f, want latest value 0.8", summary.Score)
	}
}

func TestRemoveVoteIsIdempotent(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)

	if _, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-1", httptransport.CastVoteRequest{Value: 0.5}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if err := module.Handler.RemoveVoteHandler(context.Background(), "graph-1", "user-1"); err != nil {
		t.Fatalf("remove vote failed: %v", err)
	}
	if err := module.Handler.RemoveVoteHandler(context.Background(), "graph-1", "user-1"); err != nil {
		t.Fatalf("second remove must stay safe: %v", err)
	}

	summary, err := module.Handler.ConsensusHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("consensus failed: %v", err)
	}
	if summary.VoteCount != 0 {
		t.Fatalf("vote count = %d, want 0 after removal", summary.VoteCount)
	}
}

func TestVoteOnGroundTruthGraphRejected(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 0)

	_, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-1", httptransport.CastVoteRequest{Value: 0.5})
	if !errors.Is(err, domainerrors.ErrImmutableEntity) {
		t.Fatalf("err = %v, want ErrImmutableEntity", err)
	}
}

func TestCompleteStepDuplicateRejected(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)

	if err := module.Handler.CompleteStepHandler(context.Background(), "graph-1", "step-1", "user-1"); err != nil {
		t.Fatalf("complete step failed: %v", err)
	}
	err := module.Handler.CompleteStepHandler(context.Background(), "graph-1", "step-1", "user-2")
	if !errors.Is(err, domainerrors.ErrDuplicateCompletion) {
		t.Fatalf("err = %v, want ErrDuplicateCompletion", err)
	}
}

func TestCompleteStepFromOtherMethodologyRejected(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	module.Store.SetStep(entities.MethodologyStep{
		StepID:        "step-other",
		MethodologyID: "methodology-other",
		Name:          "Unrelated",
		Required:      true,
	})

	err := module.Handler.CompleteStepHandler(context.Background(), "graph-1", "step-other", "user-1")
	if !errors.Is(err, domainerrors.ErrStepNotFound) {
		t.Fatalf("err = %v, want ErrStepNotFound", err)
	}
}

func seedEligible(module promotionengine.Module) {
	seedGraph(module, 1)
	module.Store.SetEvidenceConfidences("graph-1", []float64{0.9, 0.85})
	module.Store.SetOpenChallenges("graph-1", 0)
	for _, userID := range []string{"user-1", "user-2", "user-3"} {
		module.Store.SetReputationScore(userID, 0.9)
	}
	for _, userID := range []string{"user-1", "user-2", "user-3"} {
		if _, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", userID, httptransport.CastVoteRequest{Value: 0.9}); err != nil {
			panic(err)
		}
	}
	for _, stepID := range []string{"step-1", "step-2"} {
		if err := module.Handler.CompleteStepHandler(context.Background(), "graph-1", stepID, "user-1"); err != nil {
			panic(err)
		}
	}
}

func TestRequestPromotionSucceedsAndWritesOneEvent(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedEligible(module)

	resp, err := module.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-1")
	if err != nil {
		t.Fatalf("promotion failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, missing: %v", resp.MissingRequirements)
	}
	if resp.Level != 2 {
		t.Fatalf("level = %d, want 2", resp.Level)
	}

	ledger, err := module.Handler.PromotionLedgerHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("ledger failed: %v", err)
	}
	if len(ledger.Items) != 1 {
		t.Fatalf("events = %d, want exactly 1", len(ledger.Items))
	}
	event := ledger.Items[0]
	if event.FromLevel != 1 || event.ToLevel != 2 {
		t.Fatalf("event transition %d->%d, want 1->2", event.FromLevel, event.ToLevel)
	}
	if event.RequestedBy != "user-1" {
		t.Fatalf("requested_by = %s, want user-1", event.RequestedBy)
	}
	if event.OverallScore < entities.EligibilityThreshold {
		t.Fatalf("overall score = %f, want >= threshold", event.OverallScore)
	}
}

func TestRequestPromotionRetryIsNoOp(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedEligible(module)

	first, err := module.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-1")
	if err != nil {
		t.Fatalf("promotion failed: %v", err)
	}
	if !first.Success || first.Level != 2 {
		t.Fatalf("first request = %+v, want success at level 2", first)
	}

	// A resent request replays the committed transition; the graph stays
	// eligible, so a second increment here would climb another tier.
	retry, err := module.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-1")
	if err != nil {
		t.Fatalf("retried promotion failed: %v", err)
	}
	if !retry.Success || !retry.AlreadyPromoted {
		t.Fatalf("retry = %+v, want already-promoted success", retry)
	}
	if retry.Level != 2 {
		t.Fatalf("retry level = %d, want 2", retry.Level)
	}

	ledger, err := module.Handler.PromotionLedgerHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("ledger failed: %v", err)
	}
	if len(ledger.Items) != 1 {
		t.Fatalf("events = %d, retry must not append a second event", len(ledger.Items))
	}

	// A fresh key is a new request and may legitimately promote again.
	next, err := module.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-2")
	if err != nil {
		t.Fatalf("follow-up promotion failed: %v", err)
	}
	if !next.Success || next.AlreadyPromoted || next.Level != 3 {
		t.Fatalf("follow-up = %+v, want fresh success at level 3", next)
	}
}

func TestRequestPromotionIneligibleReturnsGaps(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	// No votes, no evidence, no completions.

	resp, err := module.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-1")
	if err != nil {
		t.Fatalf("promotion request failed: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected ineligible result")
	}
	if resp.Level != 1 {
		t.Fatalf("level = %d, want unchanged 1", resp.Level)
	}
	if len(resp.MissingRequirements) == 0 {
		t.Fatalf("expected missing requirement descriptions")
	}

	ledger, err := module.Handler.PromotionLedgerHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("ledger failed: %v", err)
	}
	if len(ledger.Items) != 0 {
		t.Fatalf("events = %d, want none for failed request", len(ledger.Items))
	}
}

func TestRequestPromotionGroundTruthAndTerminal(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 0)
	if _, err := module.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-1"); !errors.Is(err, domainerrors.ErrImmutableEntity) {
		t.Fatalf("err = %v, want ErrImmutableEntity at level 0", err)
	}

	terminal := promotionengine.NewInMemoryModule(nil)
	seedGraph(terminal, entities.MaxPromotionLevel)
	if _, err := terminal.Handler.RequestPromotionHandler(context.Background(), "graph-1", "user-1", "req-1"); !errors.Is(err, domainerrors.ErrTerminalLevel) {
		t.Fatalf("err = %v, want ErrTerminalLevel at max level", err)
	}
}

func TestEligibilityCacheInvalidatedByVote(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	module.Store.SetEvidenceConfidences("graph-1", []float64{0.9})

	first, err := module.Handler.EligibilityHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if first.ConsensusScore != 0 {
		t.Fatalf("consensus = %f, want 0 before votes", first.ConsensusScore)
	}

	// A direct store write does not bust the cache; the stale read is
	// expected within the TTL.
	module.Store.SetEvidenceConfidences("graph-1", []float64{0.1})
	stale, err := module.Handler.EligibilityHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if stale.EvidenceQualityScore != first.EvidenceQualityScore {
		t.Fatalf("expected cached evidence score %f, got %f", first.EvidenceQualityScore, stale.EvidenceQualityScore)
	}

	// Casting a vote invalidates, so the next read recomputes everything.
	if _, err := module.Handler.CastVoteHandler(context.Background(), "graph-1", "user-1", httptransport.CastVoteRequest{Value: 1}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	fresh, err := module.Handler.EligibilityHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if fresh.EvidenceQualityScore != 0.1 {
		t.Fatalf("evidence score = %f, want recomputed 0.1", fresh.EvidenceQualityScore)
	}
	if fresh.ConsensusScore != 1 {
		t.Fatalf("consensus = %f, want 1 after vote", fresh.ConsensusScore)
	}
}

func TestEvaluateBypassesCache(t *testing.T) {
	module := promotionengine.NewInMemoryModule(nil)
	seedGraph(module, 1)
	module.Store.SetEvidenceConfidences("graph-1", []float64{0.9})

	if _, err := module.Handler.EligibilityHandler(context.Background(), "graph-1"); err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	module.Store.SetEvidenceConfidences("graph-1", []float64{0.2})

	fresh, err := module.Handler.EvaluateHandler(context.Background(), "graph-1")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if fresh.EvidenceQualityScore != 0.2 {
		t.Fatalf("evidence score = %f, want fresh 0.2", fresh.EvidenceQualityScore)
	}
}
