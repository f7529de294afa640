package inquiryservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	inquiryservice "veritas/contexts/challenge-resolution/inquiry-service"
	"veritas/contexts/challenge-resolution/inquiry-service/adapters/memory"
	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	domainerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	httptransport "veritas/contexts/challenge-resolution/inquiry-service/transport/http"
)

type invalidationRecorder struct {
	mu       sync.Mutex
	graphIDs []string
}

func (r *invalidationRecorder) Invalidate(graphID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphIDs = append(r.graphIDs, graphID)
}

func newHarness() (inquiryservice.Module, *memory.Store, *invalidationRecorder) {
	store := memory.NewStore()
	recorder := &invalidationRecorder{}
	module := inquiryservice.NewModule(inquiryservice.Dependencies{
		Inquiries:   store,
		Votes:       store,
		Credibility: store,
		Tx:          store,
		Eligibility: recorder,
		Clock:       store,
		IDGen:       store,
	})
	return module, store, recorder
}

func seedOpenInquiry(store *memory.Store) {
	now := time.Now().UTC()
	store.SetInquiry(entities.FormalInquiry{
		InquiryID:    "inquiry-1",
		GraphID:      "graph-1",
		TargetNodeID: "node-target",
		Status:       entities.InquiryStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func TestWriteConfidenceCapsAtWeakestEvidence(t *testing.T) {
	module, store, recorder := newHarness()
	seedOpenInquiry(store)
	store.SetReferencedCredibility("inquiry-1", []entities.NodeCredibility{
		{NodeID: "node-strong", Credibility: 0.9},
		{NodeID: "node-weak", Credibility: 0.6},
	})

	resp, err := module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-1", httptransport.WriteConfidenceRequest{
		RequestedScore: 0.95,
		Determination:  "challenge upheld",
		Rationale:      "weakest evidence does not support the claim strength",
	})
	if err != nil {
		t.Fatalf("write confidence failed: %v", err)
	}
	if resp.ConfidenceScore != 0.6 {
		t.Fatalf("stored score = %f, want capped 0.6", resp.ConfidenceScore)
	}
	if resp.MaxAllowedScore != 0.6 {
		t.Fatalf("max allowed = %f, want 0.6", resp.MaxAllowedScore)
	}
	if !resp.Capped {
		t.Fatalf("expected capped marker")
	}
	if resp.WeakestNodeID != "node-weak" {
		t.Fatalf("weakest node = %s, want node-weak", resp.WeakestNodeID)
	}
	if resp.Status != string(entities.InquiryStatusEvaluated) {
		t.Fatalf("status = %s, want evaluated", resp.Status)
	}
	if len(recorder.graphIDs) != 1 || recorder.graphIDs[0] != "graph-1" {
		t.Fatalf("invalidations = %v, want [graph-1]", recorder.graphIDs)
	}
}

func TestWriteConfidenceBelowCeilingNotCapped(t *testing.T) {
	module, store, _ := newHarness()
	seedOpenInquiry(store)
	store.SetReferencedCredibility("inquiry-1", []entities.NodeCredibility{
		{NodeID: "node-a", Credibility: 0.8},
	})

	resp, err := module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-1", httptransport.WriteConfidenceRequest{
		RequestedScore: 0.7,
	})
	if err != nil {
		t.Fatalf("write confidence failed: %v", err)
	}
	if resp.ConfidenceScore != 0.7 {
		t.Fatalf("stored score = %f, want 0.7", resp.ConfidenceScore)
	}
	if resp.Capped {
		t.Fatalf("score below ceiling must not be capped")
	}
}

func TestWriteConfidenceNoReferencesUncapped(t *testing.T) {
	module, store, _ := newHarness()
	seedOpenInquiry(store)

	resp, err := module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-1", httptransport.WriteConfidenceRequest{
		RequestedScore: 1,
	})
	if err != nil {
		t.Fatalf("write confidence failed: %v", err)
	}
	if resp.ConfidenceScore != 1 || resp.MaxAllowedScore != 1 {
		t.Fatalf("got score %f ceiling %f, want 1 and 1", resp.ConfidenceScore, resp.MaxAllowedScore)
	}
	if resp.Capped {
		t.Fatalf("expected uncapped without references")
	}
}

func TestWriteConfidenceValidation(t *testing.T) {
	module, store, _ := newHarness()
	seedOpenInquiry(store)

	_, err := module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-1", httptransport.WriteConfidenceRequest{
		RequestedScore: 1.2,
	})
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for out-of-range score", err)
	}

	_, err = module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-missing", httptransport.WriteConfidenceRequest{
		RequestedScore: 0.5,
	})
	if !errors.Is(err, domainerrors.ErrInquiryNotFound) {
		t.Fatalf("err = %v, want ErrInquiryNotFound", err)
	}
}

func TestResolveInquiryLifecycle(t *testing.T) {
	module, store, recorder := newHarness()
	seedOpenInquiry(store)

	// Open inquiries cannot be resolved directly.
	_, err := module.Handler.ResolveInquiryHandler(context.Background(), "inquiry-1", "moderator-1")
	if !errors.Is(err, domainerrors.ErrInquiryNotEvaluated) {
		t.Fatalf("err = %v, want ErrInquiryNotEvaluated", err)
	}

	if _, err := module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-1", httptransport.WriteConfidenceRequest{
		RequestedScore: 0.5,
	}); err != nil {
		t.Fatalf("write confidence failed: %v", err)
	}

	resolved, err := module.Handler.ResolveInquiryHandler(context.Background(), "inquiry-1", "moderator-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != string(entities.InquiryStatusResolved) {
		t.Fatalf("status = %s, want resolved", resolved.Status)
	}

	// Resolution busts eligibility for the challenged graph too.
	if len(recorder.graphIDs) != 2 {
		t.Fatalf("invalidations = %v, want two", recorder.graphIDs)
	}

	// Terminal states reject further writes.
	_, err = module.Handler.ResolveInquiryHandler(context.Background(), "inquiry-1", "moderator-1")
	if !errors.Is(err, domainerrors.ErrInquiryResolved) {
		t.Fatalf("err = %v, want ErrInquiryResolved on double resolve", err)
	}
	_, err = module.Handler.WriteConfidenceHandler(context.Background(), "inquiry-1", httptransport.WriteConfidenceRequest{
		RequestedScore: 0.4,
	})
	if !errors.Is(err, domainerrors.ErrInquiryResolved) {
		t.Fatalf("err = %v, want ErrInquiryResolved on write after resolve", err)
	}
}

func TestCastInquiryVoteUpsertsAndNeverTouchesConfidence(t *testing.T) {
	module, store, _ := newHarness()
	seedOpenInquiry(store)

	first, err := module.Handler.CastInquiryVoteHandler(context.Background(), "inquiry-1", "user-1", httptransport.InquiryVoteRequest{
		Stance: "agree",
	})
	if err != nil {
		t.Fatalf("cast inquiry vote failed: %v", err)
	}
	second, err := module.Handler.CastInquiryVoteHandler(context.Background(), "inquiry-1", "user-1", httptransport.InquiryVoteRequest{
		Stance: "disagree",
	})
	if err != nil {
		t.Fatalf("re-cast inquiry vote failed: %v", err)
	}
	if first.VoteID != second.VoteID {
		t.Fatalf("vote id changed on re-vote: %s then %s", first.VoteID, second.VoteID)
	}
	if second.Stance != "disagree" {
		t.Fatalf("stance = %s, want updated disagree", second.Stance)
	}

	inquiry, err := store.GetInquiry(context.Background(), "inquiry-1")
	if err != nil {
		t.Fatalf("get inquiry failed: %v", err)
	}
	if inquiry.ConfidenceScore != 0 || inquiry.Status != entities.InquiryStatusOpen {
		t.Fatalf("votes must not change confidence or status, got %f %s", inquiry.ConfidenceScore, inquiry.Status)
	}

	_, err = module.Handler.CastInquiryVoteHandler(context.Background(), "inquiry-1", "user-1", httptransport.InquiryVoteRequest{
		Stance: "maybe",
	})
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for unknown stance", err)
	}
}
