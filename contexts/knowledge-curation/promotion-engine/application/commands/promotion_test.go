package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"veritas/contexts/knowledge-curation/promotion-engine/application"
	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// racingGraphs simulates a concurrent winner: the optimistic increment fails
// because another request already advanced the level between the in-transaction
// read and the write.
type racingGraphs struct {
	reads int
}

func (r *racingGraphs) GetGraph(_ context.Context, graphID string) (entities.ClaimGraph, error) {
	r.reads++
	level := 1
	if r.reads > 2 {
		level = 2
	}
	return entities.ClaimGraph{
		GraphID:       graphID,
		Level:         level,
		MethodologyID: "methodology-1",
	}, nil
}

func (r *racingGraphs) PromoteGraph(context.Context, string, int, time.Time) (bool, error) {
	return false, nil
}

// contendedGraphs holds every request in its first read until all of them have
// observed the starting level, then lets exactly one increment land.
type contendedGraphs struct {
	mu       sync.Mutex
	level    int
	promoted bool
	callers  int
	arrivals int
	barrier  chan struct{}
}

func (g *contendedGraphs) GetGraph(_ context.Context, graphID string) (entities.ClaimGraph, error) {
	g.mu.Lock()
	g.arrivals++
	if g.arrivals == g.callers {
		close(g.barrier)
	}
	level := g.level
	g.mu.Unlock()
	<-g.barrier
	return entities.ClaimGraph{
		GraphID:       graphID,
		Level:         level,
		MethodologyID: "methodology-1",
	}, nil
}

func (g *contendedGraphs) PromoteGraph(_ context.Context, _ string, fromLevel int, _ time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.promoted || g.level != fromLevel {
		return false, nil
	}
	g.level++
	g.promoted = true
	return true, nil
}

type eligibleWorld struct{}

func (eligibleWorld) GetStep(context.Context, string) (entities.MethodologyStep, error) {
	return entities.MethodologyStep{}, domainerrors.ErrStepNotFound
}

func (eligibleWorld) ListSteps(context.Context, string) ([]entities.MethodologyStep, error) {
	return []entities.MethodologyStep{
		{StepID: "step-1", MethodologyID: "methodology-1", Required: true},
	}, nil
}

func (eligibleWorld) SaveCompletion(context.Context, entities.StepCompletion) error { return nil }

func (eligibleWorld) ListCompletions(context.Context, string) ([]entities.StepCompletion, error) {
	return []entities.StepCompletion{{StepID: "step-1"}}, nil
}

func (eligibleWorld) UpsertVote(context.Context, entities.ConsensusVote) error { return nil }

func (eligibleWorld) GetVoteByIdentity(context.Context, string, string) (entities.ConsensusVote, bool, error) {
	return entities.ConsensusVote{}, false, nil
}

func (eligibleWorld) ListVotesByGraph(context.Context, string) ([]entities.ConsensusVote, error) {
	return []entities.ConsensusVote{{Value: 0.9, Weight: 1}}, nil
}

func (eligibleWorld) DeleteVote(context.Context, string, string) error { return nil }

func (eligibleWorld) ListEvidenceConfidences(context.Context, string) ([]float64, error) {
	return []float64{0.9}, nil
}

func (eligibleWorld) CountOpenChallenges(context.Context, string) (int, error) { return 0, nil }

type recordingEvents struct {
	mu       sync.Mutex
	appended []entities.PromotionEvent
}

func (r *recordingEvents) AppendPromotionEvent(_ context.Context, event entities.PromotionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, event)
	return nil
}

func (r *recordingEvents) ListPromotionEvents(context.Context, string) ([]entities.PromotionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appended, nil
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appended)
}

type memIdempotency struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{records: make(map[string]ports.IdempotencyRecord)}
}

func (m *memIdempotency) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, exists := m.records[key]
	if !exists || !record.ExpiresAt.After(now) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (m *memIdempotency) Put(_ context.Context, record ports.IdempotencyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Key] = record
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedIDs struct{}

func (fixedIDs) NewID(context.Context) (string, error) { return "id-1", nil }

func newPromotionUseCase(graphs ports.GraphRepository, events ports.PromotionEventRepository) PromotionUseCase {
	return PromotionUseCase{
		Graphs:      graphs,
		Events:      events,
		Idempotency: newMemIdempotency(),
		Evaluator: application.Evaluator{
			Methodology: eligibleWorld{},
			Votes:       eligibleWorld{},
			Evidence:    eligibleWorld{},
			Challenges:  eligibleWorld{},
		},
		Tx:    passthroughTx{},
		IDGen: fixedIDs{},
	}
}

func TestRequestPromotionRaceLoserReturnsAchievedLevel(t *testing.T) {
	graphs := &racingGraphs{}
	events := &recordingEvents{}
	uc := newPromotionUseCase(graphs, events)

	result, err := uc.RequestPromotion(context.Background(), RequestPromotionCommand{
		GraphID:        "graph-1",
		UserID:         "user-1",
		IdempotencyKey: "req-1",
	})
	if err != nil {
		t.Fatalf("race loser must not error: %v", err)
	}
	if !result.Success {
		t.Fatalf("race loser must report success")
	}
	if !result.AlreadyPromoted {
		t.Fatalf("expected AlreadyPromoted marker")
	}
	if result.Level != 2 {
		t.Fatalf("level = %d, want achieved level 2", result.Level)
	}
	if events.count() != 0 {
		t.Fatalf("race loser appended %d events, want 0", events.count())
	}
}

func TestConcurrentPromotionRequestsIncrementOnce(t *testing.T) {
	const callers = 3
	graphs := &contendedGraphs{
		level:   1,
		callers: callers,
		barrier: make(chan struct{}),
	}
	events := &recordingEvents{}
	uc := newPromotionUseCase(graphs, events)

	results := make([]PromotionResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.RequestPromotion(context.Background(), RequestPromotionCommand{
				GraphID:        "graph-1",
				UserID:         "user-1",
				IdempotencyKey: fmt.Sprintf("req-%d", i),
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d errored: %v", i, errs[i])
		}
		if !results[i].Success {
			t.Fatalf("request %d must report success", i)
		}
		if results[i].Level != 2 {
			t.Fatalf("request %d level = %d, want 2", i, results[i].Level)
		}
		if !results[i].AlreadyPromoted {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	if graphs.level != 2 {
		t.Fatalf("final level = %d, want a single increment to 2", graphs.level)
	}
	if events.count() != 1 {
		t.Fatalf("events = %d, want exactly 1", events.count())
	}
}

func TestRequestPromotionReplaysOnSameKey(t *testing.T) {
	graphs := &contendedGraphs{
		level:   1,
		callers: 1,
		barrier: make(chan struct{}),
	}
	events := &recordingEvents{}
	uc := newPromotionUseCase(graphs, events)
	cmd := RequestPromotionCommand{GraphID: "graph-1", UserID: "user-1", IdempotencyKey: "req-1"}

	first, err := uc.RequestPromotion(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if !first.Success || first.AlreadyPromoted || first.Level != 2 {
		t.Fatalf("first request = %+v, want fresh success at level 2", first)
	}

	second, err := uc.RequestPromotion(context.Background(), cmd)
	if err != nil {
		t.Fatalf("replayed request failed: %v", err)
	}
	if !second.Success || !second.AlreadyPromoted || second.Level != 2 {
		t.Fatalf("replay = %+v, want already-promoted at level 2", second)
	}
	if graphs.level != 2 {
		t.Fatalf("final level = %d, replay must not promote again", graphs.level)
	}
	if events.count() != 1 {
		t.Fatalf("events = %d, want exactly 1", events.count())
	}
}

func TestRequestPromotionRejectsReusedKeyForOtherRequest(t *testing.T) {
	graphs := &contendedGraphs{
		level:   1,
		callers: 1,
		barrier: make(chan struct{}),
	}
	uc := newPromotionUseCase(graphs, &recordingEvents{})

	if _, err := uc.RequestPromotion(context.Background(), RequestPromotionCommand{
		GraphID: "graph-1", UserID: "user-1", IdempotencyKey: "req-1",
	}); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	_, err := uc.RequestPromotion(context.Background(), RequestPromotionCommand{
		GraphID: "graph-1", UserID: "user-2", IdempotencyKey: "req-1",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want ErrIdempotencyConflict", err)
	}
}

func TestRequestPromotionRequiresIdempotencyKey(t *testing.T) {
	uc := newPromotionUseCase(&racingGraphs{}, &recordingEvents{})
	_, err := uc.RequestPromotion(context.Background(), RequestPromotionCommand{
		GraphID: "graph-1",
		UserID:  "user-1",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("err = %v, want ErrIdempotencyKeyRequired", err)
	}
}

// stuckGraphs fails the optimistic write while the level never moves, the
// shape of a serialization conflict rather than a lost race.
type stuckGraphs struct{}

func (stuckGraphs) GetGraph(_ context.Context, graphID string) (entities.ClaimGraph, error) {
	return entities.ClaimGraph{GraphID: graphID, Level: 1, MethodologyID: "methodology-1"}, nil
}

func (stuckGraphs) PromoteGraph(context.Context, string, int, time.Time) (bool, error) {
	return false, nil
}

func TestRequestPromotionConflictWithoutProgressIsInternal(t *testing.T) {
	uc := newPromotionUseCase(stuckGraphs{}, &recordingEvents{})

	_, err := uc.RequestPromotion(context.Background(), RequestPromotionCommand{
		GraphID:        "graph-1",
		UserID:         "user-1",
		IdempotencyKey: "req-1",
	})
	if !errors.Is(err, domainerrors.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal after retry exhaustion", err)
	}
}
