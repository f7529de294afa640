package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// Store is the in-memory adapter used by tests and local wiring. The
// transaction mutex serializes units of work, which is stronger than the
// store contract requires and keeps the optimistic promotion check honest
// under concurrent goroutines.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	graphs      map[string]entities.ClaimGraph
	votes       map[string]entities.ConsensusVote
	steps       map[string]entities.MethodologyStep
	completions map[string]entities.StepCompletion
	events      []entities.PromotionEvent
	evidence    map[string][]float64
	challenges  map[string]int
	reputation  map[string]float64
	idempotency map[string]ports.IdempotencyRecord
}

func NewStore() *Store {
	return &Store{
		graphs:      make(map[string]entities.ClaimGraph),
		votes:       make(map[string]entities.ConsensusVote),
		steps:       make(map[string]entities.MethodologyStep),
		completions: make(map[string]entities.StepCompletion),
		evidence:    make(map[string][]float64),
		challenges:  make(map[string]int),
		reputation:  make(map[string]float64),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) SetGraph(graph entities.ClaimGraph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[strings.TrimSpace(graph.GraphID)] = graph
}

func (s *Store) SetStep(step entities.MethodologyStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[strings.TrimSpace(step.StepID)] = step
}

func (s *Store) SetEvidenceConfidences(graphID string, confidences []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evidence[strings.TrimSpace(graphID)] = append([]float64(nil), confidences...)
}

func (s *Store) SetOpenChallenges(graphID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[strings.TrimSpace(graphID)] = count
}

func (s *Store) SetReputationScore(userID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputation[strings.TrimSpace(userID)] = score
}

func (s *Store) GetGraph(_ context.Context, graphID string) (entities.ClaimGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graph, ok := s.graphs[strings.TrimSpace(graphID)]
	if !ok {
		return entities.ClaimGraph{}, domainerrors.ErrGraphNotFound
	}
	return graph, nil
}

func (s *Store) PromoteGraph(_ context.Context, graphID string, fromLevel int, promotedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	graph, ok := s.graphs[strings.TrimSpace(graphID)]
	if !ok {
		return false, domainerrors.ErrGraphNotFound
	}
	if graph.Level != fromLevel {
		return false, nil
	}
	graph.Level++
	graph.UpdatedAt = promotedAt.UTC()
	s.graphs[graph.GraphID] = graph
	return true, nil
}

func (s *Store) UpsertVote(_ context.Context, vote entities.ConsensusVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey(vote.GraphID, vote.UserID)] = vote
	return nil
}

func (s *Store) GetVoteByIdentity(_ context.Context, graphID string, userID string) (entities.ConsensusVote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey(graphID, userID)]
	return vote, ok, nil
}

func (s *Store) ListVotesByGraph(_ context.Context, graphID string) ([]entities.ConsensusVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graphID = strings.TrimSpace(graphID)
	items := make([]entities.ConsensusVote, 0)
	for _, vote := range s.votes {
		if vote.GraphID == graphID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteVote(_ context.Context, graphID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, voteKey(graphID, userID))
	return nil
}

func (s *Store) GetStep(_ context.Context, stepID string) (entities.MethodologyStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	step, ok := s.steps[strings.TrimSpace(stepID)]
	if !ok {
		return entities.MethodologyStep{}, domainerrors.ErrStepNotFound
	}
	return step, nil
}

func (s *Store) ListSteps(_ context.Context, methodologyID string) ([]entities.MethodologyStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	methodologyID = strings.TrimSpace(methodologyID)
	items := make([]entities.MethodologyStep, 0)
	for _, step := range s.steps {
		if step.MethodologyID == methodologyID {
			items = append(items, step)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StepID < items[j].StepID
	})
	return items, nil
}

func (s *Store) SaveCompletion(_ context.Context, completion entities.StepCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := completionKey(completion.GraphID, completion.StepID)
	if _, exists := s.completions[key]; exists {
		return domainerrors.ErrDuplicateCompletion
	}
	s.completions[key] = completion
	return nil
}

func (s *Store) ListCompletions(_ context.Context, graphID string) ([]entities.StepCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graphID = strings.TrimSpace(graphID)
	items := make([]entities.StepCompletion, 0)
	for _, completion := range s.completions {
		if completion.GraphID == graphID {
			items = append(items, completion)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CompletedAt.Before(items[j].CompletedAt)
	})
	return items, nil
}

func (s *Store) AppendPromotionEvent(_ context.Context, event entities.PromotionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListPromotionEvents(_ context.Context, graphID string) ([]entities.PromotionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graphID = strings.TrimSpace(graphID)
	items := make([]entities.PromotionEvent, 0)
	for _, event := range s.events {
		if event.GraphID == graphID {
			items = append(items, event)
		}
	}
	return items, nil
}

func (s *Store) ListEvidenceConfidences(_ context.Context, graphID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.evidence[strings.TrimSpace(graphID)]...), nil
}

func (s *Store) CountOpenChallenges(_ context.Context, graphID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.challenges[strings.TrimSpace(graphID)], nil
}

func (s *Store) GetReputationScore(_ context.Context, userID string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.reputation[strings.TrimSpace(userID)]
	return score, ok, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = strings.TrimSpace(key)
	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[strings.TrimSpace(record.Key)] = record
	return nil
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func voteKey(graphID string, userID string) string {
	return strings.TrimSpace(graphID) + "|" + strings.TrimSpace(userID)
}

func completionKey(graphID string, stepID string) string {
	return strings.TrimSpace(graphID) + "|" + strings.TrimSpace(stepID)
}

var _ ports.GraphRepository = (*Store)(nil)
var _ ports.VoteRepository = (*Store)(nil)
var _ ports.MethodologyRepository = (*Store)(nil)
var _ ports.PromotionEventRepository = (*Store)(nil)
var _ ports.EvidenceReader = (*Store)(nil)
var _ ports.ChallengeReader = (*Store)(nil)
var _ ports.ReputationReader = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.TransactionManager = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
