package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	domainerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	"veritas/contexts/challenge-resolution/inquiry-service/ports"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	inquiries   map[string]entities.FormalInquiry
	votes       map[string]entities.InquiryVote
	credibility map[string][]entities.NodeCredibility
}

func NewStore() *Store {
	return &Store{
		inquiries:   make(map[string]entities.FormalInquiry),
		votes:       make(map[string]entities.InquiryVote),
		credibility: make(map[string][]entities.NodeCredibility),
	}
}

func (s *Store) SetInquiry(inquiry entities.FormalInquiry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inquiries[strings.TrimSpace(inquiry.InquiryID)] = inquiry
}

func (s *Store) SetReferencedCredibility(inquiryID string, refs []entities.NodeCredibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credibility[strings.TrimSpace(inquiryID)] = append([]entities.NodeCredibility(nil), refs...)
}

func (s *Store) GetInquiry(_ context.Context, inquiryID string) (entities.FormalInquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inquiry, ok := s.inquiries[strings.TrimSpace(inquiryID)]
	if !ok {
		return entities.FormalInquiry{}, domainerrors.ErrInquiryNotFound
	}
	return inquiry, nil
}

func (s *Store) SaveInquiry(_ context.Context, inquiry entities.FormalInquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inquiries[strings.TrimSpace(inquiry.InquiryID)] = inquiry
	return nil
}

func (s *Store) UpsertInquiryVote(_ context.Context, vote entities.InquiryVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey(vote.InquiryID, vote.UserID)] = vote
	return nil
}

func (s *Store) GetInquiryVoteByIdentity(_ context.Context, inquiryID string, userID string) (entities.InquiryVote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey(inquiryID, userID)]
	return vote, ok, nil
}

func (s *Store) ListInquiryVotes(_ context.Context, inquiryID string) ([]entities.InquiryVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inquiryID = strings.TrimSpace(inquiryID)
	items := make([]entities.InquiryVote, 0)
	for _, vote := range s.votes {
		if vote.InquiryID == inquiryID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ListReferencedCredibility(_ context.Context, inquiryID string) ([]entities.NodeCredibility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.NodeCredibility(nil), s.credibility[strings.TrimSpace(inquiryID)]...), nil
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

func voteKey(inquiryID string, userID string) string {
	return strings.TrimSpace(inquiryID) + "|" + strings.TrimSpace(userID)
}

var _ ports.InquiryRepository = (*Store)(nil)
var _ ports.InquiryVoteRepository = (*Store)(nil)
var _ ports.CredibilityReader = (*Store)(nil)
var _ ports.TransactionManager = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
