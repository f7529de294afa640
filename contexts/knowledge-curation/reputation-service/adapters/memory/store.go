package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"veritas/contexts/knowledge-curation/reputation-service/domain"
	"veritas/contexts/knowledge-curation/reputation-service/ports"
)

type Store struct {
	mu     sync.RWMutex
	inputs map[string]domain.ReputationInputs
}

func NewStore() *Store {
	return &Store{inputs: make(map[string]domain.ReputationInputs)}
}

func (s *Store) SetInputs(inputs domain.ReputationInputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[strings.TrimSpace(inputs.UserID)] = inputs
}

func (s *Store) GetReputationInputs(_ context.Context, userID string) (domain.ReputationInputs, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inputs, ok := s.inputs[strings.TrimSpace(userID)]
	return inputs, ok, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.InputsRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
