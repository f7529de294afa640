package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"veritas/contexts/knowledge-curation/reputation-service/domain"
	domainerrors "veritas/contexts/knowledge-curation/reputation-service/domain/errors"
	"veritas/contexts/knowledge-curation/reputation-service/ports"
)

type Service struct {
	Inputs ports.InputsRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// GetUserReputation recomputes the full breakdown from the current inputs
// snapshot. Unknown users resolve to a zero breakdown rather than an error so
// new contributors start at the floor, not a failure.
func (s Service) GetUserReputation(ctx context.Context, userID string) (domain.ReputationBreakdown, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ReputationBreakdown{}, domainerrors.ErrInvalidRequest
	}
	inputs, found, err := s.Inputs.GetReputationInputs(ctx, userID)
	if err != nil {
		return domain.ReputationBreakdown{}, err
	}
	if !found {
		inputs = domain.ReputationInputs{UserID: userID}
	}
	breakdown := domain.Compute(inputs)
	breakdown.CalculatedAt = s.now()

	resolveLogger(s.Logger).Debug("reputation computed",
		"event", "reputation_computed",
		"module", "knowledge-curation/reputation-service",
		"layer", "application",
		"user_id", userID,
		"overall", breakdown.Overall,
	)
	return breakdown, nil
}

// GetReputationScore is the narrow read the promotion engine snapshots into
// vote weights.
func (s Service) GetReputationScore(ctx context.Context, userID string) (float64, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, false, domainerrors.ErrInvalidRequest
	}
	inputs, found, err := s.Inputs.GetReputationInputs(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}
	return domain.Compute(inputs).Overall, true, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
