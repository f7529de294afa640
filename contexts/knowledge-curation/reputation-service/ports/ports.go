package ports

import (
	"context"
	"time"

	"veritas/contexts/knowledge-curation/reputation-service/domain"
)

// InputsRepository reads the contribution-history aggregates owned by other
// subsystems. Nothing in this module writes them.
type InputsRepository interface {
	GetReputationInputs(ctx context.Context, userID string) (domain.ReputationInputs, bool, error)
}

type Clock interface {
	Now() time.Time
}
