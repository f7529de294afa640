package ports

import (
	"context"
	"time"

	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	"veritas/internal/shared/events"
)

type GraphRepository interface {
	GetGraph(ctx context.Context, graphID string) (entities.ClaimGraph, error)
	// PromoteGraph increments the level only when the stored level still
	// equals fromLevel. It reports whether the increment was applied.
	PromoteGraph(ctx context.Context, graphID string, fromLevel int, promotedAt time.Time) (bool, error)
}

type VoteRepository interface {
	UpsertVote(ctx context.Context, vote entities.ConsensusVote) error
	GetVoteByIdentity(ctx context.Context, graphID string, userID string) (entities.ConsensusVote, bool, error)
	ListVotesByGraph(ctx context.Context, graphID string) ([]entities.ConsensusVote, error)
	DeleteVote(ctx context.Context, graphID string, userID string) error
}

type MethodologyRepository interface {
	GetStep(ctx context.Context, stepID string) (entities.MethodologyStep, error)
	ListSteps(ctx context.Context, methodologyID string) ([]entities.MethodologyStep, error)
	SaveCompletion(ctx context.Context, completion entities.StepCompletion) error
	ListCompletions(ctx context.Context, graphID string) ([]entities.StepCompletion, error)
}

type PromotionEventRepository interface {
	AppendPromotionEvent(ctx context.Context, event entities.PromotionEvent) error
	ListPromotionEvents(ctx context.Context, graphID string) ([]entities.PromotionEvent, error)
}

// EvidenceReader surfaces the confidence feed owned by the external
// validation collaborator. Read-only here.
type EvidenceReader interface {
	ListEvidenceConfidences(ctx context.Context, graphID string) ([]float64, error)
}

// ChallengeReader counts formal inquiries still gating promotion.
type ChallengeReader interface {
	CountOpenChallenges(ctx context.Context, graphID string) (int, error)
}

// ReputationReader supplies the voter reputation snapshotted into vote
// weight at cast time.
type ReputationReader interface {
	GetReputationScore(ctx context.Context, userID string) (float64, bool, error)
}

// IdempotencyRecord marks a promotion request whose transition already
// committed, so client retries replay the outcome instead of stacking
// increments.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	GraphID     string
	ToLevel     int
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// TransactionManager scopes a unit of work to one atomic transaction.
// Repository calls made with the derived context join that transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EligibilityCache interface {
	Get(graphID string) (entities.PromotionEligibility, bool)
	Set(graphID string, eligibility entities.PromotionEligibility)
	Invalidate(graphID string)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
