package ports

import (
	"context"
	"time"

	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	"veritas/internal/shared/events"
)

type InquiryRepository interface {
	GetInquiry(ctx context.Context, inquiryID string) (entities.FormalInquiry, error)
	SaveInquiry(ctx context.Context, inquiry entities.FormalInquiry) error
}

type InquiryVoteRepository interface {
	UpsertInquiryVote(ctx context.Context, vote entities.InquiryVote) error
	GetInquiryVoteByIdentity(ctx context.Context, inquiryID string, userID string) (entities.InquiryVote, bool, error)
	ListInquiryVotes(ctx context.Context, inquiryID string) ([]entities.InquiryVote, error)
}

// CredibilityReader surfaces the external credibility feed for the evidence
// nodes an inquiry references.
type CredibilityReader interface {
	ListReferencedCredibility(ctx context.Context, inquiryID string) ([]entities.NodeCredibility, error)
}

type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EligibilityInvalidator lets inquiry status changes bust the promotion
// engine's cached eligibility for the challenged graph.
type EligibilityInvalidator interface {
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
