package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"veritas/contexts/knowledge-curation/reputation-service/domain"
	domainerrors "veritas/contexts/knowledge-curation/reputation-service/domain/errors"
	"veritas/contexts/knowledge-curation/reputation-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetReputationInputs(ctx context.Context, userID string) (domain.ReputationInputs, bool, error) {
	var row reputationInputsModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReputationInputs{}, false, nil
		}
		r.logger.Error("reputation repository read failed",
			"event", "reputation_repo_get_inputs_failed",
			"module", "knowledge-curation/reputation-service",
			"layer", "adapter",
			"user_id", strings.TrimSpace(userID),
			"error", err.Error(),
		)
		return domain.ReputationInputs{}, false, domainerrors.ErrInternal
	}
	return domain.ReputationInputs{
		UserID:                 row.UserID,
		EvidenceQuality:        row.EvidenceQuality,
		VoteAlignment:          row.VoteAlignment,
		MethodologyCompletions: row.MethodologyCompletions,
		ChallengesRaised:       row.ChallengesRaised,
		ChallengesResolved:     row.ChallengesResolved,
	}, true, nil
}

type reputationInputsModel struct {
	UserID                 string    `gorm:"column:user_id;primaryKey"`
	EvidenceQuality        float64   `gorm:"column:evidence_quality"`
	VoteAlignment          float64   `gorm:"column:vote_alignment"`
	MethodologyCompletions int       `gorm:"column:methodology_completions"`
	ChallengesRaised       int       `gorm:"column:challenges_raised"`
	ChallengesResolved     int       `gorm:"column:challenges_resolved"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

func (reputationInputsModel) TableName() string {
	return "user_reputation_inputs"
}

var _ ports.InputsRepository = (*Repository)(nil)
