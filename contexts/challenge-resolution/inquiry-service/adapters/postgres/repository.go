package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	domainerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	"veritas/contexts/challenge-resolution/inquiry-service/ports"
)

type txContextKey struct{}

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

func (r *Repository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
	if err != nil && isSerializationFailure(err) {
		return domainerrors.ErrTransientConflict
	}
	return err
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *Repository) GetInquiry(ctx context.Context, inquiryID string) (entities.FormalInquiry, error) {
	var row inquiryModel
	err := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(inquiryID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FormalInquiry{}, domainerrors.ErrInquiryNotFound
		}
		return entities.FormalInquiry{}, r.storeError("inquiry_repo_get_failed", err,
			"inquiry_id", strings.TrimSpace(inquiryID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveInquiry(ctx context.Context, inquiry entities.FormalInquiry) error {
	row := inquiryModelFromEntity(inquiry)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"confidence_score":         row.ConfidenceScore,
			"max_allowed_score":        row.MaxAllowedScore,
			"weakest_node_id":          row.WeakestNodeID,
			"weakest_node_credibility": row.WeakestNodeCredibility,
			"status":                   row.Status,
			"ai_determination":         row.AIDetermination,
			"ai_rationale":             row.AIRationale,
			"evaluated_by":             row.EvaluatedBy,
			"evaluated_at":             row.EvaluatedAt,
			"updated_at":               row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.storeError("inquiry_repo_save_failed", create.Error,
			"inquiry_id", strings.TrimSpace(inquiry.InquiryID),
		)
	}
	return nil
}

func (r *Repository) UpsertInquiryVote(ctx context.Context, vote entities.InquiryVote) error {
	row := inquiryVoteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		InquiryID: strings.TrimSpace(vote.InquiryID),
		UserID:    strings.TrimSpace(vote.UserID),
		Stance:    string(vote.Stance),
		CreatedAt: vote.CreatedAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "inquiry_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"stance":     row.Stance,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.storeError("inquiry_repo_upsert_vote_failed", create.Error,
			"inquiry_id", row.InquiryID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) GetInquiryVoteByIdentity(ctx context.Context, inquiryID string, userID string) (entities.InquiryVote, bool, error) {
	var row inquiryVoteModel
	err := r.conn(ctx).
		Where("inquiry_id = ?", strings.TrimSpace(inquiryID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.InquiryVote{}, false, nil
		}
		return entities.InquiryVote{}, false, r.storeError("inquiry_repo_get_vote_by_identity_failed", err,
			"inquiry_id", strings.TrimSpace(inquiryID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListInquiryVotes(ctx context.Context, inquiryID string) ([]entities.InquiryVote, error) {
	var rows []inquiryVoteModel
	if err := r.conn(ctx).
		Where("inquiry_id = ?", strings.TrimSpace(inquiryID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storeError("inquiry_repo_list_votes_failed", err,
			"inquiry_id", strings.TrimSpace(inquiryID),
		)
	}
	items := make([]entities.InquiryVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListReferencedCredibility(ctx context.Context, inquiryID string) ([]entities.NodeCredibility, error) {
	var rows []referencedCredibilityRow
	err := r.conn(ctx).
		Table("inquiry_evidence_refs AS ref").
		Select("ref.node_id, ev.confidence AS credibility").
		Joins("JOIN evidence_confidences AS ev ON ev.node_id = ref.node_id").
		Where("ref.inquiry_id = ?", strings.TrimSpace(inquiryID)).
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.storeError("inquiry_repo_list_credibility_failed", err,
			"inquiry_id", strings.TrimSpace(inquiryID),
		)
	}
	items := make([]entities.NodeCredibility, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.NodeCredibility{
			NodeID:      row.NodeID,
			Credibility: row.Credibility,
		})
	}
	return items, nil
}

func (r *Repository) storeError(event string, err error, attrs ...any) error {
	if isSerializationFailure(err) {
		return domainerrors.ErrTransientConflict
	}
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "challenge-resolution/inquiry-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("inquiry repository operation failed", fields...)
	return domainerrors.ErrInternal
}

type inquiryModel struct {
	ID                     string     `gorm:"column:id;primaryKey"`
	GraphID                string     `gorm:"column:graph_id"`
	TargetNodeID           string     `gorm:"column:target_node_id"`
	ConfidenceScore        float64    `gorm:"column:confidence_score"`
	MaxAllowedScore        float64    `gorm:"column:max_allowed_score"`
	WeakestNodeID          string     `gorm:"column:weakest_node_id"`
	WeakestNodeCredibility float64    `gorm:"column:weakest_node_credibility"`
	Status                 string     `gorm:"column:status"`
	AIDetermination        string     `gorm:"column:ai_determination"`
	AIRationale            string     `gorm:"column:ai_rationale"`
	EvaluatedBy            string     `gorm:"column:evaluated_by"`
	EvaluatedAt            *time.Time `gorm:"column:evaluated_at"`
	CreatedAt              time.Time  `gorm:"column:created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
}

func (inquiryModel) TableName() string {
	return "formal_inquiries"
}

func inquiryModelFromEntity(inquiry entities.FormalInquiry) inquiryModel {
	row := inquiryModel{
		ID:                     strings.TrimSpace(inquiry.InquiryID),
		GraphID:                strings.TrimSpace(inquiry.GraphID),
		TargetNodeID:           strings.TrimSpace(inquiry.TargetNodeID),
		ConfidenceScore:        inquiry.ConfidenceScore,
		MaxAllowedScore:        inquiry.MaxAllowedScore,
		WeakestNodeID:          strings.TrimSpace(inquiry.WeakestNodeID),
		WeakestNodeCredibility: inquiry.WeakestNodeCredibility,
		Status:                 string(inquiry.Status),
		AIDetermination:        strings.TrimSpace(inquiry.AIDetermination),
		AIRationale:            strings.TrimSpace(inquiry.AIRationale),
		EvaluatedBy:            strings.TrimSpace(inquiry.EvaluatedBy),
		EvaluatedAt:            normalizeOptionalTime(inquiry.EvaluatedAt),
		CreatedAt:              inquiry.CreatedAt.UTC(),
		UpdatedAt:              inquiry.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m inquiryModel) toEntity() entities.FormalInquiry {
	return entities.FormalInquiry{
		InquiryID:              m.ID,
		GraphID:                m.GraphID,
		TargetNodeID:           m.TargetNodeID,
		ConfidenceScore:        m.ConfidenceScore,
		MaxAllowedScore:        m.MaxAllowedScore,
		WeakestNodeID:          m.WeakestNodeID,
		WeakestNodeCredibility: m.WeakestNodeCredibility,
		Status:                 entities.InquiryStatus(m.Status),
		AIDetermination:        m.AIDetermination,
		AIRationale:            m.AIRationale,
		EvaluatedBy:            m.EvaluatedBy,
		EvaluatedAt:            normalizeOptionalTime(m.EvaluatedAt),
		CreatedAt:              m.CreatedAt.UTC(),
		UpdatedAt:              m.UpdatedAt.UTC(),
	}
}

type inquiryVoteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	InquiryID string    `gorm:"column:inquiry_id"`
	UserID    string    `gorm:"column:user_id"`
	Stance    string    `gorm:"column:stance"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (inquiryVoteModel) TableName() string {
	return "inquiry_votes"
}

func (m inquiryVoteModel) toEntity() entities.InquiryVote {
	return entities.InquiryVote{
		VoteID:    m.ID,
		InquiryID: m.InquiryID,
		UserID:    m.UserID,
		Stance:    entities.InquiryStance(m.Stance),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type referencedCredibilityRow struct {
	NodeID      string  `gorm:"column:node_id"`
	Credibility float64 `gorm:"column:credibility"`
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

var _ ports.InquiryRepository = (*Repository)(nil)
var _ ports.InquiryVoteRepository = (*Repository)(nil)
var _ ports.CredibilityReader = (*Repository)(nil)
var _ ports.TransactionManager = (*Repository)(nil)
