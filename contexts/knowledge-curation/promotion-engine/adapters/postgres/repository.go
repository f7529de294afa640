package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	domainerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
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

// WithinTransaction opens one gorm transaction and threads it through the
// context so every repository call inside fn joins it.
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

func (r *Repository) GetGraph(ctx context.Context, graphID string) (entities.ClaimGraph, error) {
	var row claimGraphModel
	err := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(graphID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ClaimGraph{}, domainerrors.ErrGraphNotFound
		}
		return entities.ClaimGraph{}, r.storeError("curation_repo_get_graph_failed", err,
			"graph_id", strings.TrimSpace(graphID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) PromoteGraph(ctx context.Context, graphID string, fromLevel int, promotedAt time.Time) (bool, error) {
	result := r.conn(ctx).
		Model(&claimGraphModel{}).
		Where("id = ?", strings.TrimSpace(graphID)).
		Where("level = ?", fromLevel).
		Updates(map[string]any{
			"level":      gorm.Expr("level + 1"),
			"updated_at": promotedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.storeError("curation_repo_promote_graph_failed", result.Error,
			"graph_id", strings.TrimSpace(graphID),
			"from_level", fromLevel,
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) UpsertVote(ctx context.Context, vote entities.ConsensusVote) error {
	row := voteModelFromEntity(vote)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "graph_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":               row.Value,
			"weight":              row.Weight,
			"reputation_snapshot": row.ReputationSnapshot,
			"reasoning":           row.Reasoning,
			"updated_at":          row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.storeError("curation_repo_upsert_vote_failed", create.Error,
			"vote_id", strings.TrimSpace(vote.VoteID),
			"graph_id", strings.TrimSpace(vote.GraphID),
			"user_id", strings.TrimSpace(vote.UserID),
		)
	}
	return nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, graphID string, userID string) (entities.ConsensusVote, bool, error) {
	var row consensusVoteModel
	err := r.conn(ctx).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ConsensusVote{}, false, nil
		}
		return entities.ConsensusVote{}, false, r.storeError("curation_repo_get_vote_by_identity_failed", err,
			"graph_id", strings.TrimSpace(graphID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByGraph(ctx context.Context, graphID string) ([]entities.ConsensusVote, error) {
	var rows []consensusVoteModel
	if err := r.conn(ctx).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storeError("curation_repo_list_votes_failed", err,
			"graph_id", strings.TrimSpace(graphID),
		)
	}
	items := make([]entities.ConsensusVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteVote(ctx context.Context, graphID string, userID string) error {
	err := r.conn(ctx).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Delete(&consensusVoteModel{}).
		Error
	if err != nil {
		return r.storeError("curation_repo_delete_vote_failed", err,
			"graph_id", strings.TrimSpace(graphID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return nil
}

func (r *Repository) GetStep(ctx context.Context, stepID string) (entities.MethodologyStep, error) {
	var row methodologyStepModel
	err := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(stepID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.MethodologyStep{}, domainerrors.ErrStepNotFound
		}
		return entities.MethodologyStep{}, r.storeError("curation_repo_get_step_failed", err,
			"step_id", strings.TrimSpace(stepID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListSteps(ctx context.Context, methodologyID string) ([]entities.MethodologyStep, error) {
	var rows []methodologyStepModel
	if err := r.conn(ctx).
		Where("methodology_id = ?", strings.TrimSpace(methodologyID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storeError("curation_repo_list_steps_failed", err,
			"methodology_id", strings.TrimSpace(methodologyID),
		)
	}
	items := make([]entities.MethodologyStep, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveCompletion(ctx context.Context, completion entities.StepCompletion) error {
	row := stepCompletionModel{
		ID:          strings.TrimSpace(completion.CompletionID),
		GraphID:     strings.TrimSpace(completion.GraphID),
		StepID:      strings.TrimSpace(completion.StepID),
		CompletedBy: strings.TrimSpace(completion.CompletedBy),
		CompletedAt: completion.CompletedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		// The unique (graph_id, step_id) constraint is the duplicate
		// completion guard.
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateCompletion
		}
		return r.storeError("curation_repo_save_completion_failed", err,
			"graph_id", row.GraphID,
			"step_id", row.StepID,
		)
	}
	return nil
}

func (r *Repository) ListCompletions(ctx context.Context, graphID string) ([]entities.StepCompletion, error) {
	var rows []stepCompletionModel
	if err := r.conn(ctx).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Order("completed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storeError("curation_repo_list_completions_failed", err,
			"graph_id", strings.TrimSpace(graphID),
		)
	}
	items := make([]entities.StepCompletion, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendPromotionEvent(ctx context.Context, event entities.PromotionEvent) error {
	row := promotionEventModel{
		ID:               strings.TrimSpace(event.EventID),
		GraphID:          strings.TrimSpace(event.GraphID),
		FromLevel:        event.FromLevel,
		ToLevel:          event.ToLevel,
		RequestedBy:      strings.TrimSpace(event.RequestedBy),
		MethodologyScore: event.MethodologyScore,
		ConsensusScore:   event.ConsensusScore,
		EvidenceScore:    event.EvidenceScore,
		ChallengeScore:   event.ChallengeScore,
		OverallScore:     event.OverallScore,
		CreatedAt:        event.CreatedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return r.storeError("curation_repo_append_promotion_event_failed", err,
			"graph_id", row.GraphID,
			"to_level", row.ToLevel,
		)
	}
	return nil
}

func (r *Repository) ListPromotionEvents(ctx context.Context, graphID string) ([]entities.PromotionEvent, error) {
	var rows []promotionEventModel
	if err := r.conn(ctx).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storeError("curation_repo_list_promotion_events_failed", err,
			"graph_id", strings.TrimSpace(graphID),
		)
	}
	items := make([]entities.PromotionEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListEvidenceConfidences(ctx context.Context, graphID string) ([]float64, error) {
	var confidences []float64
	err := r.conn(ctx).
		Model(&evidenceConfidenceModel{}).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Pluck("confidence", &confidences).
		Error
	if err != nil {
		return nil, r.storeError("curation_repo_list_evidence_failed", err,
			"graph_id", strings.TrimSpace(graphID),
		)
	}
	return confidences, nil
}

func (r *Repository) CountOpenChallenges(ctx context.Context, graphID string) (int, error) {
	var count int64
	err := r.conn(ctx).
		Model(&inquiryProjectionModel{}).
		Where("graph_id = ?", strings.TrimSpace(graphID)).
		Where("status = ?", "open").
		Count(&count).
		Error
	if err != nil {
		return 0, r.storeError("curation_repo_count_open_challenges_failed", err,
			"graph_id", strings.TrimSpace(graphID),
		)
	}
	return int(count), nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row promotionIdempotencyModel
	err := r.conn(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.storeError("curation_repo_idempotency_get_failed", err,
			"idempotency_key", strings.TrimSpace(key),
		)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.conn(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&promotionIdempotencyModel{}).Error; err != nil {
			return ports.IdempotencyRecord{}, false, r.storeError("curation_repo_idempotency_expire_delete_failed", err,
				"idempotency_key", strings.TrimSpace(key),
			)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		GraphID:     row.GraphID,
		ToLevel:     row.ToLevel,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := promotionIdempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		GraphID:     strings.TrimSpace(record.GraphID),
		ToLevel:     record.ToLevel,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.storeError("curation_repo_idempotency_put_failed", create.Error,
			"idempotency_key", row.Key,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing promotionIdempotencyModel
	if err := r.conn(ctx).
		Where("key = ?", row.Key).
		First(&existing).Error; err != nil {
		return r.storeError("curation_repo_idempotency_load_existing_failed", err,
			"idempotency_key", row.Key,
		)
	}
	if existing.RequestHash != row.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

// storeError logs detail and hands callers an opaque domain error, keeping
// store internals out of API responses.
func (r *Repository) storeError(event string, err error, attrs ...any) error {
	if isSerializationFailure(err) {
		return domainerrors.ErrTransientConflict
	}
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "knowledge-curation/promotion-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("curation repository operation failed", fields...)
	return domainerrors.ErrInternal
}

type claimGraphModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Title         string    `gorm:"column:title"`
	OwnerID       string    `gorm:"column:owner_id"`
	Level         int       `gorm:"column:level"`
	MethodologyID *string   `gorm:"column:methodology_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (claimGraphModel) TableName() string {
	return "claim_graphs"
}

func (m claimGraphModel) toEntity() entities.ClaimGraph {
	methodologyID := ""
	if m.MethodologyID != nil {
		methodologyID = strings.TrimSpace(*m.MethodologyID)
	}
	return entities.ClaimGraph{
		GraphID:       m.ID,
		Title:         m.Title,
		OwnerID:       m.OwnerID,
		Level:         m.Level,
		MethodologyID: methodologyID,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type consensusVoteModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	GraphID            string    `gorm:"column:graph_id"`
	UserID             string    `gorm:"column:user_id"`
	Value              float64   `gorm:"column:value"`
	Weight             float64   `gorm:"column:weight"`
	ReputationSnapshot float64   `gorm:"column:reputation_snapshot"`
	Reasoning          string    `gorm:"column:reasoning"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (consensusVoteModel) TableName() string {
	return "consensus_votes"
}

func voteModelFromEntity(vote entities.ConsensusVote) consensusVoteModel {
	row := consensusVoteModel{
		ID:                 strings.TrimSpace(vote.VoteID),
		GraphID:            strings.TrimSpace(vote.GraphID),
		UserID:             strings.TrimSpace(vote.UserID),
		Value:              vote.Value,
		Weight:             vote.Weight,
		ReputationSnapshot: vote.ReputationSnapshot,
		Reasoning:          strings.TrimSpace(vote.Reasoning),
		CreatedAt:          vote.CreatedAt.UTC(),
		UpdatedAt:          vote.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m consensusVoteModel) toEntity() entities.ConsensusVote {
	return entities.ConsensusVote{
		VoteID:             m.ID,
		GraphID:            m.GraphID,
		UserID:             m.UserID,
		Value:              m.Value,
		Weight:             m.Weight,
		ReputationSnapshot: m.ReputationSnapshot,
		Reasoning:          m.Reasoning,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type methodologyStepModel struct {
	ID            string `gorm:"column:id;primaryKey"`
	MethodologyID string `gorm:"column:methodology_id"`
	Name          string `gorm:"column:name"`
	Required      bool   `gorm:"column:required"`
}

func (methodologyStepModel) TableName() string {
	return "methodology_steps"
}

func (m methodologyStepModel) toEntity() entities.MethodologyStep {
	return entities.MethodologyStep{
		StepID:        m.ID,
		MethodologyID: m.MethodologyID,
		Name:          m.Name,
		Required:      m.Required,
	}
}

type stepCompletionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	GraphID     string    `gorm:"column:graph_id"`
	StepID      string    `gorm:"column:step_id"`
	CompletedBy string    `gorm:"column:completed_by"`
	CompletedAt time.Time `gorm:"column:completed_at"`
}

func (stepCompletionModel) TableName() string {
	return "methodology_step_completions"
}

func (m stepCompletionModel) toEntity() entities.StepCompletion {
	return entities.StepCompletion{
		CompletionID: m.ID,
		GraphID:      m.GraphID,
		StepID:       m.StepID,
		CompletedBy:  m.CompletedBy,
		CompletedAt:  m.CompletedAt.UTC(),
	}
}

type promotionEventModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	GraphID          string    `gorm:"column:graph_id"`
	FromLevel        int       `gorm:"column:from_level"`
	ToLevel          int       `gorm:"column:to_level"`
	RequestedBy      string    `gorm:"column:requested_by"`
	MethodologyScore float64   `gorm:"column:methodology_score"`
	ConsensusScore   float64   `gorm:"column:consensus_score"`
	EvidenceScore    float64   `gorm:"column:evidence_score"`
	ChallengeScore   float64   `gorm:"column:challenge_score"`
	OverallScore     float64   `gorm:"column:overall_score"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (promotionEventModel) TableName() string {
	return "promotion_events"
}

func (m promotionEventModel) toEntity() entities.PromotionEvent {
	return entities.PromotionEvent{
		EventID:          m.ID,
		GraphID:          m.GraphID,
		FromLevel:        m.FromLevel,
		ToLevel:          m.ToLevel,
		RequestedBy:      m.RequestedBy,
		MethodologyScore: m.MethodologyScore,
		ConsensusScore:   m.ConsensusScore,
		EvidenceScore:    m.EvidenceScore,
		ChallengeScore:   m.ChallengeScore,
		OverallScore:     m.OverallScore,
		CreatedAt:        m.CreatedAt.UTC(),
	}
}

type evidenceConfidenceModel struct {
	ID         string  `gorm:"column:id;primaryKey"`
	GraphID    string  `gorm:"column:graph_id"`
	NodeID     string  `gorm:"column:node_id"`
	Confidence float64 `gorm:"column:confidence"`
}

func (evidenceConfidenceModel) TableName() string {
	return "evidence_confidences"
}

type inquiryProjectionModel struct {
	ID      string `gorm:"column:id;primaryKey"`
	GraphID string `gorm:"column:graph_id"`
	Status  string `gorm:"column:status"`
}

func (inquiryProjectionModel) TableName() string {
	return "formal_inquiries"
}

type promotionIdempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	GraphID     string    `gorm:"column:graph_id"`
	ToLevel     int       `gorm:"column:to_level"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (promotionIdempotencyModel) TableName() string {
	return "promotion_idempotency_keys"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

var _ ports.GraphRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.MethodologyRepository = (*Repository)(nil)
var _ ports.PromotionEventRepository = (*Repository)(nil)
var _ ports.EvidenceReader = (*Repository)(nil)
var _ ports.ChallengeReader = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
var _ ports.TransactionManager = (*Repository)(nil)
