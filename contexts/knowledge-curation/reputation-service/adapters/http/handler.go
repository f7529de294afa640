package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"veritas/contexts/knowledge-curation/reputation-service/application"
	httptransport "veritas/contexts/knowledge-curation/reputation-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetReputationHandler(ctx context.Context, userID string) (httptransport.ReputationResponse, error) {
	breakdown, err := h.Service.GetUserReputation(ctx, userID)
	if err != nil {
		return httptransport.ReputationResponse{}, err
	}
	return httptransport.ReputationResponse{
		UserID:               breakdown.UserID,
		EvidenceQuality:      breakdown.EvidenceQuality,
		VoteAlignment:        breakdown.VoteAlignment,
		MethodologyComponent: breakdown.MethodologyComponent,
		ChallengeComponent:   breakdown.ChallengeComponent,
		Overall:              breakdown.Overall,
		CalculatedAt:         breakdown.CalculatedAt.UTC().Format(time.RFC3339),
	}, nil
}
