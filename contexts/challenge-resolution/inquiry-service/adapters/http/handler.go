package httpadapter

import (
	"context"
	"log/slog"

	"veritas/contexts/challenge-resolution/inquiry-service/application/commands"
	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	httptransport "veritas/contexts/challenge-resolution/inquiry-service/transport/http"
)

type Handler struct {
	Confidence commands.ConfidenceUseCase
	Votes      commands.InquiryVoteUseCase
	Logger     *slog.Logger
}

func (h Handler) WriteConfidenceHandler(
	ctx context.Context,
	inquiryID string,
	req httptransport.WriteConfidenceRequest,
) (httptransport.InquiryResponse, error) {
	result, err := h.Confidence.WriteConfidence(ctx, commands.WriteConfidenceCommand{
		InquiryID:      inquiryID,
		RequestedScore: req.RequestedScore,
		Determination:  req.Determination,
		Rationale:      req.Rationale,
	})
	if err != nil {
		return httptransport.InquiryResponse{}, err
	}
	return mapInquiry(result.Inquiry, result.Capped), nil
}

func (h Handler) ResolveInquiryHandler(ctx context.Context, inquiryID string, userID string) (httptransport.InquiryResponse, error) {
	inquiry, err := h.Confidence.ResolveInquiry(ctx, inquiryID, userID)
	if err != nil {
		return httptransport.InquiryResponse{}, err
	}
	return mapInquiry(inquiry, false), nil
}

func (h Handler) CastInquiryVoteHandler(
	ctx context.Context,
	inquiryID string,
	userID string,
	req httptransport.InquiryVoteRequest,
) (httptransport.InquiryVoteResponse, error) {
	vote, err := h.Votes.CastInquiryVote(ctx, inquiryID, userID, entities.InquiryStance(req.Stance))
	if err != nil {
		return httptransport.InquiryVoteResponse{}, err
	}
	return httptransport.InquiryVoteResponse{
		VoteID:    vote.VoteID,
		InquiryID: vote.InquiryID,
		UserID:    vote.UserID,
		Stance:    string(vote.Stance),
	}, nil
}

func mapInquiry(inquiry entities.FormalInquiry, capped bool) httptransport.InquiryResponse {
	return httptransport.InquiryResponse{
		InquiryID:              inquiry.InquiryID,
		GraphID:                inquiry.GraphID,
		TargetNodeID:           inquiry.TargetNodeID,
		ConfidenceScore:        inquiry.ConfidenceScore,
		MaxAllowedScore:        inquiry.MaxAllowedScore,
		WeakestNodeID:          inquiry.WeakestNodeID,
		WeakestNodeCredibility: inquiry.WeakestNodeCredibility,
		Status:                 string(inquiry.Status),
		AIDetermination:        inquiry.AIDetermination,
		AIRationale:            inquiry.AIRationale,
		Capped:                 capped,
	}
}
