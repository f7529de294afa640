package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "veritas/contexts/challenge-resolution/inquiry-service/application"
	"veritas/contexts/challenge-resolution/inquiry-service/domain/entities"
	domainerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	"veritas/contexts/challenge-resolution/inquiry-service/ports"
)

// InquiryVoteUseCase records community sentiment on inquiries. These votes
// are deliberately isolated from confidence scoring: nothing here reads or
// writes confidence_score.
type InquiryVoteUseCase struct {
	Inquiries ports.InquiryRepository
	Votes     ports.InquiryVoteRepository
	Tx        ports.TransactionManager
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc InquiryVoteUseCase) CastInquiryVote(
	ctx context.Context,
	inquiryID string,
	userID string,
	stance entities.InquiryStance,
) (entities.InquiryVote, error) {
	logger := application.ResolveLogger(uc.Logger)
	inquiryID = strings.TrimSpace(inquiryID)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.InquiryVote{}, domainerrors.ErrAuthenticationRequired
	}
	if inquiryID == "" || !entities.ValidStance(stance) {
		return entities.InquiryVote{}, domainerrors.ErrValidation
	}

	now := uc.now()
	var stored entities.InquiryVote
	err := application.RunAtomic(ctx, uc.Tx, func(txCtx context.Context) error {
		if _, err := uc.Inquiries.GetInquiry(txCtx, inquiryID); err != nil {
			return err
		}
		vote := entities.InquiryVote{
			InquiryID: inquiryID,
			UserID:    userID,
			Stance:    stance,
			CreatedAt: now,
			UpdatedAt: now,
		}
		existing, found, err := uc.Votes.GetInquiryVoteByIdentity(txCtx, inquiryID, userID)
		if err != nil {
			return err
		}
		if found {
			vote.VoteID = existing.VoteID
			vote.CreatedAt = existing.CreatedAt
		} else {
			voteID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			vote.VoteID = voteID
		}
		if err := uc.Votes.UpsertInquiryVote(txCtx, vote); err != nil {
			return err
		}
		stored = vote
		return nil
	})
	if err != nil {
		return entities.InquiryVote{}, err
	}

	logger.Info("inquiry vote stored",
		"event", "inquiry_vote_stored",
		"module", "challenge-resolution/inquiry-service",
		"layer", "application",
		"inquiry_id", inquiryID,
		"user_id", userID,
		"stance", string(stored.Stance),
	)
	return stored, nil
}

func (uc InquiryVoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
