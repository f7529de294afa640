package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
)

type steadyGraphs struct{}

func (steadyGraphs) GetGraph(_ context.Context, graphID string) (entities.ClaimGraph, error) {
	return entities.ClaimGraph{GraphID: graphID, Level: 1, MethodologyID: "methodology-1"}, nil
}

func (steadyGraphs) PromoteGraph(context.Context, string, int, time.Time) (bool, error) {
	return false, nil
}

type recordingVotes struct {
	upserted []entities.ConsensusVote
}

func (r *recordingVotes) UpsertVote(_ context.Context, vote entities.ConsensusVote) error {
	r.upserted = append(r.upserted, vote)
	return nil
}

func (r *recordingVotes) GetVoteByIdentity(context.Context, string, string) (entities.ConsensusVote, bool, error) {
	return entities.ConsensusVote{}, false, nil
}

func (r *recordingVotes) ListVotesByGraph(context.Context, string) ([]entities.ConsensusVote, error) {
	return r.upserted, nil
}

func (r *recordingVotes) DeleteVote(context.Context, string, string) error { return nil }

type failingReputation struct {
	err error
}

func (f failingReputation) GetReputationScore(context.Context, string) (float64, bool, error) {
	return 0, false, f.err
}

// A broken reputation read must abort the cast instead of freezing a fallback
// weight into the permanent snapshot.
func TestCastVoteFailsWhenReputationReadFails(t *testing.T) {
	readErr := errors.New("reputation store unavailable")
	votes := &recordingVotes{}
	uc := VoteUseCase{
		Graphs:     steadyGraphs{},
		Votes:      votes,
		Reputation: failingReputation{err: readErr},
		Tx:         passthroughTx{},
		IDGen:      fixedIDs{},
	}

	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		GraphID: "graph-1",
		UserID:  "user-1",
		Value:   0.8,
	})
	if !errors.Is(err, readErr) {
		t.Fatalf("err = %v, want the reputation read failure", err)
	}
	if len(votes.upserted) != 0 {
		t.Fatalf("stored %d votes, want 0 on aborted cast", len(votes.upserted))
	}
}
