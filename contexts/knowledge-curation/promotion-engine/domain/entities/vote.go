package entities

import "time"

// MinVoteWeight floors every voter's influence regardless of reputation.
const MinVoteWeight = 0.5

// MinConsensusVotes is the count below which consensus is not considered
// reached for display purposes. The raw score is always computable.
const MinConsensusVotes = 3

// ConsensusVote is one row per (graph, user). Re-voting updates the row in
// place; it never creates a duplicate.
type ConsensusVote struct {
	VoteID             string
	GraphID            string
	UserID             string
	Value              float64
	Weight             float64
	ReputationSnapshot float64
	Reasoning          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// VoteWeight snapshots a voter's influence at cast time.
func VoteWeight(reputation float64) float64 {
	if reputation < MinVoteWeight {
		return MinVoteWeight
	}
	return reputation
}

type ConsensusSummary struct {
	GraphID   string
	Score     float64
	VoteCount int
	Reached   bool
}

// SummarizeConsensus computes the reputation-weighted average over all stored
// votes: sum(value*weight) / sum(weight), zero when no votes exist.
func SummarizeConsensus(graphID string, votes []ConsensusVote) ConsensusSummary {
	summary := ConsensusSummary{GraphID: graphID, VoteCount: len(votes)}
	if len(votes) == 0 {
		return summary
	}
	var weighted, total float64
	for _, vote := range votes {
		weighted += vote.Value * vote.Weight
		total += vote.Weight
	}
	if total > 0 {
		summary.Score = weighted / total
	}
	summary.Reached = summary.VoteCount >= MinConsensusVotes
	return summary
}
