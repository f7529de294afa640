package domain

import "time"

// Component weights of the reputation formula.
const (
	EvidenceQualityWeight = 0.4
	VoteAlignmentWeight   = 0.3
	MethodologyWeight     = 0.2
	ChallengeWeight       = 0.1
)

// ReputationInputs is the read-only snapshot of a user's contribution
// history aggregates.
type ReputationInputs struct {
	UserID                 string
	EvidenceQuality        float64
	VoteAlignment          float64
	MethodologyCompletions int
	ChallengesRaised       int
	ChallengesResolved     int
}

type ReputationBreakdown struct {
	UserID               string
	EvidenceQuality      float64
	VoteAlignment        float64
	MethodologyComponent float64
	ChallengeComponent   float64
	Overall              float64
	CalculatedAt         time.Time
}

// Compute derives the reputation score in [0,1]. It is a pure function of
// the inputs snapshot: identical snapshots always yield identical scores,
// which keeps historical vote weights reproducible. A zero challenge
// denominator contributes 0 for that term rather than erroring.
func Compute(inputs ReputationInputs) ReputationBreakdown {
	breakdown := ReputationBreakdown{
		UserID:          inputs.UserID,
		EvidenceQuality: clamp01(inputs.EvidenceQuality),
		VoteAlignment:   clamp01(inputs.VoteAlignment),
	}
	if inputs.MethodologyCompletions > 0 {
		breakdown.MethodologyComponent = 1
	}
	if inputs.ChallengesRaised > 0 {
		breakdown.ChallengeComponent = clamp01(
			float64(inputs.ChallengesResolved) / float64(inputs.ChallengesRaised))
	}
	breakdown.Overall = EvidenceQualityWeight*breakdown.EvidenceQuality +
		VoteAlignmentWeight*breakdown.VoteAlignment +
		MethodologyWeight*breakdown.MethodologyComponent +
		ChallengeWeight*breakdown.ChallengeComponent
	return breakdown
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
