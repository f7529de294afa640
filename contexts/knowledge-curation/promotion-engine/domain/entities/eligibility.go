package entities

import "fmt"

// EligibilityThreshold is the bar every criterion must clear. Pending product
// confirmation this stays a named constant rather than deployment
// configuration.
const EligibilityThreshold = 0.8

// EligibilitySnapshot is the explicit input aggregate the evaluator scores.
// Callers assemble it from current stored data in one pass so the verdict is
// race-free against any single concurrent mutation.
type EligibilitySnapshot struct {
	RequiredSteps       int
	CompletedRequired   int
	Votes               []ConsensusVote
	EvidenceConfidences []float64
	OpenChallenges      int
}

// PromotionEligibility is a derived value object. It is never persisted as a
// source of truth and is always recomputable from the snapshot.
type PromotionEligibility struct {
	MethodologyCompletionScore float64
	ConsensusScore             float64
	EvidenceQualityScore       float64
	ChallengeResolutionScore   float64
	OverallScore               float64
	IsEligible                 bool
	MissingRequirements        []string
}

// ComputeEligibility scores all four criteria and takes their minimum. The
// min-of-four rule is deliberate: a strong criterion can never compensate for
// a failing one.
func ComputeEligibility(snapshot EligibilitySnapshot) PromotionEligibility {
	result := PromotionEligibility{
		MethodologyCompletionScore: methodologyScore(snapshot),
		ConsensusScore:             SummarizeConsensus("", snapshot.Votes).Score,
		EvidenceQualityScore:       evidenceScore(snapshot.EvidenceConfidences),
	}
	if snapshot.OpenChallenges == 0 {
		result.ChallengeResolutionScore = 1.0
	}

	result.OverallScore = result.MethodologyCompletionScore
	for _, score := range []float64{
		result.ConsensusScore,
		result.EvidenceQualityScore,
		result.ChallengeResolutionScore,
	} {
		if score < result.OverallScore {
			result.OverallScore = score
		}
	}
	result.IsEligible = result.OverallScore >= EligibilityThreshold

	result.MissingRequirements = appendGap(result.MissingRequirements,
		"Methodology completion", result.MethodologyCompletionScore)
	result.MissingRequirements = appendGap(result.MissingRequirements,
		"Consensus score", result.ConsensusScore)
	result.MissingRequirements = appendGap(result.MissingRequirements,
		"Evidence quality", result.EvidenceQualityScore)
	if result.ChallengeResolutionScore < EligibilityThreshold {
		result.MissingRequirements = append(result.MissingRequirements,
			fmt.Sprintf("Open challenges: %d unresolved (requires 0)", snapshot.OpenChallenges))
	}
	return result
}

func methodologyScore(snapshot EligibilitySnapshot) float64 {
	if snapshot.RequiredSteps <= 0 {
		return 0
	}
	return float64(snapshot.CompletedRequired) / float64(snapshot.RequiredSteps)
}

func evidenceScore(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var total float64
	for _, confidence := range confidences {
		total += confidence
	}
	return total / float64(len(confidences))
}

func appendGap(missing []string, label string, score float64) []string {
	if score >= EligibilityThreshold {
		return missing
	}
	return append(missing, fmt.Sprintf("%s: %.0f%% (requires %.0f%%)",
		label, score*100, EligibilityThreshold*100))
}
