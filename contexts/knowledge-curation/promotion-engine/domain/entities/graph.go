package entities

import "time"

// GroundTruthLevel is the permanent tier. Rows at this level are never
// written again once set.
const GroundTruthLevel = 0

// MaxPromotionLevel caps forward promotion. Pending product confirmation this
// stays a named constant rather than deployment configuration.
const MaxPromotionLevel = 5

type ClaimGraph struct {
	GraphID       string
	Title         string
	OwnerID       string
	Level         int
	MethodologyID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Immutable reports whether the graph sits on the ground-truth tier.
func (g ClaimGraph) Immutable() bool {
	return g.Level == GroundTruthLevel
}

// AtTerminalLevel reports whether the graph has no remaining forward
// transitions.
func (g ClaimGraph) AtTerminalLevel() bool {
	return g.Level >= MaxPromotionLevel
}

type MethodologyStep struct {
	StepID        string
	MethodologyID string
	Name          string
	Required      bool
}

type StepCompletion struct {
	CompletionID string
	GraphID      string
	StepID       string
	CompletedBy  string
	CompletedAt  time.Time
}

// PromotionEvent is the append-only audit record written exactly once per
// successful level transition, capturing the criterion breakdown that
// justified it.
type PromotionEvent struct {
	EventID          string
	GraphID          string
	FromLevel        int
	ToLevel          int
	RequestedBy      string
	MethodologyScore float64
	ConsensusScore   float64
	EvidenceScore    float64
	ChallengeScore   float64
	OverallScore     float64
	CreatedAt        time.Time
}
