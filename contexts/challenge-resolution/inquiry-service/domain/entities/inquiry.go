package entities

import "time"

type InquiryStatus string

const (
	InquiryStatusOpen      InquiryStatus = "open"
	InquiryStatusEvaluated InquiryStatus = "evaluated"
	InquiryStatusResolved  InquiryStatus = "resolved"
)

// FormalInquiry is a structured challenge against a node or edge of a claim
// graph. ConfidenceScore <= MaxAllowedScore holds at all times; the ceiling
// is recomputed whenever confidence is written.
type FormalInquiry struct {
	InquiryID              string
	GraphID                string
	TargetNodeID           string
	ConfidenceScore        float64
	MaxAllowedScore        float64
	WeakestNodeID          string
	WeakestNodeCredibility float64
	Status                 InquiryStatus
	AIDetermination        string
	AIRationale            string
	EvaluatedBy            string
	EvaluatedAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NodeCredibility is one referenced evidence node's credibility as supplied
// by the external validation collaborator.
type NodeCredibility struct {
	NodeID      string
	Credibility float64
}

// ConfidenceCeiling takes the minimum credibility across referenced evidence
// nodes, the conservative reading when an inquiry cites nodes of differing
// credibility. An inquiry with no evidence references is uncapped.
func ConfidenceCeiling(refs []NodeCredibility) (float64, string) {
	if len(refs) == 0 {
		return 1.0, ""
	}
	ceiling := refs[0].Credibility
	weakest := refs[0].NodeID
	for _, ref := range refs[1:] {
		if ref.Credibility < ceiling {
			ceiling = ref.Credibility
			weakest = ref.NodeID
		}
	}
	return ceiling, weakest
}

type InquiryStance string

const (
	StanceAgree    InquiryStance = "agree"
	StanceDisagree InquiryStance = "disagree"
	StanceNeutral  InquiryStance = "neutral"
)

func ValidStance(stance InquiryStance) bool {
	switch stance {
	case StanceAgree, StanceDisagree, StanceNeutral:
		return true
	default:
		return false
	}
}

// InquiryVote is pure community sentiment, one row per (inquiry, user). It
// must never influence the inquiry's confidence score.
type InquiryVote struct {
	VoteID    string
	InquiryID string
	UserID    string
	Stance    InquiryStance
	CreatedAt time.Time
	UpdatedAt time.Time
}
