package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	Value     float64 `json:"value"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type VoteResponse struct {
	VoteID             string  `json:"vote_id"`
	GraphID            string  `json:"graph_id"`
	UserID             string  `json:"user_id"`
	Value              float64 `json:"value"`
	Weight             float64 `json:"weight"`
	ReputationSnapshot float64 `json:"reputation_snapshot"`
	Reasoning          string  `json:"reasoning,omitempty"`
	WasUpdate          bool    `json:"was_update"`
}

type EligibilityResponse struct {
	GraphID                    string   `json:"graph_id"`
	MethodologyCompletionScore float64  `json:"methodology_completion_score"`
	ConsensusScore             float64  `json:"consensus_score"`
	EvidenceQualityScore       float64  `json:"evidence_quality_score"`
	ChallengeResolutionScore   float64  `json:"challenge_resolution_score"`
	OverallScore               float64  `json:"overall_score"`
	IsEligible                 bool     `json:"is_eligible"`
	MissingRequirements        []string `json:"missing_requirements"`
}

type ConsensusResponse struct {
	GraphID   string  `json:"graph_id"`
	Score     float64 `json:"score"`
	VoteCount int     `json:"vote_count"`
	Reached   bool    `json:"reached"`
}

type PromotionResponse struct {
	Success             bool     `json:"success"`
	GraphID             string   `json:"graph_id"`
	Level               int      `json:"level"`
	AlreadyPromoted     bool     `json:"already_promoted"`
	MissingRequirements []string `json:"missing_requirements,omitempty"`
}

type PromotionEventItem struct {
	EventID          string  `json:"event_id"`
	GraphID          string  `json:"graph_id"`
	FromLevel        int     `json:"from_level"`
	ToLevel          int     `json:"to_level"`
	RequestedBy      string  `json:"requested_by"`
	MethodologyScore float64 `json:"methodology_score"`
	ConsensusScore   float64 `json:"consensus_score"`
	EvidenceScore    float64 `json:"evidence_score"`
	ChallengeScore   float64 `json:"challenge_score"`
	OverallScore     float64 `json:"overall_score"`
	CreatedAt        string  `json:"created_at"`
}

type PromotionLedgerResponse struct {
	GraphID string               `json:"graph_id"`
	Items   []PromotionEventItem `json:"items"`
}
