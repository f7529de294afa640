package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ReputationResponse struct {
	UserID               string  `json:"user_id"`
	EvidenceQuality      float64 `json:"evidence_quality"`
	VoteAlignment        float64 `json:"vote_alignment"`
	MethodologyComponent float64 `json:"methodology_component"`
	ChallengeComponent   float64 `json:"challenge_component"`
	Overall              float64 `json:"overall"`
	CalculatedAt         string  `json:"calculated_at"`
}
