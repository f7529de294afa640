package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WriteConfidenceRequest struct {
	RequestedScore float64 `json:"requested_score"`
	Determination  string  `json:"determination"`
	Rationale      string  `json:"rationale"`
}

type InquiryResponse struct {
	InquiryID              string  `json:"inquiry_id"`
	GraphID                string  `json:"graph_id"`
	TargetNodeID           string  `json:"target_node_id"`
	ConfidenceScore        float64 `json:"confidence_score"`
	MaxAllowedScore        float64 `json:"max_allowed_score"`
	WeakestNodeID          string  `json:"weakest_node_id,omitempty"`
	WeakestNodeCredibility float64 `json:"weakest_node_credibility"`
	Status                 string  `json:"status"`
	AIDetermination        string  `json:"ai_determination,omitempty"`
	AIRationale            string  `json:"ai_rationale,omitempty"`
	Capped                 bool    `json:"capped"`
}

type InquiryVoteRequest struct {
	Stance string `json:"stance"`
}

type InquiryVoteResponse struct {
	VoteID    string `json:"vote_id"`
	InquiryID string `json:"inquiry_id"`
	UserID    string `json:"user_id"`
	Stance    string `json:"stance"`
}
