package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	inquiryservice "veritas/contexts/challenge-resolution/inquiry-service"
	promotionengine "veritas/contexts/knowledge-curation/promotion-engine"
	reputationservice "veritas/contexts/knowledge-curation/reputation-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "veritas/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	promotion  promotionengine.Module
	inquiry    inquiryservice.Module
	reputation reputationservice.Module
}

func New(
	promotionModule promotionengine.Module,
	inquiryModule inquiryservice.Module,
	reputationModule reputationservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		promotion:  promotionModule,
		inquiry:    inquiryModule,
		reputation: reputationModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/graphs/{graph_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("DELETE /v1/graphs/{graph_id}/votes", s.handleRemoveVote)
	s.mux.HandleFunc("GET /v1/graphs/{graph_id}/consensus", s.handleGetConsensus)
	s.mux.HandleFunc("GET /v1/graphs/{graph_id}/eligibility", s.handleGetEligibility)
	s.mux.HandleFunc("POST /v1/graphs/{graph_id}/steps/{step_id}/complete", s.handleCompleteStep)
	s.mux.HandleFunc("POST /v1/graphs/{graph_id}/promote", s.handleRequestPromotion)
	s.mux.HandleFunc("GET /v1/graphs/{graph_id}/promotions", s.handleListPromotions)

	s.mux.HandleFunc("POST /v1/inquiries/{inquiry_id}/confidence", s.handleWriteConfidence)
	s.mux.HandleFunc("POST /v1/inquiries/{inquiry_id}/resolve", s.handleResolveInquiry)
	s.mux.HandleFunc("POST /v1/inquiries/{inquiry_id}/votes", s.handleCastInquiryVote)

	s.mux.HandleFunc("GET /v1/users/{user_id}/reputation", s.handleGetReputation)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
