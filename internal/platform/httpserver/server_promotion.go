package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	promotionerrors "veritas/contexts/knowledge-curation/promotion-engine/domain/errors"
	promotionhttp "veritas/contexts/knowledge-curation/promotion-engine/transport/http"
)

func writePromotionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, promotionhttp.ErrorResponse{Code: code, Message: message})
}

func writePromotionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, promotionerrors.ErrAuthenticationRequired):
		writePromotionError(w, http.StatusUnauthorized, "authentication_required", err.Error())
	case errors.Is(err, promotionerrors.ErrValidation):
		writePromotionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, promotionerrors.ErrGraphNotFound):
		writePromotionError(w, http.StatusNotFound, "graph_not_found", err.Error())
	case errors.Is(err, promotionerrors.ErrStepNotFound):
		writePromotionError(w, http.StatusNotFound, "step_not_found", err.Error())
	case errors.Is(err, promotionerrors.ErrImmutableEntity):
		writePromotionError(w, http.StatusConflict, "immutable_entity", err.Error())
	case errors.Is(err, promotionerrors.ErrTerminalLevel):
		writePromotionError(w, http.StatusConflict, "terminal_level", err.Error())
	case errors.Is(err, promotionerrors.ErrDuplicateCompletion):
		writePromotionError(w, http.StatusConflict, "duplicate_completion", err.Error())
	case errors.Is(err, promotionerrors.ErrIdempotencyKeyRequired):
		writePromotionError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, promotionerrors.ErrIdempotencyConflict):
		writePromotionError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, promotionerrors.ErrTransientConflict):
		writePromotionError(w, http.StatusConflict, "transient_conflict", err.Error())
	default:
		writePromotionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requirePromotionUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writePromotionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePromotionUser(w, r)
	if !ok {
		return
	}

	var req promotionhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePromotionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.promotion.Handler.CastVoteHandler(r.Context(), r.PathValue("graph_id"), userID, req)
	if err != nil {
		writePromotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePromotionUser(w, r)
	if !ok {
		return
	}

	if err := s.promotion.Handler.RemoveVoteHandler(r.Context(), r.PathValue("graph_id"), userID); err != nil {
		writePromotionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetConsensus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.promotion.Handler.ConsensusHandler(r.Context(), r.PathValue("graph_id"))
	if err != nil {
		writePromotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEligibility(w http.ResponseWriter, r *http.Request) {
	graphID := r.PathValue("graph_id")

	// fresh=true bypasses the display cache for moderation tooling.
	var err error
	var resp any
	if r.URL.Query().Get("fresh") == "true" {
		resp, err = s.promotion.Handler.EvaluateHandler(r.Context(), graphID)
	} else {
		resp, err = s.promotion.Handler.EligibilityHandler(r.Context(), graphID)
	}
	if err != nil {
		writePromotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePromotionUser(w, r)
	if !ok {
		return
	}

	err := s.promotion.Handler.CompleteStepHandler(
		r.Context(),
		r.PathValue("graph_id"),
		r.PathValue("step_id"),
		userID,
	)
	if err != nil {
		writePromotionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestPromotion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePromotionUser(w, r)
	if !ok {
		return
	}

	resp, err := s.promotion.Handler.RequestPromotionHandler(
		r.Context(),
		r.PathValue("graph_id"),
		userID,
		r.Header.Get("Idempotency-Key"),
	)
	if err != nil {
		writePromotionDomainError(w, err)
		return
	}
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListPromotions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.promotion.Handler.PromotionLedgerHandler(r.Context(), r.PathValue("graph_id"))
	if err != nil {
		writePromotionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
