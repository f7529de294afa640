package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	inquiryerrors "veritas/contexts/challenge-resolution/inquiry-service/domain/errors"
	inquiryhttp "veritas/contexts/challenge-resolution/inquiry-service/transport/http"
)

func writeInquiryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, inquiryhttp.ErrorResponse{Code: code, Message: message})
}

func writeInquiryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inquiryerrors.ErrAuthenticationRequired):
		writeInquiryError(w, http.StatusUnauthorized, "authentication_required", err.Error())
	case errors.Is(err, inquiryerrors.ErrValidation):
		writeInquiryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, inquiryerrors.ErrInquiryNotFound):
		writeInquiryError(w, http.StatusNotFound, "inquiry_not_found", err.Error())
	case errors.Is(err, inquiryerrors.ErrInquiryResolved):
		writeInquiryError(w, http.StatusConflict, "inquiry_resolved", err.Error())
	case errors.Is(err, inquiryerrors.ErrInquiryNotEvaluated):
		writeInquiryError(w, http.StatusConflict, "inquiry_not_evaluated", err.Error())
	case errors.Is(err, inquiryerrors.ErrTransientConflict):
		writeInquiryError(w, http.StatusConflict, "transient_conflict", err.Error())
	default:
		writeInquiryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleWriteConfidence(w http.ResponseWriter, r *http.Request) {
	var req inquiryhttp.WriteConfidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInquiryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.inquiry.Handler.WriteConfidenceHandler(r.Context(), r.PathValue("inquiry_id"), req)
	if err != nil {
		writeInquiryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveInquiry(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeInquiryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.inquiry.Handler.ResolveInquiryHandler(r.Context(), r.PathValue("inquiry_id"), userID)
	if err != nil {
		writeInquiryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastInquiryVote(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeInquiryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req inquiryhttp.InquiryVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInquiryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.inquiry.Handler.CastInquiryVoteHandler(r.Context(), r.PathValue("inquiry_id"), userID, req)
	if err != nil {
		writeInquiryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
