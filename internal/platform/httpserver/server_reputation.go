package httpserver

import (
	"errors"
	"net/http"
	"strings"

	reputationerrors "veritas/contexts/knowledge-curation/reputation-service/domain/errors"
	reputationhttp "veritas/contexts/knowledge-curation/reputation-service/transport/http"
)

func writeReputationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reputationhttp.ErrorResponse{Code: code, Message: message})
}

func writeReputationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reputationerrors.ErrInvalidRequest):
		writeReputationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeReputationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeReputationError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}

	resp, err := s.reputation.Handler.GetReputationHandler(r.Context(), userID)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
