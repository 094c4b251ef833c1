// Package api exposes the triage engine over HTTP: scoring, the decision
// audit trail, and the learned-memory surface. Handlers stay thin; all
// semantics live in the service packages.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ignite/inbox-triage/internal/pkg/logger"
	"github.com/ignite/inbox-triage/internal/service/decision"
	"github.com/ignite/inbox-triage/internal/service/memory"
	"github.com/ignite/inbox-triage/internal/service/scoring"
)

// Handlers bundles the service dependencies for the HTTP layer.
type Handlers struct {
	scoring   *scoring.Service
	escalator *scoring.Escalator
	decisions *decision.Service
	memories  *memory.Service
}

// NewHandlers creates the handler set. escalator may be nil when no external
// reasoning service is configured; scoring then always returns composite
// results.
func NewHandlers(sc *scoring.Service, esc *scoring.Escalator, dec *decision.Service, mem *memory.Service) *Handlers {
	return &Handlers{scoring: sc, escalator: esc, decisions: dec, memories: mem}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognized is treated as internal and sanitized: the full error is
// logged, the client sees a generic message.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, decision.ErrNotFound) || errors.Is(err, memory.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, decision.ErrAlreadyReviewed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, decision.ErrValidation) || errors.Is(err, memory.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// requireUserID pulls the user id from the query string. Upstream auth
// terminates before this service; the id arrives as an already-verified
// query parameter.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return "", false
	}
	return userID, true
}
