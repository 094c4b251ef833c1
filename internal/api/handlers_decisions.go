package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/service/decision"
)

type recordDecisionRequest struct {
	UserID       string              `json:"user_id"`
	MessageID    string              `json:"message_id,omitempty"`
	SenderEmail  string              `json:"sender_email,omitempty"`
	DecisionType domain.DecisionType `json:"decision_type"`
	DecisionData domain.DecisionData `json:"decision_data"`
	Reasoning    string              `json:"reasoning"`
	Confidence   float64             `json:"confidence"`
}

// HandleRecordDecision appends one decision to the audit trail.
//
//	POST /api/decisions
func (h *Handlers) HandleRecordDecision(w http.ResponseWriter, r *http.Request) {
	var req recordDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := h.decisions.RecordForSender(r.Context(), req.UserID, req.SenderEmail,
		req.DecisionType, req.DecisionData, req.Reasoning, req.Confidence, req.MessageID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"decision_id": id})
}

// HandlePendingDecisions returns the decisions awaiting review, grouped for
// the dashboard.
//
//	GET /api/decisions/pending?user_id=&limit=
func (h *Handlers) HandlePendingDecisions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	decisions, err := h.decisions.PendingReviews(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, decision.Summarize(decisions))
}

type reviewRequest struct {
	UserID              string               `json:"user_id"`
	Approved            bool                 `json:"approved"`
	Correction          *domain.DecisionData `json:"correction,omitempty"`
	CorrectionReasoning string               `json:"correction_reasoning,omitempty"`
}

// HandleReviewDecision applies the user's one-time verdict on a decision.
//
//	POST /api/decisions/{id}/review
func (h *Handlers) HandleReviewDecision(w http.ResponseWriter, r *http.Request) {
	decisionID := chi.URLParam(r, "id")

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	err := h.decisions.Review(r.Context(), decisionID, req.UserID, req.Approved,
		req.Correction, req.CorrectionReasoning)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := "approved"
	if !req.Approved {
		status = "corrected"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"decision_id": decisionID,
		"status":      status,
	})
}

// HandleDecisionHistory returns the audit trail, optionally narrowed by
// message or decision type.
//
//	GET /api/decisions/history?user_id=&message_id=&decision_type=&days=
func (h *Handlers) HandleDecisionHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	decisionType := domain.DecisionType(q.Get("decision_type"))
	if decisionType != "" && !decisionType.Valid() {
		respondError(w, http.StatusBadRequest, "unknown decision_type")
		return
	}

	decisions, err := h.decisions.History(r.Context(), userID, q.Get("message_id"), decisionType, days)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"total":     len(decisions),
	})
}

// HandleMessageDecisions returns every decision recorded about one message.
//
//	GET /api/decisions/message/{messageID}?user_id=
func (h *Handlers) HandleMessageDecisions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	messageID := chi.URLParam(r, "messageID")

	decisions, err := h.decisions.History(r.Context(), userID, messageID, "", 0)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message_id": messageID,
		"decisions":  decisions,
	})
}

// HandleDecisionAccuracy reports approval-rate and confidence calibration.
//
//	GET /api/decisions/accuracy?user_id=&decision_type=&days=
func (h *Handlers) HandleDecisionAccuracy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	decisionType := domain.DecisionType(q.Get("decision_type"))
	if decisionType != "" && !decisionType.Valid() {
		respondError(w, http.StatusBadRequest, "unknown decision_type")
		return
	}

	metrics, err := h.decisions.Accuracy(r.Context(), userID, decisionType, days)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}
