package api

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
	"github.com/ignite/inbox-triage/internal/service/scoring"
)

// scoreMessage is one inbound message to score.
type scoreMessage struct {
	MessageID string                 `json:"message_id"`
	From      string                 `json:"from"`
	Subject   string                 `json:"subject"`
	Snippet   string                 `json:"snippet"`
	Signals   domain.PlatformSignals `json:"signals"`
}

type scoreRequest struct {
	UserID   string         `json:"user_id"`
	Messages []scoreMessage `json:"messages"`

	// Escalate opts the batch into deep reasoning for low-confidence
	// results. Record controls whether each score lands in the audit trail;
	// both default to true.
	Escalate *bool `json:"escalate,omitempty"`
	Record   *bool `json:"record,omitempty"`
}

type scoredMessage struct {
	MessageID string `json:"message_id"`
	domain.ScoringResult
	DecisionID string `json:"decision_id,omitempty"`
}

// HandleScore scores a batch of messages for one user.
//
//	POST /api/score
func (h *Handlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	for _, m := range req.Messages {
		if m.From == "" {
			respondError(w, http.StatusBadRequest, "every message needs a from address")
			return
		}
	}

	ctx := r.Context()
	cands := make([]scoring.Candidate, len(req.Messages))
	for i, m := range req.Messages {
		result, err := h.scoring.Score(ctx, req.UserID, m.From, m.Subject, m.Snippet, m.Signals)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		cands[i] = scoring.Candidate{
			MessageID: m.MessageID,
			From:      m.From,
			Subject:   m.Subject,
			Snippet:   m.Snippet,
			Composite: result,
		}
	}

	results := make([]domain.ScoringResult, len(cands))
	for i := range cands {
		results[i] = cands[i].Composite
	}
	if h.escalator != nil && (req.Escalate == nil || *req.Escalate) {
		results = h.escalator.Refine(ctx, req.UserID, cands)
	}

	out := make([]scoredMessage, len(results))
	record := req.Record == nil || *req.Record
	for i, result := range results {
		out[i] = scoredMessage{MessageID: req.Messages[i].MessageID, ScoringResult: result}
		if !record {
			continue
		}
		data := domain.DecisionData{ImportanceScore: &domain.ImportanceScoreData{
			ImportanceScore: result.ImportanceScore,
			SuggestedAction: result.SuggestedAction,
		}}
		id, err := h.decisions.RecordForSender(ctx, req.UserID, req.Messages[i].From,
			domain.DecisionImportanceScoring, data, result.Reasoning, result.Confidence, req.Messages[i].MessageID)
		if err != nil {
			// Scoring already succeeded; a failed audit write degrades the
			// response instead of discarding the scores.
			logger.Warn("failed to record scoring decision",
				"message_id", req.Messages[i].MessageID, "error", err.Error())
			continue
		}
		out[i].DecisionID = id
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"results": out,
	})
}
