package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/inbox-triage/internal/domain"
)

// HandleAllMemories returns everything the engine has learned about a user.
//
//	GET /api/memory?user_id=
func (h *Handlers) HandleAllMemories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	set, err := h.memories.AllMemories(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, set)
}

// HandleMemoryTimeline returns the learning timeline.
//
//	GET /api/memory/timeline?user_id=&days=
func (h *Handlers) HandleMemoryTimeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	events, err := h.memories.Timeline(r.Context(), userID, days)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timeline": events,
		"total":    len(events),
	})
}

// HandleInfluentialMemories returns the memories with the biggest effect on
// scoring.
//
//	GET /api/memory/influential?user_id=&limit=
func (h *Handlers) HandleInfluentialMemories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	memories, err := h.memories.InfluentialMemories(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"influential_memories": memories,
		"total":                len(memories),
	})
}

type updateMemoryRequest struct {
	UserID string `json:"user_id"`
	domain.MemoryUpdate
}

// HandleUpdateMemory applies a user edit to one memory.
//
//	PUT /api/memory/{memoryID}
func (h *Handlers) HandleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")

	var req updateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.memories.UpdateMemory(r.Context(), req.UserID, memoryID, req.MemoryUpdate); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"memory_id": memoryID, "status": "updated"})
}

// HandleDeleteMemory removes one memory's learned influence.
//
//	DELETE /api/memory/{memoryID}?user_id=
func (h *Handlers) HandleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	memoryID := chi.URLParam(r, "memoryID")

	if err := h.memories.DeleteMemory(r.Context(), userID, memoryID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"memory_id": memoryID, "status": "deleted"})
}
