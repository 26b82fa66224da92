package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SentDependencies updates delivered postings.
type SentDependencies interface {
	UpdateSentStatus(ctx context.Context, userID, postingID, status string) error
}

// SentHandler handles sent-job status updates.
type SentHandler struct {
	deps SentDependencies
}

// NewSentHandler creates a new sent handler.
func NewSentHandler(deps SentDependencies) *SentHandler {
	return &SentHandler{deps: deps}
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus handles POST /users/{id}/sent/{posting}/status.
func (h *SentHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_sent_status"
	var body statusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := h.deps.UpdateSentStatus(r.Context(), r.PathValue("id"), r.PathValue("posting"), body.Status); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
