package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/alerts"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
)

// AlertDependencies runs the priority alert workflow.
type AlertDependencies interface {
	PriorityAlert(ctx context.Context, req alerts.Request) (alerts.Result, error)
}

// AlertsHandler handles priority alert requests.
type AlertsHandler struct {
	deps AlertDependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertDependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// priorityAlertRequest matches the body the messaging workflow posts.
type priorityAlertRequest struct {
	UserID    string `json:"userId"`
	JobID     string `json:"jobId"`
	SentJobID string `json:"sentJobId"`
	Channel   string `json:"channel"`
}

func (p priorityAlertRequest) toRequest() (alerts.Request, error) {
	switch {
	case strings.TrimSpace(p.UserID) == "":
		return alerts.Request{}, fmt.Errorf("%w: missing userId", ErrBadRequest)
	case strings.TrimSpace(p.JobID) == "":
		return alerts.Request{}, fmt.Errorf("%w: missing jobId", ErrBadRequest)
	}
	ch, err := model.ParseChannel(p.Channel)
	if err != nil {
		return alerts.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return alerts.Request{UserID: p.UserID, PostingID: p.JobID, SendID: p.SentJobID, Channel: ch}, nil
}

type priorityAlertResponse struct {
	Outcome    alerts.Outcome  `json:"outcome"`
	Dispatched bool            `json:"dispatched"`
	Payload    *alerts.Payload `json:"payload,omitempty"`
}

// HandlePriorityAlert handles POST /alerts/priority. Every decision answers
// 200; the outcome field says what happened.
func (h *AlertsHandler) HandlePriorityAlert(w http.ResponseWriter, r *http.Request) {
	const op = "api.priority_alert"
	var body priorityAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.PriorityAlert(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, priorityAlertResponse{
		Outcome:    res.Outcome,
		Dispatched: res.Dispatched,
		Payload:    res.Payload,
	})
}
