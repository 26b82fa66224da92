package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/Williammicrosaas/VagasPeloWhatsapp/internal/app"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/types"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/quota"
)

// MatchDependencies defines what the matches routes need.
type MatchDependencies interface {
	Matches(ctx context.Context, userID string, limit int) (service.Delivery, error)
	Quota(ctx context.Context, userID string) (quota.Status, error)
	Refresh(ctx context.Context, userID string) error
}

// MatchesHandler serves ranked matches and quota for a user.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type matchesResponse struct {
	UserID   string             `json:"user_id"`
	Matches  []types.MatchEntry `json:"matches"`
	Quota    types.Quota        `json:"quota"`
	Degraded bool               `json:"degraded,omitempty"`
}

func quotaView(st quota.Status) types.Quota {
	return types.Quota{Limit: st.Limit, Used: st.Used, Remaining: st.Remaining(), Allowed: st.Allowed}
}

// HandleGetMatches handles GET /users/{id}/matches?limit=N. A failed ranking
// still answers 200 with an empty list.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matches"
	userID := r.PathValue("id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%s: %w: limit must be a positive integer", op, ErrBadRequest))
			return
		}
		limit = n
	}

	d, err := h.deps.Matches(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, matchesResponse{
		UserID:   userID,
		Matches:  types.Entries(d.Matches),
		Quota:    quotaView(d.Quota),
		Degraded: d.Degraded,
	})
}

// HandleGetQuota handles GET /users/{id}/quota.
func (h *MatchesHandler) HandleGetQuota(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Quota(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "api.get_quota", err)
		return
	}
	writeJSON(w, http.StatusOK, quotaView(st))
}

// HandleRefresh handles POST /users/{id}/refresh by queueing a background pass.
func (h *MatchesHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Refresh(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, "api.refresh", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
