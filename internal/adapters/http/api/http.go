// Package api registers the HTTP routes of the matching engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/alerts"
	service "github.com/Williammicrosaas/VagasPeloWhatsapp/internal/app"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/quota"
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	Matches(ctx context.Context, userID string, limit int) (service.Delivery, error)
	Quota(ctx context.Context, userID string) (quota.Status, error)
	Refresh(ctx context.Context, userID string) error
	PriorityAlert(ctx context.Context, req alerts.Request) (alerts.Result, error)
	UpdateSentStatus(ctx context.Context, userID, postingID, status string) error
	GetStats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	health  *HealthHandler
	stats   *StatsHandler
	matches *MatchesHandler
	alerts  *AlertsHandler
	sent    *SentHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		health:  NewHealthHandler(),
		stats:   NewStatsHandler(deps),
		matches: NewMatchesHandler(deps),
		alerts:  NewAlertsHandler(deps),
		sent:    NewSentHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.health.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.stats.HandleStats, "stats"))
	mux.HandleFunc("GET /users/{id}/matches", MetricsMiddleware(s.matches.HandleGetMatches, "matches"))
	mux.HandleFunc("GET /users/{id}/quota", MetricsMiddleware(s.matches.HandleGetQuota, "quota"))
	mux.HandleFunc("POST /users/{id}/refresh", MetricsMiddleware(s.matches.HandleRefresh, "refresh"))
	mux.HandleFunc("POST /users/{id}/sent/{posting}/status", MetricsMiddleware(s.sent.HandleUpdateStatus, "sent_status"))
	mux.HandleFunc("POST /alerts/priority", MetricsMiddleware(s.alerts.HandlePriorityAlert, "priority_alert"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and store sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w: %w", op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
	}
}
