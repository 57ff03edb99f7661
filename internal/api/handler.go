package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// analyticsService is the part of the query service the API calls.
type analyticsService interface {
	RangeStats(ctx context.Context, start, end string, field analysis.StatField) (service.StatsResult, error)
	PersonalRecords(ctx context.Context) (analysis.RecordSet, error)
	Cycle(ctx context.Context, weeks int) (analysis.CycleAnalysis, error)
	Trend(ctx context.Context, metric analysis.Metric, scale analysis.Scale) ([]analysis.TrendPoint, error)
	Achievements(ctx context.Context) ([]analysis.AchievementProgress, error)
}

var _ analyticsService = (*service.QueryService)(nil)

// Handler serves the analytics routes.
type Handler struct {
	service analyticsService
}

// NewHandler creates a handler over svc.
func NewHandler(svc analyticsService) *Handler {
	return &Handler{service: svc}
}

// Register adds the API routes to r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET").Name("health")
	r.HandleFunc("/stats", h.handleStats).Methods("POST").Name("stats")
	r.HandleFunc("/trend", h.handleTrend).Methods("GET").Name("trend")
	r.HandleFunc("/records", h.handleRecords).Methods("GET").Name("records")
	r.HandleFunc("/cycle", h.handleCycle).Methods("GET").Name("cycle")
	r.HandleFunc("/achievements", h.handleAchievements).Methods("GET").Name("achievements")
}

// StatsRequest is the body of POST /stats. When Workouts is omitted the
// stored history is used.
type StatsRequest struct {
	Workouts  []analysis.Workout `json:"workouts"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Field     string             `json:"field"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Errorf("api: marshal response: %s", err)
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		log.Errorf("api: write response: %s", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.StartDate == "" || req.EndDate == "" || req.Field == "" {
		http.Error(w, "start_date, end_date and field are required", http.StatusBadRequest)
		return
	}

	// Unknown fields are answered with a null value.
	field := analysis.StatField(req.Field)
	if req.Workouts != nil {
		writeJSON(w, http.StatusOK, service.NewStatsResult(req.Workouts, req.StartDate, req.EndDate, field))
		return
	}

	res, err := h.service.RangeStats(r.Context(), req.StartDate, req.EndDate, field)
	if err != nil {
		log.Errorf("api: range stats: %s", err)
		http.Error(w, "stats error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric, err := analysis.ParseMetric(q.Get("metric"))
	if err != nil {
		http.Error(w, "metric is required", http.StatusBadRequest)
		return
	}
	scale := analysis.ScaleDaily
	if raw := q.Get("scale"); raw != "" {
		if scale, err = analysis.ParseScale(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	points, err := h.service.Trend(r.Context(), metric, scale)
	if err != nil {
		log.Errorf("api: trend: %s", err)
		http.Error(w, "trend error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.PersonalRecords(r.Context())
	if err != nil {
		log.Errorf("api: records: %s", err)
		http.Error(w, "records error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleAchievements(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Achievements(r.Context())
	if err != nil {
		log.Errorf("api: achievements: %s", err)
		http.Error(w, "achievements error", http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("unlocked") == "true" {
		progress = analysis.UnlockedAchievements(progress)
		if progress == nil {
			progress = []analysis.AchievementProgress{}
		}
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleCycle(w http.ResponseWriter, r *http.Request) {
	weeks := 0
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "weeks must be a non-negative integer", http.StatusBadRequest)
			return
		}
		weeks = n
	}

	cycle, err := h.service.Cycle(r.Context(), weeks)
	if err != nil {
		log.Errorf("api: cycle: %s", err)
		http.Error(w, "cycle error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}
