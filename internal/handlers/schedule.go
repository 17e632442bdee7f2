package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stillmind/wellbeing-api/internal/engine"
	"github.com/stillmind/wellbeing-api/internal/middleware"
	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/validation"
)

// SchedulingEngine is the subset of engine operations the schedule and
// insight handlers invoke. The interface enables mock implementations in
// tests.
type SchedulingEngine interface {
	CreateSmartSchedule(ctx context.Context, userID uuid.UUID, prefs models.SchedulePreferences) (*models.SmartSchedule, error)
	AdaptScheduleBasedOnPerformance(ctx context.Context, userID uuid.UUID) (*models.SmartSchedule, error)
	AnalyzeOptimalTimes(ctx context.Context, userID uuid.UUID) ([]models.OptimalTimeSlot, error)
	GenerateDynamicRecommendations(ctx context.Context, userID uuid.UUID) ([]models.ScheduleRecommendation, error)
	PredictOptimalSchedule(ctx context.Context, userID uuid.UUID, daysAhead int) (*engine.ScheduleForecast, error)
}

// ScheduleStore is the read side of schedule persistence used by handlers.
type ScheduleStore interface {
	ActiveSchedule(ctx context.Context, userID uuid.UUID) (*models.SmartSchedule, error)
}

// ScheduleHandler handles smart schedule requests
type ScheduleHandler struct {
	engine    SchedulingEngine
	schedules ScheduleStore
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(eng SchedulingEngine, schedules ScheduleStore) *ScheduleHandler {
	return &ScheduleHandler{engine: eng, schedules: schedules}
}

// RegisterRoutes registers schedule routes on the given router
// The router should already have the /schedule prefix
func (h *ScheduleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSchedule).Methods("GET")
	r.HandleFunc("", h.CreateSchedule).Methods("POST")
	r.HandleFunc("/adapt", h.AdaptSchedule).Methods("POST")
}

// CreateScheduleRequest represents a create schedule request. Zero-valued
// fields fall back to defaults.
type CreateScheduleRequest struct {
	ScheduleType         string   `json:"schedule_type,omitempty"`
	DailyDurationMinutes int      `json:"daily_duration_minutes,omitempty"`
	MaxSessionsPerDay    int      `json:"max_sessions_per_day,omitempty"`
	PreferredTechniques  []string `json:"preferred_techniques,omitempty"`
	MinimumGapMinutes    int      `json:"minimum_gap_minutes,omitempty"`
}

// GetSchedule returns the user's active schedule
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	schedule, err := h.schedules.ActiveSchedule(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve schedule")
		return
	}
	if schedule == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No active schedule")
		return
	}

	respondJSON(w, http.StatusOK, schedule)
}

// CreateSchedule builds and activates a personalized schedule, replacing any
// existing active schedule
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateScheduleRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.ScheduleType != "" {
		if err := validation.ValidateScheduleType(req.ScheduleType); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}
	if req.DailyDurationMinutes < 0 || req.MaxSessionsPerDay < 0 || req.MinimumGapMinutes < 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Preference values cannot be negative")
		return
	}

	techniques := make([]string, 0, len(req.PreferredTechniques))
	for _, t := range req.PreferredTechniques {
		if sanitized := validation.SanitizeText(t); sanitized != "" {
			techniques = append(techniques, sanitized)
		}
	}

	prefs := models.SchedulePreferences{
		ScheduleType:         models.ScheduleType(req.ScheduleType),
		DailyDurationMinutes: req.DailyDurationMinutes,
		MaxSessionsPerDay:    req.MaxSessionsPerDay,
		PreferredTechniques:  techniques,
		MinimumGapMinutes:    req.MinimumGapMinutes,
	}

	schedule, err := h.engine.CreateSmartSchedule(r.Context(), user.ID, prefs)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create schedule")
		return
	}

	respondJSON(w, http.StatusCreated, schedule)
}

// AdaptSchedule evaluates the active schedule against recent performance and
// re-optimizes it when it is underperforming
func (h *ScheduleHandler) AdaptSchedule(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	schedule, err := h.engine.AdaptScheduleBasedOnPerformance(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to adapt schedule")
		return
	}
	if schedule == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No active schedule")
		return
	}

	respondJSON(w, http.StatusOK, schedule)
}
