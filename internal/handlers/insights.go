package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stillmind/wellbeing-api/internal/engine"
	"github.com/stillmind/wellbeing-api/internal/middleware"
)

// MaxForecastDays bounds the forecast horizon
const MaxForecastDays = 14

// InsightsHandler serves the analysis read endpoints
type InsightsHandler struct {
	engine SchedulingEngine
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(eng SchedulingEngine) *InsightsHandler {
	return &InsightsHandler{engine: eng}
}

// RegisterRoutes registers insight routes on the given router
// The router should already have the /insights prefix
func (h *InsightsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/optimal-times", h.GetOptimalTimes).Methods("GET")
	r.HandleFunc("/recommendations", h.GetRecommendations).Methods("GET")
	r.HandleFunc("/forecast", h.GetForecast).Methods("GET")
}

// GetOptimalTimes returns the ranked optimal practice time slots
func (h *InsightsHandler) GetOptimalTimes(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	slots, err := h.engine.AnalyzeOptimalTimes(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to analyze optimal times")
		return
	}

	respondJSON(w, http.StatusOK, slots)
}

// GetRecommendations returns context-sensitive practice recommendations
// based on the user's latest mood state and schedule gaps
func (h *InsightsHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	recommendations, err := h.engine.GenerateDynamicRecommendations(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate recommendations")
		return
	}

	respondJSON(w, http.StatusOK, recommendations)
}

// GetForecast returns the predicted schedule for the coming days
func (h *InsightsHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	days := engine.DefaultForecastDays
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > MaxForecastDays {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "days must be between 1 and 14")
			return
		}
		days = parsed
	}

	forecast, err := h.engine.PredictOptimalSchedule(r.Context(), user.ID, days)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute forecast")
		return
	}

	respondJSON(w, http.StatusOK, forecast)
}
