package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stillmind/wellbeing-api/internal/database"
	"github.com/stillmind/wellbeing-api/internal/middleware"
)

// AlertHandler handles contextual alert requests
type AlertHandler struct {
	alertRepo database.AlertRepositoryInterface
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertRepo database.AlertRepositoryInterface) *AlertHandler {
	return &AlertHandler{alertRepo: alertRepo}
}

// RegisterRoutes registers alert routes on the given router
// The router should already have the /alerts prefix
func (h *AlertHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListAlerts).Methods("GET")
	r.HandleFunc("/{id}/respond", h.RespondToAlert).Methods("POST")
}

// RespondToAlertRequest carries the user's feedback on an intervention
type RespondToAlertRequest struct {
	Effectiveness int `json:"effectiveness" validate:"required,min=1,max=5"`
}

// ListAlerts lists recent alerts for the authenticated user, newest first
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := parseLimit(r)
	alerts, err := h.alertRepo.RecentByUserID(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve alerts")
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

// RespondToAlert records the user's feedback on an alert's intervention
func (h *AlertHandler) RespondToAlert(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid alert ID")
		return
	}

	var req RespondToAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if req.Effectiveness < 1 || req.Effectiveness > 5 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "effectiveness must be between 1 and 5")
		return
	}

	if err := h.alertRepo.RecordResponse(r.Context(), id, user.ID, req.Effectiveness); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Alert not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"recorded": true})
}
