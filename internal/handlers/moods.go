package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/database"
	logpkg "github.com/stillmind/wellbeing-api/internal/logger"
	"github.com/stillmind/wellbeing-api/internal/middleware"
	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/queue"
	"github.com/stillmind/wellbeing-api/internal/validation"
)

// MoodHandler handles mood check-in requests
type MoodHandler struct {
	moodRepo database.MoodRepositoryInterface
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(moodRepo database.MoodRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *MoodHandler {
	return &MoodHandler{moodRepo: moodRepo, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers mood routes on the given router
// The router should already have the /moods prefix
func (h *MoodHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListMoodEntries).Methods("GET")
	r.HandleFunc("", h.CreateMoodEntry).Methods("POST")
}

// CreateMoodEntryRequest represents a mood check-in request
type CreateMoodEntryRequest struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Overall   float64    `json:"overall"`
	Energy    float64    `json:"energy"`
	Anxiety   float64    `json:"anxiety"`
	Happiness float64    `json:"happiness"`
	Stress    float64    `json:"stress"`
	Focus     float64    `json:"focus"`
}

// ListMoodEntries lists recent mood entries for the authenticated user,
// newest first
func (h *MoodHandler) ListMoodEntries(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := parseLimit(r)
	entries, err := h.moodRepo.RecentByUserID(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve mood entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// CreateMoodEntry records a mood check-in and queues the pattern monitoring
// jobs it should trigger
func (h *MoodHandler) CreateMoodEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateMoodEntryRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	for field, value := range map[string]float64{
		"overall":   req.Overall,
		"energy":    req.Energy,
		"anxiety":   req.Anxiety,
		"happiness": req.Happiness,
		"stress":    req.Stress,
		"focus":     req.Focus,
	} {
		if err := validation.ValidateRating(field, value); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	ctx := r.Context()
	entry := &models.MoodEntry{
		ID:        uuid.New(),
		UserID:    user.ID,
		Timestamp: timestamp,
		Overall:   req.Overall,
		Energy:    req.Energy,
		Anxiety:   req.Anxiety,
		Happiness: req.Happiness,
		Stress:    req.Stress,
		Focus:     req.Focus,
	}

	if err := h.moodRepo.Create(ctx, entry); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create mood entry")
		return
	}

	// Every check-in triggers a pattern sweep. Best-effort; the entry is
	// already persisted.
	for _, jobType := range []queue.JobType{queue.JobTypeMonitorStress, queue.JobTypeMonitorMood} {
		job := queue.NewJob(jobType, user.ID)
		if err := h.jobQueue.Enqueue(ctx, job); err != nil {
			h.logger.Warn("failed_to_enqueue_monitoring_job",
				zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
				zap.String("job_type", string(jobType)),
				zap.String("error", logpkg.SanitizeError(err)),
			)
		}
	}

	respondJSON(w, http.StatusCreated, entry)
}
