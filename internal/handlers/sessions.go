package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
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

const (
	// DefaultHistoryLimit is the default number of records returned by list endpoints
	DefaultHistoryLimit = 50
	// MaxHistoryLimit is the maximum number of records returned by list endpoints
	MaxHistoryLimit = 200
	// MaxSessionDurationMinutes caps a single recorded session
	MaxSessionDurationMinutes = 480
)

// SessionHandler handles meditation session requests
type SessionHandler struct {
	sessionRepo database.SessionRepositoryInterface
	jobQueue    queue.JobQueue
	logger      *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionRepo database.SessionRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessionRepo: sessionRepo, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers session routes on the given router
// The router should already have the /sessions prefix
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListSessions).Methods("GET")
	r.HandleFunc("", h.CreateSession).Methods("POST")
}

// CreateSessionRequest represents a create session request
type CreateSessionRequest struct {
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,min=1,max=480"`
	Quality         int        `json:"quality" validate:"required,min=1,max=5"`
	Techniques      []string   `json:"techniques"`
	MoodBefore      *float64   `json:"mood_before,omitempty"`
	MoodAfter       *float64   `json:"mood_after,omitempty"`
}

// ListSessions lists recent sessions for the authenticated user, newest first
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := parseLimit(r)
	sessions, err := h.sessionRepo.RecentByUserID(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve sessions")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// CreateSession records a completed meditation session and queues the
// analysis jobs it should trigger
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateSessionRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.DurationMinutes < 1 || req.DurationMinutes > MaxSessionDurationMinutes {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("duration_minutes must be between 1 and %d", MaxSessionDurationMinutes))
		return
	}
	if req.Quality < 1 || req.Quality > 5 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "quality must be between 1 and 5")
		return
	}
	if req.MoodBefore != nil {
		if err := validation.ValidateRating("mood_before", *req.MoodBefore); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}
	if req.MoodAfter != nil {
		if err := validation.ValidateRating("mood_after", *req.MoodAfter); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	techniques := make([]string, 0, len(req.Techniques))
	for _, t := range req.Techniques {
		if sanitized := validation.SanitizeText(t); sanitized != "" {
			techniques = append(techniques, sanitized)
		}
	}

	ctx := r.Context()
	session := &models.MeditationSession{
		ID:              uuid.New(),
		UserID:          user.ID,
		Timestamp:       timestamp,
		DurationMinutes: req.DurationMinutes,
		Quality:         req.Quality,
		Techniques:      techniques,
		MoodBefore:      req.MoodBefore,
		MoodAfter:       req.MoodAfter,
	}

	if err := h.sessionRepo.Create(ctx, session); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create session")
		return
	}

	// Each new session feeds the time analysis and schedule evaluation.
	// Analysis is best-effort; the session is already persisted.
	for _, jobType := range []queue.JobType{queue.JobTypeAnalyzeTimes, queue.JobTypeAdaptSchedule} {
		job := queue.NewJob(jobType, user.ID)
		if err := h.jobQueue.Enqueue(ctx, job); err != nil {
			h.logger.Warn("failed_to_enqueue_analysis_job",
				zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
				zap.String("job_type", string(jobType)),
				zap.String("error", logpkg.SanitizeError(err)),
			)
		}
	}

	respondJSON(w, http.StatusCreated, session)
}

// parseLimit reads the limit query parameter, clamped to MaxHistoryLimit
func parseLimit(r *http.Request) int {
	limit := DefaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			if parsed > MaxHistoryLimit {
				limit = MaxHistoryLimit
			} else {
				limit = parsed
			}
		}
	}
	return limit
}
