package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/stillmind/wellbeing-api/internal/engine"
	"github.com/stillmind/wellbeing-api/internal/models"
)

// SessionRepositoryInterface defines the interface for session repository
// operations. The interface enables mock implementations in tests.
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *models.MeditationSession) error
	RecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.MeditationSession, error)
}

// MoodRepositoryInterface defines the interface for mood repository
// operations
type MoodRepositoryInterface interface {
	Create(ctx context.Context, entry *models.MoodEntry) error
	RecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.MoodEntry, error)
}

// AlertRepositoryInterface defines the interface for alert repository
// operations
type AlertRepositoryInterface interface {
	CreateAlert(ctx context.Context, alert *models.ContextualAlert) error
	MarkNotified(ctx context.Context, alertID uuid.UUID) error
	RecordResponse(ctx context.Context, alertID, userID uuid.UUID, effectiveness int) error
	RecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.ContextualAlert, error)
}

// HistoryReader adapts the session and mood repositories to the engine's
// history collaborator contract.
type HistoryReader struct {
	sessions SessionRepositoryInterface
	moods    MoodRepositoryInterface
}

// NewHistoryReader creates a history reader over the given repositories
func NewHistoryReader(sessions SessionRepositoryInterface, moods MoodRepositoryInterface) *HistoryReader {
	return &HistoryReader{sessions: sessions, moods: moods}
}

// RecentSessions returns up to limit sessions, newest first
func (h *HistoryReader) RecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.MeditationSession, error) {
	return h.sessions.RecentByUserID(ctx, userID, limit)
}

// RecentMoodEntries returns up to limit mood entries, newest first
func (h *HistoryReader) RecentMoodEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.MoodEntry, error) {
	return h.moods.RecentByUserID(ctx, userID, limit)
}

// Ensure concrete types implement the interfaces
var (
	_ SessionRepositoryInterface = (*SessionRepository)(nil)
	_ MoodRepositoryInterface    = (*MoodRepository)(nil)
	_ AlertRepositoryInterface   = (*AlertRepository)(nil)
	_ engine.HistoryReader       = (*HistoryReader)(nil)
	_ engine.ScheduleStore       = (*ScheduleRepository)(nil)
	_ engine.AlertStore          = (*AlertRepository)(nil)
)
