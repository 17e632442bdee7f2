package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// History fetch windows. The history collaborators return newest-first and
// silently return fewer records when history is short.
const (
	sessionHistoryLimit = 100
	adherenceWindow     = 30
	moodHistoryLimit    = 20
)

// HistoryReader supplies ordered session and mood history for a user.
// Implementations return records newest-first and never error on short
// history.
type HistoryReader interface {
	RecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.MeditationSession, error)
	RecentMoodEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.MoodEntry, error)
}

// ScheduleStore persists smart schedules and computed time slots.
type ScheduleStore interface {
	// ActiveSchedule returns nil, nil when the user has no active schedule.
	ActiveSchedule(ctx context.Context, userID uuid.UUID) (*models.SmartSchedule, error)
	// ReplaceActiveSchedule atomically replaces the user's active schedule.
	ReplaceActiveSchedule(ctx context.Context, schedule *models.SmartSchedule) error
	// SaveTimeSlots replaces the persisted analysis slots for the user.
	SaveTimeSlots(ctx context.Context, userID uuid.UUID, slots []models.OptimalTimeSlot) error
}

// AlertStore persists contextual alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.ContextualAlert) error
	MarkNotified(ctx context.Context, alertID uuid.UUID) error
}

// Notifier is the intervention-delivery collaborator. Delivery mechanics
// are out of scope here; implementations typically enqueue a dispatch job.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType models.NotificationType) error
}

// ReminderScheduler is the reminder-delivery collaborator, invoked once per
// schedule slot when a schedule is created.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, userID uuid.UUID, slot models.OptimalTimeSlot) error
}

// Engine is the adaptive wellbeing monitoring and scheduling engine. All
// analysis is synchronous, single-pass computation over already-fetched
// history; the only suspension points are the collaborator calls. Each
// invocation is independent per user with no shared mutable state, so
// multiple users' analyses may run concurrently without coordination.
type Engine struct {
	history   HistoryReader
	schedules ScheduleStore
	alerts    *AlertGenerator
	reminders ReminderScheduler
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an engine over the given collaborators.
func New(
	history HistoryReader,
	schedules ScheduleStore,
	alerts *AlertGenerator,
	reminders ReminderScheduler,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		history:   history,
		schedules: schedules,
		alerts:    alerts,
		reminders: reminders,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the engine clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AnalyzeOptimalTimes computes the ranked optimal time slots for a user
// and persists them as a side effect.
func (e *Engine) AnalyzeOptimalTimes(ctx context.Context, userID uuid.UUID) ([]models.OptimalTimeSlot, error) {
	sessions, err := e.history.RecentSessions(ctx, userID, sessionHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	slots := OptimizeSchedule(sessions)

	if err := e.schedules.SaveTimeSlots(ctx, userID, slots); err != nil {
		return nil, fmt.Errorf("failed to persist time slots: %w", err)
	}

	e.logger.Info("analyzed_optimal_times",
		zap.String("user_id", userID.String()),
		zap.Int("sessions", len(sessions)),
		zap.Int("slots", len(slots)),
	)
	return slots, nil
}

// MonitorStressPatterns runs the acute and chronic stress detectors over
// recent mood history and raises alerts for patterns that clear the alert
// gate. The acute and chronic detectors evaluate overlapping windows and
// may both fire for the same data; that is deliberate non-exclusive rule
// evaluation.
func (e *Engine) MonitorStressPatterns(ctx context.Context, userID uuid.UUID) error {
	entries, err := e.history.RecentMoodEntries(ctx, userID, moodHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load mood history: %w", err)
	}

	now := e.now()

	if acute := DetectStressPattern(entries, now); acute != nil {
		if _, err := e.alerts.StressAlert(ctx, userID, acute); err != nil {
			return fmt.Errorf("stress alert failed: %w", err)
		}
	}

	if chronic := DetectChronicStress(entries, now); chronic != nil {
		if _, err := e.alerts.StressAlert(ctx, userID, chronic); err != nil {
			return fmt.Errorf("chronic stress alert failed: %w", err)
		}
	}

	return nil
}

// MonitorMoodPatterns runs the mood-trend detector and the concerning
// pattern sweep. An insufficient-data result simply skips the run.
func (e *Engine) MonitorMoodPatterns(ctx context.Context, userID uuid.UUID) error {
	entries, err := e.history.RecentMoodEntries(ctx, userID, moodHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load mood history: %w", err)
	}

	now := e.now()

	trend, err := DetectMoodTrend(entries, now)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			e.logger.Debug("mood_monitoring_skipped",
				zap.String("user_id", userID.String()),
				zap.Int("entries", len(entries)),
			)
			return nil
		}
		return err
	}

	if _, err := e.alerts.MoodAlert(ctx, userID, trend); err != nil {
		return fmt.Errorf("mood alert failed: %w", err)
	}

	concerns := DetectConcerningPatterns(entries, now)
	for i := range concerns {
		if _, err := e.alerts.MoodAlert(ctx, userID, &concerns[i]); err != nil {
			return fmt.Errorf("concerning pattern alert failed: %w", err)
		}
	}

	return nil
}
