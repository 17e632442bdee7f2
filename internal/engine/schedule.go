package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// CreateSmartSchedule runs the optimizer, keeps the top slots up to the
// user's sessions-per-day preference, wraps them with the supplied
// preferences, persists the schedule (replacing any previously active one
// wholesale), and schedules one initial reminder per slot.
func (e *Engine) CreateSmartSchedule(ctx context.Context, userID uuid.UUID, prefs models.SchedulePreferences) (*models.SmartSchedule, error) {
	prefs.ApplyDefaults()

	sessions, err := e.history.RecentSessions(ctx, userID, sessionHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	slots := OptimizeSchedule(sessions)
	if len(slots) > prefs.MaxSessionsPerDay {
		slots = slots[:prefs.MaxSessionsPerDay]
	}

	now := e.now()
	schedule := &models.SmartSchedule{
		ID:               uuid.New(),
		UserID:           userID,
		ScheduleType:     prefs.ScheduleType,
		TimeSlots:        slots,
		AdaptiveSettings: models.DefaultAdaptiveSettings(),
		Preferences:      prefs,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := e.schedules.ReplaceActiveSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}

	for _, slot := range schedule.TimeSlots {
		if err := e.reminders.ScheduleReminder(ctx, userID, slot); err != nil {
			// The schedule is already persisted; reminders are best effort.
			e.logger.Warn("failed_to_schedule_reminder",
				zap.String("user_id", userID.String()),
				zap.String("time_slot", slot.TimeSlot),
				zap.Error(err),
			)
		}
	}

	e.logger.Info("created_smart_schedule",
		zap.String("user_id", userID.String()),
		zap.String("schedule_type", string(schedule.ScheduleType)),
		zap.Int("slots", len(schedule.TimeSlots)),
	)
	return schedule, nil
}

// AdaptScheduleBasedOnPerformance evaluates the active schedule against the
// last 30 sessions and re-optimizes when performance degrades. Adherence is
// the percentage of sessions whose hour falls within one hour of any
// scheduled slot; average quality is computed over the adherent sessions
// only. Degraded performance replaces the slot list wholesale, never a
// partial merge, so stale slots cannot accumulate. Returns nil, nil when
// the user has no active schedule.
func (e *Engine) AdaptScheduleBasedOnPerformance(ctx context.Context, userID uuid.UUID) (*models.SmartSchedule, error) {
	schedule, err := e.schedules.ActiveSchedule(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if schedule == nil {
		return nil, nil
	}

	window := schedule.AdaptiveSettings.EvaluationWindowSessions
	if window <= 0 {
		window = adherenceWindow
	}
	sessions, err := e.history.RecentSessions(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	adherence, avgQuality := evaluateAdherence(schedule.TimeSlots, sessions)
	schedule.Effectiveness.AdherenceRate = adherence
	schedule.Effectiveness.AvgSessionQuality = avgQuality
	schedule.Effectiveness.MoodImprovementRate, schedule.Effectiveness.StressReductionRate = moodRates(sessions)

	needsAdjustment := adherence < schedule.AdaptiveSettings.MinAdherencePercent ||
		avgQuality < schedule.AdaptiveSettings.MinAvgQuality

	if needsAdjustment && schedule.AdaptiveSettings.AutoAdjust {
		fresh := OptimizeSchedule(sessions)
		if len(fresh) > schedule.Preferences.MaxSessionsPerDay {
			fresh = fresh[:schedule.Preferences.MaxSessionsPerDay]
		}
		schedule.TimeSlots = fresh
		e.logger.Info("schedule_reoptimized",
			zap.String("user_id", userID.String()),
			zap.Float64("adherence_rate", adherence),
			zap.Float64("avg_quality", avgQuality),
		)
	}

	schedule.UpdatedAt = e.now()
	if err := e.schedules.ReplaceActiveSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to persist adapted schedule: %w", err)
	}

	return schedule, nil
}

// evaluateAdherence returns the adherence rate (0-100) and the mean quality
// of the adherent sessions. An empty window reports full adherence and a
// passing quality so a fresh schedule is not immediately re-optimized.
func evaluateAdherence(slots []models.OptimalTimeSlot, sessions []models.MeditationSession) (adherence, avgQuality float64) {
	if len(sessions) == 0 {
		return 100, 5
	}

	adherent := 0
	var qualitySum float64
	for i := range sessions {
		hour := sessions[i].Hour()
		for _, slot := range slots {
			if math.Abs(float64(hour-hourFromKey(slot.TimeSlot))) <= 1 {
				adherent++
				qualitySum += float64(sessions[i].Quality)
				break
			}
		}
	}

	adherence = float64(adherent) / float64(len(sessions)) * 100
	if adherent > 0 {
		avgQuality = qualitySum / float64(adherent)
	}
	return adherence, avgQuality
}

// moodRates aggregates the schedule-level mood and stress effectiveness
// from the sessions that recorded before/after moods.
func moodRates(sessions []models.MeditationSession) (moodImprovement, stressReduction float64) {
	n := 0
	improved := 0
	var deltaSum float64
	for i := range sessions {
		delta, ok := sessions[i].MoodDelta()
		if !ok {
			continue
		}
		n++
		deltaSum += delta
		if delta > 0 {
			improved++
		}
	}
	if n == 0 {
		return 0, 0
	}
	moodImprovement = float64(improved) / float64(n) * 100
	// Mean mood lift normalized to the 1-5 scale stands in for stress
	// reduction; sessions carry no direct stress measurement.
	stressReduction = math.Max(0, deltaSum/float64(n)/4*100)
	return moodImprovement, stressReduction
}
