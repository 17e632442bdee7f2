package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// GenerateDynamicRecommendations combines the user's current emotional
// state with gaps in today's schedule. State-driven suggestions come from
// the latest mood entry; schedule-driven suggestions cover active slots
// the user has not practiced within an hour of today.
func (e *Engine) GenerateDynamicRecommendations(ctx context.Context, userID uuid.UUID) ([]models.ScheduleRecommendation, error) {
	entries, err := e.history.RecentMoodEntries(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load mood history: %w", err)
	}

	schedule, err := e.schedules.ActiveSchedule(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	sessions, err := e.history.RecentSessions(ctx, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	now := e.now()
	duration := models.DefaultDailyDurationMinutes
	if schedule != nil {
		duration = schedule.Preferences.DailyDurationMinutes
	}

	var recs []models.ScheduleRecommendation

	if len(entries) > 0 {
		latest := entries[0]
		switch {
		case latest.Stress >= 4:
			recs = append(recs, models.ScheduleRecommendation{
				RecommendedTime:   HourKey(now.Hour()),
				DurationMinutes:   5,
				Technique:         "breathing",
				Reason:            "your stress level is elevated right now",
				Priority:          models.PriorityHigh,
				ContextualFactors: []string{"high_stress"},
			})
		case latest.Anxiety >= 4:
			recs = append(recs, models.ScheduleRecommendation{
				RecommendedTime:   HourKey(now.Hour()),
				DurationMinutes:   5,
				Technique:         "grounding",
				Reason:            "your anxiety level is elevated right now",
				Priority:          models.PriorityHigh,
				ContextualFactors: []string{"anxiety_spike"},
			})
		case latest.Energy <= 2:
			recs = append(recs, models.ScheduleRecommendation{
				RecommendedTime:   HourKey(now.Hour()),
				DurationMinutes:   duration,
				Technique:         "energizing breath",
				Reason:            "your energy is low; a short energizing practice can help",
				Priority:          models.PriorityMedium,
				ContextualFactors: []string{"fatigue"},
			})
		}
	}

	if schedule != nil {
		practiced := make(map[int]bool)
		for i := range sessions {
			ts := sessions[i].Timestamp
			if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
				practiced[ts.Hour()] = true
			}
		}

		for _, slot := range schedule.TimeSlots {
			hour := hourFromKey(slot.TimeSlot)
			if hour < now.Hour() {
				continue
			}
			covered := false
			for h := hour - 1; h <= hour+1; h++ {
				if practiced[h] {
					covered = true
					break
				}
			}
			if covered {
				continue
			}
			recs = append(recs, models.ScheduleRecommendation{
				RecommendedTime:   slot.TimeSlot,
				DurationMinutes:   duration,
				Technique:         firstPreferredTechnique(schedule),
				Reason:            "scheduled practice time you haven't used yet today",
				Priority:          models.PriorityMedium,
				ContextualFactors: []string{"schedule_gap"},
			})
		}
	}

	return recs, nil
}

func firstPreferredTechnique(schedule *models.SmartSchedule) string {
	if schedule != nil && len(schedule.Preferences.PreferredTechniques) > 0 {
		return schedule.Preferences.PreferredTechniques[0]
	}
	return "mindfulness"
}
