package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// DefaultForecastDays is the forecast window when the caller does not
// specify one.
const DefaultForecastDays = 7

// ScheduleForecast is the day-by-day projection of recommendations for a
// future window, with an overall confidence score.
type ScheduleForecast struct {
	PredictedSchedule []models.ScheduleRecommendation `json:"predicted_schedule"`
	Confidence        float64                         `json:"confidence"`
	Factors           []string                        `json:"factors"`
}

// weekdayHourStats accumulates per-weekday, per-hour quality history.
type weekdayHourStats struct {
	count   int
	quality float64 // running mean
}

// PredictOptimalSchedule projects recommendations for each of the next
// daysAhead days from weekday and hour-of-day historical patterns. Days
// whose weekday has historical sessions get that weekday's top two hours
// by mean quality; other days fall back to the current schedule's first
// slot. Confidence is a deterministic, monotone function of sample size
// and weekday coverage.
func (e *Engine) PredictOptimalSchedule(ctx context.Context, userID uuid.UUID, daysAhead int) (*ScheduleForecast, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultForecastDays
	}

	sessions, err := e.history.RecentSessions(ctx, userID, sessionHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	schedule, err := e.schedules.ActiveSchedule(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	tables := make(map[time.Weekday]map[int]*weekdayHourStats)
	for i := range sessions {
		wd := sessions[i].Timestamp.Weekday()
		if tables[wd] == nil {
			tables[wd] = make(map[int]*weekdayHourStats)
		}
		st := tables[wd][sessions[i].Hour()]
		if st == nil {
			st = &weekdayHourStats{}
			tables[wd][sessions[i].Hour()] = st
		}
		st.count++
		n := float64(st.count)
		st.quality = (st.quality*(n-1) + float64(sessions[i].Quality)) / n
	}

	fallbackSlot := "07:00"
	if schedule != nil && len(schedule.TimeSlots) > 0 {
		fallbackSlot = schedule.TimeSlots[0].TimeSlot
	}

	duration := models.DefaultDailyDurationMinutes
	technique := "mindfulness"
	if schedule != nil {
		duration = schedule.Preferences.DailyDurationMinutes
		if len(schedule.Preferences.PreferredTechniques) > 0 {
			technique = schedule.Preferences.PreferredTechniques[0]
		}
	}

	now := e.now()
	var predicted []models.ScheduleRecommendation
	for day := 1; day <= daysAhead; day++ {
		date := now.AddDate(0, 0, day)
		wd := date.Weekday()
		dow := int(wd)

		hours := tables[wd]
		if len(hours) == 0 {
			predicted = append(predicted, models.ScheduleRecommendation{
				RecommendedTime: fallbackSlot,
				DayOfWeek:       &dow,
				DurationMinutes: duration,
				Technique:       technique,
				Reason:          "no history for this weekday; using your current schedule",
				Priority:        models.PriorityLow,
			})
			continue
		}

		for _, hour := range topWeekdayHours(hours, 2) {
			st := hours[hour]
			predicted = append(predicted, models.ScheduleRecommendation{
				RecommendedTime: HourKey(hour),
				DayOfWeek:       &dow,
				DurationMinutes: duration,
				Technique:       technique,
				Reason:          fmt.Sprintf("based on %d past sessions at this time on %ss", st.count, wd),
				Priority:        models.PriorityMedium,
			})
		}
	}

	confidence, factors := forecastConfidence(len(sessions), len(tables))

	e.logger.Debug("predicted_schedule",
		zap.String("user_id", userID.String()),
		zap.Int("days_ahead", daysAhead),
		zap.Float64("confidence", confidence),
	)

	return &ScheduleForecast{
		PredictedSchedule: predicted,
		Confidence:        confidence,
		Factors:           factors,
	}, nil
}

// forecastConfidence computes the monotone confidence score: base 0.3,
// +0.2 at each of the 10/25/50 session thresholds, +0.1 scaled by weekday
// coverage, capped at the confidence ceiling.
func forecastConfidence(sessionCount, weekdaysCovered int) (float64, []string) {
	confidence := 0.3
	factors := []string{fmt.Sprintf("%d historical sessions", sessionCount)}

	for _, threshold := range []int{10, 25, 50} {
		if sessionCount >= threshold {
			confidence += 0.2
		}
	}

	coverage := float64(weekdaysCovered) / 7
	confidence += 0.1 * coverage
	factors = append(factors, fmt.Sprintf("history covers %d of 7 weekdays", weekdaysCovered))

	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return confidence, factors
}

// topWeekdayHours returns the k hours with the highest mean quality for a
// weekday, ties breaking toward the earlier hour.
func topWeekdayHours(hours map[int]*weekdayHourStats, k int) []int {
	keys := make([]int, 0, len(hours))
	for h := range hours {
		keys = append(keys, h)
	}
	sort.Slice(keys, func(i, j int) bool {
		if hours[keys[i]].quality != hours[keys[j]].quality {
			return hours[keys[i]].quality > hours[keys[j]].quality
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	sort.Ints(keys)
	return keys
}
