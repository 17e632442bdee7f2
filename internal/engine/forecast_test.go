package engine

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stillmind/wellbeing-api/internal/models"
)

func TestForecastConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sessions int
		weekdays int
		want     float64
	}{
		{"no history", 0, 0, 0.3},
		{"thin history", 5, 2, 0.3 + 0.1*2.0/7},
		{"first threshold full coverage", 10, 7, 0.6},
		{"all thresholds capped", 60, 7, 0.9},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, factors := forecastConfidence(tt.sessions, tt.weekdays)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("forecastConfidence(%d, %d) = %v, want %v", tt.sessions, tt.weekdays, got, tt.want)
			}
			if len(factors) != 2 {
				t.Errorf("expected 2 factor strings, got %v", factors)
			}
		})
	}
}

func TestForecastConfidence_Monotone(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for _, n := range []int{0, 5, 10, 25, 50, 100} {
		c, _ := forecastConfidence(n, 3)
		if c < prev {
			t.Fatalf("confidence decreased at %d sessions: %v < %v", n, c, prev)
		}
		prev = c
	}
}

func TestPredictOptimalSchedule_FallbackWithoutHistory(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()

	forecast, err := f.engine.PredictOptimalSchedule(context.Background(), uuid.New(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forecast.PredictedSchedule) != 3 {
		t.Fatalf("expected one fallback recommendation per day, got %d", len(forecast.PredictedSchedule))
	}
	for _, rec := range forecast.PredictedSchedule {
		if rec.RecommendedTime != "07:00" {
			t.Errorf("expected the fixed fallback slot, got %s", rec.RecommendedTime)
		}
		if rec.Priority != models.PriorityLow {
			t.Errorf("expected low priority for fallback days, got %s", rec.Priority)
		}
	}
	if math.Abs(forecast.Confidence-0.3) > 1e-9 {
		t.Errorf("expected base confidence 0.3, got %v", forecast.Confidence)
	}
}

func TestPredictOptimalSchedule_UsesWeekdayHistory(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()

	// The clock is Monday; day 1 of the forecast is Tuesday. Give the
	// user Tuesday-morning history.
	tuesday := time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC)
	f.history.sessions = []models.MeditationSession{
		{Timestamp: tuesday, Quality: 5},
		{Timestamp: tuesday.AddDate(0, 0, -7), Quality: 5},
	}

	forecast, err := f.engine.PredictOptimalSchedule(context.Background(), uuid.New(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forecast.PredictedSchedule) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(forecast.PredictedSchedule))
	}

	rec := forecast.PredictedSchedule[0]
	if rec.RecommendedTime != "07:00" {
		t.Errorf("expected the historical hour, got %s", rec.RecommendedTime)
	}
	if rec.Priority != models.PriorityMedium {
		t.Errorf("expected medium priority for history-backed days, got %s", rec.Priority)
	}
	if rec.DayOfWeek == nil || *rec.DayOfWeek != int(time.Tuesday) {
		t.Errorf("expected Tuesday recommendation, got %v", rec.DayOfWeek)
	}
	if !strings.Contains(rec.Reason, "2 past sessions") {
		t.Errorf("expected the reason to cite the sample size, got %q", rec.Reason)
	}
}

func TestPredictOptimalSchedule_UsesScheduleFallbackSlot(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()
	f.schedules.active = activeSchedule(uuid.New(), "19:00")

	forecast, err := f.engine.PredictOptimalSchedule(context.Background(), uuid.New(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range forecast.PredictedSchedule {
		if rec.RecommendedTime != "19:00" {
			t.Errorf("expected the schedule's first slot as fallback, got %s", rec.RecommendedTime)
		}
	}
}

func TestPredictOptimalSchedule_DefaultWindow(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()

	forecast, err := f.engine.PredictOptimalSchedule(context.Background(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forecast.PredictedSchedule) != DefaultForecastDays {
		t.Errorf("expected %d fallback days, got %d", DefaultForecastDays, len(forecast.PredictedSchedule))
	}
}
