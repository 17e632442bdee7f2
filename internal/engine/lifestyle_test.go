package engine

import (
	"testing"
	"time"

	"github.com/stillmind/wellbeing-api/internal/models"
)

func TestEstimateLifestylePattern_Defaults(t *testing.T) {
	t.Parallel()

	p := EstimateLifestylePattern(nil)

	for h := 9; h <= 17; h++ {
		if !p.WorkingHours[h] {
			t.Errorf("expected hour %d to default to working", h)
		}
	}
	if !p.BusyHours[8] || !p.BusyHours[18] {
		t.Error("expected commute hours 8 and 18 to default to busy")
	}
	if len(p.QuietHours) != 0 {
		t.Errorf("expected no quiet hours without history, got %v", p.QuietHours)
	}
}

func TestEstimateLifestylePattern_RepeatedPracticeClearsBusy(t *testing.T) {
	t.Parallel()

	p := EstimateLifestylePattern(sessionsAtHour(9, 3, 4))

	if !p.QuietHours[9] {
		t.Error("expected repeated practice at 9 to mark the hour quiet")
	}
	if p.BusyHours[9] {
		t.Error("expected quiet hour to be removed from busy set")
	}
	// Other working hours stay busy.
	if !p.BusyHours[10] {
		t.Error("expected hour 10 to remain busy")
	}
}

func TestEstimateLifestylePattern_StressfulAndRelaxedHours(t *testing.T) {
	t.Parallel()

	// Weekday sessions: poor quality at 10 (working hours), great quality
	// at 19. Overall mean sits between them.
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []models.MeditationSession{
		{Timestamp: monday.Add(10 * time.Hour), Quality: 2},
		{Timestamp: monday.AddDate(0, 0, 1).Add(10 * time.Hour), Quality: 2},
		{Timestamp: monday.Add(19 * time.Hour), Quality: 5},
		{Timestamp: monday.AddDate(0, 0, 1).Add(19 * time.Hour), Quality: 5},
	}

	p := EstimateLifestylePattern(sessions)

	if !p.StressfulHours[10] {
		t.Error("expected below-average weekday working hour to be stressful")
	}
	if p.StressfulHours[19] {
		t.Error("hour 19 is outside working hours and above average")
	}
	if !p.RelaxedHours[19] {
		t.Error("expected above-average hour to be relaxed")
	}
	if p.RelaxedHours[10] {
		t.Error("below-average hour must not be relaxed")
	}
}

func TestEstimateLifestylePattern_WeekendSessionsNotStressful(t *testing.T) {
	t.Parallel()

	// Poor-quality sessions only on the weekend: working hours stay
	// unflagged because the weekday count is zero.
	saturday := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	sessions := []models.MeditationSession{
		{Timestamp: saturday.Add(10 * time.Hour), Quality: 2},
		{Timestamp: saturday.AddDate(0, 0, 1).Add(10 * time.Hour), Quality: 2},
		{Timestamp: saturday.Add(19 * time.Hour), Quality: 5},
	}

	p := EstimateLifestylePattern(sessions)
	if p.StressfulHours[10] {
		t.Error("weekend-only sessions must not mark working hours stressful")
	}
}
