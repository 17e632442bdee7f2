package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/stillmind/wellbeing-api/internal/models"
)

func TestCreateSmartSchedule_Defaults(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()
	userID := uuid.New()

	schedule, err := f.engine.CreateSmartSchedule(context.Background(), userID, models.SchedulePreferences{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schedule.ScheduleType != models.ScheduleTypeAdaptive {
		t.Errorf("expected adaptive default, got %s", schedule.ScheduleType)
	}
	if !schedule.Active {
		t.Error("expected an active schedule")
	}
	if len(schedule.TimeSlots) != 3 {
		t.Errorf("expected 3 default slots, got %d", len(schedule.TimeSlots))
	}
	if schedule.Preferences.DailyDurationMinutes != models.DefaultDailyDurationMinutes {
		t.Errorf("expected duration default applied, got %d", schedule.Preferences.DailyDurationMinutes)
	}
	if schedule.AdaptiveSettings != models.DefaultAdaptiveSettings() {
		t.Errorf("unexpected adaptive settings: %+v", schedule.AdaptiveSettings)
	}

	if len(f.schedules.replaced) != 1 {
		t.Fatalf("expected the schedule persisted, got %d calls", len(f.schedules.replaced))
	}
	if len(f.reminders.slots) != len(schedule.TimeSlots) {
		t.Errorf("expected one reminder per slot, got %d", len(f.reminders.slots))
	}
}

func TestCreateSmartSchedule_HonorsMaxSessions(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()

	schedule, err := f.engine.CreateSmartSchedule(context.Background(), uuid.New(), models.SchedulePreferences{
		MaxSessionsPerDay: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule.TimeSlots) != 1 {
		t.Errorf("expected slot list trimmed to 1, got %d", len(schedule.TimeSlots))
	}
}

func TestCreateSmartSchedule_ReminderFailureIsBestEffort(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()
	f.reminders.err = errors.New("queue down")

	schedule, err := f.engine.CreateSmartSchedule(context.Background(), uuid.New(), models.SchedulePreferences{})
	if err != nil {
		t.Fatalf("reminder failure must not fail schedule creation: %v", err)
	}
	if schedule == nil || len(f.schedules.replaced) != 1 {
		t.Fatal("expected the schedule persisted despite reminder failures")
	}
}

func TestAdaptSchedule_NoActiveSchedule(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()

	schedule, err := f.engine.AdaptScheduleBasedOnPerformance(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schedule != nil {
		t.Errorf("expected nil for a user without a schedule, got %+v", schedule)
	}
}

func activeSchedule(userID uuid.UUID, slots ...string) *models.SmartSchedule {
	timeSlots := make([]models.OptimalTimeSlot, len(slots))
	for i, ts := range slots {
		timeSlots[i] = models.OptimalTimeSlot{TimeSlot: ts, DayOfWeek: models.AnyDay, Confidence: 0.8}
	}
	prefs := models.SchedulePreferences{}
	prefs.ApplyDefaults()
	return &models.SmartSchedule{
		ID:               uuid.New(),
		UserID:           userID,
		ScheduleType:     models.ScheduleTypeAdaptive,
		TimeSlots:        timeSlots,
		AdaptiveSettings: models.DefaultAdaptiveSettings(),
		Preferences:      prefs,
		Active:           true,
	}
}

func TestAdaptSchedule_ReplacesSlotsOnLowAdherence(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()
	userID := uuid.New()
	f.schedules.active = activeSchedule(userID, "07:00")
	// Every session lands at 15:00, far from the scheduled slot.
	f.history.sessions = sessionsAtHour(15, 20, 5)

	schedule, err := f.engine.AdaptScheduleBasedOnPerformance(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schedule.Effectiveness.AdherenceRate != 0 {
		t.Errorf("expected adherence 0, got %v", schedule.Effectiveness.AdherenceRate)
	}
	if len(schedule.TimeSlots) == 0 {
		t.Fatal("expected re-optimized slots")
	}
	if schedule.TimeSlots[0].TimeSlot != "15:00" {
		t.Errorf("expected the re-optimized top slot at 15:00, got %s", schedule.TimeSlots[0].TimeSlot)
	}
	if len(f.schedules.replaced) != 1 {
		t.Errorf("expected the adapted schedule persisted, got %d calls", len(f.schedules.replaced))
	}
}

func TestAdaptSchedule_KeepsSlotsOnGoodPerformance(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()
	userID := uuid.New()
	f.schedules.active = activeSchedule(userID, "07:00")
	f.history.sessions = sessionsAtHour(7, 20, 5)

	schedule, err := f.engine.AdaptScheduleBasedOnPerformance(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schedule.Effectiveness.AdherenceRate != 100 {
		t.Errorf("expected adherence 100, got %v", schedule.Effectiveness.AdherenceRate)
	}
	if schedule.Effectiveness.AvgSessionQuality != 5 {
		t.Errorf("expected avg quality 5, got %v", schedule.Effectiveness.AvgSessionQuality)
	}
	if len(schedule.TimeSlots) != 1 || schedule.TimeSlots[0].TimeSlot != "07:00" {
		t.Errorf("expected slots untouched, got %+v", schedule.TimeSlots)
	}
}

func TestAdaptSchedule_AutoAdjustDisabled(t *testing.T) {
	t.Parallel()
	f := newEngineFixture()
	userID := uuid.New()
	sched := activeSchedule(userID, "07:00")
	sched.AdaptiveSettings.AutoAdjust = false
	f.schedules.active = sched
	f.history.sessions = sessionsAtHour(15, 20, 5)

	schedule, err := f.engine.AdaptScheduleBasedOnPerformance(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Metrics update, slots do not.
	if schedule.Effectiveness.AdherenceRate != 0 {
		t.Errorf("expected adherence 0, got %v", schedule.Effectiveness.AdherenceRate)
	}
	if len(schedule.TimeSlots) != 1 || schedule.TimeSlots[0].TimeSlot != "07:00" {
		t.Errorf("expected slots untouched with auto-adjust off, got %+v", schedule.TimeSlots)
	}
}

func TestEvaluateAdherence(t *testing.T) {
	t.Parallel()

	slots := []models.OptimalTimeSlot{{TimeSlot: "07:00"}}

	t.Run("empty window reports passing defaults", func(t *testing.T) {
		t.Parallel()
		adherence, quality := evaluateAdherence(slots, nil)
		if adherence != 100 || quality != 5 {
			t.Errorf("expected 100/5, got %v/%v", adherence, quality)
		}
	})

	t.Run("one hour tolerance", func(t *testing.T) {
		t.Parallel()
		sessions := append(sessionsAtHour(8, 1, 4), sessionsAtHour(10, 1, 2)...)
		adherence, quality := evaluateAdherence(slots, sessions)
		if adherence != 50 {
			t.Errorf("expected adherence 50, got %v", adherence)
		}
		// Quality averages over the adherent session only.
		if quality != 4 {
			t.Errorf("expected avg quality 4, got %v", quality)
		}
	})
}

func TestMoodRates(t *testing.T) {
	t.Parallel()

	sessions := []models.MeditationSession{
		{Timestamp: testNow, Quality: 4, MoodBefore: floatPtr(2), MoodAfter: floatPtr(4)},
		{Timestamp: testNow, Quality: 4, MoodBefore: floatPtr(3), MoodAfter: floatPtr(3)},
		{Timestamp: testNow, Quality: 4}, // unmeasured, excluded
	}

	moodImprovement, stressReduction := moodRates(sessions)
	if moodImprovement != 50 {
		t.Errorf("expected 50%% improvement rate, got %v", moodImprovement)
	}
	// Mean lift 1.0 on the 4-point span is 25.
	if math.Abs(stressReduction-25) > 1e-9 {
		t.Errorf("expected stress reduction 25, got %v", stressReduction)
	}

	if mi, sr := moodRates(nil); mi != 0 || sr != 0 {
		t.Errorf("expected zeros for empty input, got %v/%v", mi, sr)
	}
}
