package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
)

func newTestGenerator() (*AlertGenerator, *mockAlertStore, *mockNotifier) {
	store := &mockAlertStore{}
	notifier := &mockNotifier{}
	return NewAlertGenerator(store, notifier, DefaultRules(), zap.NewNop()), store, notifier
}

func TestStressAlert_GateNotFired(t *testing.T) {
	t.Parallel()
	gen, store, _ := newTestGenerator()

	alert, err := gen.StressAlert(context.Background(), uuid.New(), &StressPattern{
		StressLevel: 3,
		Severity:    StressModerate,
		DetectedAt:  testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Errorf("expected no alert below the gate, got %+v", alert)
	}
	if len(store.created) != 0 {
		t.Error("expected nothing persisted")
	}
}

func TestStressAlert_NilPattern(t *testing.T) {
	t.Parallel()
	gen, _, _ := newTestGenerator()

	alert, err := gen.StressAlert(context.Background(), uuid.New(), nil)
	if err != nil || alert != nil {
		t.Fatalf("expected nil, nil for nil pattern, got %+v, %v", alert, err)
	}
}

func TestStressAlert_FiresAndNotifies(t *testing.T) {
	t.Parallel()
	gen, store, notifier := newTestGenerator()
	userID := uuid.New()

	alert, err := gen.StressAlert(context.Background(), userID, &StressPattern{
		StressLevel:  4.6,
		Triggers:     []string{"multiple high stress episodes"},
		TriggerCount: 3,
		Severity:     StressSevere,
		DetectedAt:   testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Severity != models.SeverityCritical {
		t.Errorf("expected critical severity at 4.6, got %s", alert.Severity)
	}
	if len(alert.Intervention.Immediate) == 0 {
		t.Error("expected an intervention plan attached")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted alert, got %d", len(store.created))
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != models.NotifyStressDetected {
		t.Errorf("expected a stress_detected notification, got %v", notifier.sent)
	}
	if !alert.NotificationSent {
		t.Error("expected NotificationSent to be recorded")
	}
	if len(store.notified) != 1 || store.notified[0] != alert.ID {
		t.Errorf("expected MarkNotified for %s, got %v", alert.ID, store.notified)
	}
}

func TestStressAlert_ChronicPatternNotifiesDespiteLowMean(t *testing.T) {
	t.Parallel()
	gen, store, notifier := newTestGenerator()

	// Four acute days out of seven trip the day-count trigger while the
	// window mean sits near 3.14, below every ladder step.
	pattern := DetectChronicStress(stressEntries(4, 4, 4, 4, 2, 2, 2), testNow)
	if pattern == nil || !pattern.Chronic {
		t.Fatal("expected a chronic pattern")
	}

	alert, err := gen.StressAlert(context.Background(), uuid.New(), pattern)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Severity != models.SeverityHigh {
		t.Errorf("expected the pattern grade to floor severity at high, got %s", alert.Severity)
	}
	if !alert.Pattern.Chronic {
		t.Error("expected the chronic flag carried into the snapshot")
	}
	if len(alert.Intervention.LongTerm) == 0 || alert.Intervention.LongTerm[0] != "consider seeking professional support" {
		t.Errorf("expected the escalation plan merged into the intervention, got %v", alert.Intervention.LongTerm)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted alert, got %d", len(store.created))
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != models.NotifyStressDetected {
		t.Errorf("expected a stress_detected notification, got %v", notifier.sent)
	}
}

func TestStressAlert_MediumSeverityNotNotified(t *testing.T) {
	t.Parallel()
	gen, store, notifier := newTestGenerator()

	// High pattern severity clears the gate, but the graded metric lands
	// at medium, below the notification bar.
	alert, err := gen.StressAlert(context.Background(), uuid.New(), &StressPattern{
		StressLevel:  3.6,
		TriggerCount: 2,
		Severity:     StressHigh,
		DetectedAt:   testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Severity != models.SeverityMedium {
		t.Errorf("expected medium severity, got %s", alert.Severity)
	}
	if len(store.created) != 1 {
		t.Errorf("expected the alert persisted, got %d", len(store.created))
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no notification for medium severity, got %v", notifier.sent)
	}
}

func TestStressAlert_PersistFailure(t *testing.T) {
	t.Parallel()
	gen, store, notifier := newTestGenerator()
	store.createErr = errors.New("db down")

	_, err := gen.StressAlert(context.Background(), uuid.New(), &StressPattern{
		StressLevel: 4.6,
		Severity:    StressSevere,
		DetectedAt:  testNow,
	})
	if err == nil {
		t.Fatal("expected persistence failure to propagate")
	}
	if len(notifier.sent) != 0 {
		t.Error("expected no notification when persistence fails")
	}
}

func TestStressAlert_NotifyFailureKeepsAlert(t *testing.T) {
	t.Parallel()
	gen, store, notifier := newTestGenerator()
	notifier.err = errors.New("queue down")

	alert, err := gen.StressAlert(context.Background(), uuid.New(), &StressPattern{
		StressLevel: 4.6,
		Severity:    StressSevere,
		DetectedAt:  testNow,
	})
	if err != nil {
		t.Fatalf("dispatch failure must not fail the run: %v", err)
	}
	if alert == nil || len(store.created) != 1 {
		t.Fatal("expected the alert to be persisted regardless")
	}
	if alert.NotificationSent {
		t.Error("expected NotificationSent to stay false")
	}
	if len(store.notified) != 0 {
		t.Error("expected no MarkNotified call")
	}
}

func TestMoodAlert_TypeSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		latest models.MoodEntry
		want   models.AlertType
	}{
		{
			name:   "anxiety takes precedence",
			latest: models.MoodEntry{Overall: 1.5, Anxiety: 4.5, Energy: 1, Focus: 1},
			want:   models.AlertAnxietyPeak,
		},
		{
			name:   "energy crash",
			latest: models.MoodEntry{Overall: 2, Anxiety: 2, Energy: 1.5, Focus: 1},
			want:   models.AlertEnergyCrash,
		},
		{
			name:   "focus drop",
			latest: models.MoodEntry{Overall: 2, Anxiety: 2, Energy: 3, Focus: 1.5},
			want:   models.AlertFocusDrop,
		},
		{
			name:   "general decline fallback",
			latest: models.MoodEntry{Overall: 1.8, Anxiety: 2, Energy: 3, Focus: 3},
			want:   models.AlertMoodDecline,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen, store, _ := newTestGenerator()

			alert, err := gen.MoodAlert(context.Background(), uuid.New(), &MoodPattern{
				Trend:      TrendStable,
				Latest:     tt.latest,
				DetectedAt: testNow,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if alert == nil {
				t.Fatal("expected an alert")
			}
			if alert.Type != tt.want {
				t.Errorf("expected %s, got %s", tt.want, alert.Type)
			}
			if len(store.created) != 1 {
				t.Errorf("expected the alert persisted, got %d", len(store.created))
			}
		})
	}
}

func TestMoodAlert_GateNotFired(t *testing.T) {
	t.Parallel()
	gen, store, _ := newTestGenerator()

	alert, err := gen.MoodAlert(context.Background(), uuid.New(), &MoodPattern{
		Trend:      TrendStable,
		Latest:     models.MoodEntry{Overall: 4, Anxiety: 2, Energy: 4, Focus: 4},
		DetectedAt: testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil || len(store.created) != 0 {
		t.Errorf("expected no alert for a healthy entry, got %+v", alert)
	}
}

func TestMoodAlert_DecliningTrendFires(t *testing.T) {
	t.Parallel()
	gen, _, _ := newTestGenerator()

	// A declining trend clears the gate even with a mid-range overall.
	alert, err := gen.MoodAlert(context.Background(), uuid.New(), &MoodPattern{
		Trend:      TrendDeclining,
		Delta:      -1,
		Latest:     models.MoodEntry{Overall: 3, Anxiety: 2, Energy: 3, Focus: 3},
		DetectedAt: testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Type != models.AlertMoodDecline {
		t.Errorf("expected mood_decline, got %s", alert.Type)
	}
}
