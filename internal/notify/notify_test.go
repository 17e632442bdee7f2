package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/queue"
)

type mockJobQueue struct {
	enqueued   []*queue.Job
	enqueueErr error
}

func (m *mockJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error                      { return nil }
func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

func TestQueueNotifier_Notify(t *testing.T) {
	t.Parallel()
	mock := &mockJobQueue{}
	notifier := NewQueueNotifier(mock, zap.NewNop())
	userID := uuid.New()

	err := notifier.Notify(context.Background(), userID, models.NotifyStressDetected)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(mock.enqueued) != 1 {
		t.Fatalf("expected 1 job enqueued, got %d", len(mock.enqueued))
	}
	job := mock.enqueued[0]
	if job.Type != queue.JobTypeSendNotification {
		t.Errorf("expected send_notification job, got %s", job.Type)
	}
	if job.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, job.UserID)
	}
	if got := job.MetadataString(queue.MetaNotificationType); got != string(models.NotifyStressDetected) {
		t.Errorf("expected notification type metadata, got %q", got)
	}
	if job.NotAfter == nil {
		t.Error("expected notification job to carry an expiration")
	}
}

func TestQueueNotifier_Notify_QueueError(t *testing.T) {
	t.Parallel()
	mock := &mockJobQueue{enqueueErr: errors.New("broker down")}
	notifier := NewQueueNotifier(mock, zap.NewNop())

	err := notifier.Notify(context.Background(), uuid.New(), models.NotifyMoodLow)
	if err == nil {
		t.Error("expected error when enqueue fails")
	}
}

func TestQueueReminderScheduler_ScheduleReminder(t *testing.T) {
	t.Parallel()
	mock := &mockJobQueue{}
	scheduler := NewQueueReminderScheduler(mock, zap.NewNop())
	userID := uuid.New()
	slot := models.OptimalTimeSlot{TimeSlot: "07:00", DayOfWeek: models.AnyDay, Confidence: 0.8}

	err := scheduler.ScheduleReminder(context.Background(), userID, slot)
	if err != nil {
		t.Fatalf("ScheduleReminder: %v", err)
	}

	if len(mock.enqueued) != 1 {
		t.Fatalf("expected 1 job enqueued, got %d", len(mock.enqueued))
	}
	job := mock.enqueued[0]
	if job.Type != queue.JobTypeScheduleReminder {
		t.Errorf("expected schedule_reminder job, got %s", job.Type)
	}
	if got := job.MetadataString(queue.MetaTimeSlot); got != "07:00" {
		t.Errorf("expected time slot metadata 07:00, got %q", got)
	}
	if job.NotBefore == nil {
		t.Error("expected reminder job to be delayed to the slot time")
	}
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timeSlot string
		wantDay  int
		wantHour int
		wantErr  bool
	}{
		{"later today", "19:30", 2, 19, false},
		{"already passed rolls to tomorrow", "07:00", 3, 7, false},
		{"malformed slot", "25:99", 0, 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := nextOccurrence(tt.timeSlot, now)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("nextOccurrence: %v", err)
			}
			if got.Day() != tt.wantDay || got.Hour() != tt.wantHour {
				t.Errorf("got %v, want day %d hour %d", got, tt.wantDay, tt.wantHour)
			}
		})
	}
}
