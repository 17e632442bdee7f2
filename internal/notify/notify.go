package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/queue"
)

// Notifications expire if not delivered within this window; a stale
// intervention prompt is worse than none.
const notificationTTL = 2 * time.Hour

// QueueNotifier delivers intervention notifications by enqueueing dispatch
// jobs. Actual delivery (push, email) happens in the worker.
type QueueNotifier struct {
	queue  queue.JobQueue
	logger *zap.Logger
}

// NewQueueNotifier creates a queue-backed notifier
func NewQueueNotifier(q queue.JobQueue, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{queue: q, logger: logger}
}

// Notify enqueues a send_notification job for the user
func (n *QueueNotifier) Notify(ctx context.Context, userID uuid.UUID, notificationType models.NotificationType) error {
	job := queue.NewJob(queue.JobTypeSendNotification, userID)
	job.Metadata[queue.MetaNotificationType] = string(notificationType)
	notAfter := time.Now().Add(notificationTTL)
	job.NotAfter = &notAfter

	if err := n.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	n.logger.Info("notification_enqueued",
		zap.String("user_id", userID.String()),
		zap.String("notification_type", string(notificationType)),
	)
	return nil
}

// QueueReminderScheduler registers practice reminders by enqueueing
// schedule_reminder jobs, one per time slot.
type QueueReminderScheduler struct {
	queue  queue.JobQueue
	logger *zap.Logger
}

// NewQueueReminderScheduler creates a queue-backed reminder scheduler
func NewQueueReminderScheduler(q queue.JobQueue, logger *zap.Logger) *QueueReminderScheduler {
	return &QueueReminderScheduler{queue: q, logger: logger}
}

// ScheduleReminder enqueues a reminder job delayed until the slot's next
// occurrence.
func (s *QueueReminderScheduler) ScheduleReminder(ctx context.Context, userID uuid.UUID, slot models.OptimalTimeSlot) error {
	job := queue.NewJob(queue.JobTypeScheduleReminder, userID)
	job.Metadata[queue.MetaTimeSlot] = slot.TimeSlot

	if at, err := nextOccurrence(slot.TimeSlot, time.Now()); err == nil {
		job.NotBefore = &at
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	s.logger.Info("reminder_enqueued",
		zap.String("user_id", userID.String()),
		zap.String("time_slot", slot.TimeSlot),
	)
	return nil
}

// nextOccurrence returns the next wall-clock occurrence of an HH:MM slot
// at or after now.
func nextOccurrence(timeSlot string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", timeSlot)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time slot %q: %w", timeSlot, err)
	}

	at := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}
