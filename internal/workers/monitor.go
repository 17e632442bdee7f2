package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/stillmind/wellbeing-api/internal/logger"
	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/queue"
)

// JobProcessor handles a single job of a registered type.
type JobProcessor func(ctx context.Context, job *queue.Job) error

type processorEntry struct {
	proc JobProcessor
}

// AnalysisEngine is the subset of engine operations the worker drives.
type AnalysisEngine interface {
	MonitorStressPatterns(ctx context.Context, userID uuid.UUID) error
	MonitorMoodPatterns(ctx context.Context, userID uuid.UUID) error
	AnalyzeOptimalTimes(ctx context.Context, userID uuid.UUID) ([]models.OptimalTimeSlot, error)
	AdaptScheduleBasedOnPerformance(ctx context.Context, userID uuid.UUID) (*models.SmartSchedule, error)
}

// Dispatcher delivers notifications and reminders to the user's device.
// Push and email transports are configured at deployment; the default
// dispatcher only logs.
type Dispatcher interface {
	DispatchNotification(ctx context.Context, userID uuid.UUID, notificationType string) error
	DispatchReminder(ctx context.Context, userID uuid.UUID, timeSlot string) error
}

// LogDispatcher is a Dispatcher that records deliveries in the log.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// DispatchNotification logs the notification delivery
func (d *LogDispatcher) DispatchNotification(_ context.Context, userID uuid.UUID, notificationType string) error {
	d.logger.Info("notification_dispatched",
		zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
		zap.String("notification_type", notificationType),
	)
	return nil
}

// DispatchReminder logs the reminder delivery
func (d *LogDispatcher) DispatchReminder(_ context.Context, userID uuid.UUID, timeSlot string) error {
	d.logger.Info("reminder_dispatched",
		zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
		zap.String("time_slot", timeSlot),
	)
	return nil
}

// Monitor processes wellbeing analysis jobs from the queue. Each job is
// scoped to one user; jobs for different users are independent and may be
// processed concurrently by multiple worker instances.
type Monitor struct {
	engine     AnalysisEngine
	dispatcher Dispatcher
	jobQueue   queue.JobQueue
	logger     *zap.Logger
	registry   map[queue.JobType]processorEntry
}

// NewMonitor creates a worker and registers processors for every job type.
func NewMonitor(
	eng AnalysisEngine,
	dispatcher Dispatcher,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Monitor {
	m := &Monitor{
		engine:     eng,
		dispatcher: dispatcher,
		jobQueue:   jobQueue,
		logger:     logger,
		registry:   make(map[queue.JobType]processorEntry),
	}
	m.RegisterProcessor(queue.JobTypeMonitorStress, m.ProcessMonitorStressJob)
	m.RegisterProcessor(queue.JobTypeMonitorMood, m.ProcessMonitorMoodJob)
	m.RegisterProcessor(queue.JobTypeAnalyzeTimes, m.ProcessAnalyzeTimesJob)
	m.RegisterProcessor(queue.JobTypeAdaptSchedule, m.ProcessAdaptScheduleJob)
	m.RegisterProcessor(queue.JobTypeSendNotification, m.ProcessSendNotificationJob)
	m.RegisterProcessor(queue.JobTypeScheduleReminder, m.ProcessScheduleReminderJob)
	return m
}

// RegisterProcessor registers a processor for a job type.
func (m *Monitor) RegisterProcessor(typ queue.JobType, proc JobProcessor) {
	m.registry[typ] = processorEntry{proc: proc}
}

// ProcessMonitorStressJob runs the stress pattern detectors for the user
func (m *Monitor) ProcessMonitorStressJob(ctx context.Context, job *queue.Job) error {
	if err := m.engine.MonitorStressPatterns(ctx, job.UserID); err != nil {
		return fmt.Errorf("stress monitoring failed: %w", err)
	}
	return nil
}

// ProcessMonitorMoodJob runs the mood pattern detectors for the user
func (m *Monitor) ProcessMonitorMoodJob(ctx context.Context, job *queue.Job) error {
	if err := m.engine.MonitorMoodPatterns(ctx, job.UserID); err != nil {
		return fmt.Errorf("mood monitoring failed: %w", err)
	}
	return nil
}

// ProcessAnalyzeTimesJob recomputes the user's optimal time slots
func (m *Monitor) ProcessAnalyzeTimesJob(ctx context.Context, job *queue.Job) error {
	slots, err := m.engine.AnalyzeOptimalTimes(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("time analysis failed: %w", err)
	}
	m.logger.Debug("time_slots_recomputed",
		zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
		zap.Int("slots", len(slots)),
	)
	return nil
}

// ProcessAdaptScheduleJob evaluates schedule performance for the user. A
// user without an active schedule is a no-op, not an error.
func (m *Monitor) ProcessAdaptScheduleJob(ctx context.Context, job *queue.Job) error {
	schedule, err := m.engine.AdaptScheduleBasedOnPerformance(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("schedule adaptation failed: %w", err)
	}
	if schedule == nil {
		m.logger.Debug("no_active_schedule",
			zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
		)
	}
	return nil
}

// ProcessSendNotificationJob dispatches an intervention notification
func (m *Monitor) ProcessSendNotificationJob(ctx context.Context, job *queue.Job) error {
	notificationType := job.MetadataString(queue.MetaNotificationType)
	if notificationType == "" {
		return fmt.Errorf("notification_type metadata is required")
	}
	if err := m.dispatcher.DispatchNotification(ctx, job.UserID, notificationType); err != nil {
		return fmt.Errorf("notification dispatch failed: %w", err)
	}
	return nil
}

// ProcessScheduleReminderJob dispatches a practice reminder
func (m *Monitor) ProcessScheduleReminderJob(ctx context.Context, job *queue.Job) error {
	timeSlot := job.MetadataString(queue.MetaTimeSlot)
	if timeSlot == "" {
		return fmt.Errorf("time_slot metadata is required")
	}
	if err := m.dispatcher.DispatchReminder(ctx, job.UserID, timeSlot); err != nil {
		return fmt.Errorf("reminder dispatch failed: %w", err)
	}
	return nil
}

// ProcessJob processes a job based on its type using the processor registry.
func (m *Monitor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if !job.ShouldProcess() {
		if job.IsExpired() {
			// Expired jobs go to the DLQ
			if nackErr := msg.Nack(false); nackErr != nil {
				m.logger.Warn("failed_to_nack_expired_job",
					zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
					zap.String("error", logpkg.SanitizeError(nackErr)),
				)
			}
			return nil
		}
		// Not ready yet, return to the queue
		if nackErr := msg.Nack(true); nackErr != nil {
			m.logger.Warn("failed_to_requeue_delayed_job",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return nil
	}

	ent, ok := m.registry[job.Type]
	if !ok {
		if nackErr := msg.Nack(false); nackErr != nil {
			m.logger.Error("failed_to_nack_unknown_job_type",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("job_type", string(job.Type)),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err := ent.proc(ctx, job); err != nil {
		return m.handleJobError(ctx, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// handleJobError retries failed jobs via delayed re-enqueue, sending them to
// the DLQ once retries are exhausted.
func (m *Monitor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() {
		m.logger.Error("job_failed_max_retries",
			zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
			zap.String("job_type", string(job.Type)),
			zap.Int("retries", job.RetryCount),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			m.logger.Warn("failed_to_nack_job_to_dlq",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("job failed (max retries): %w", err)
	}

	// Exponential backoff: 30s, 60s, 120s
	retryDelay := 30 * time.Second << uint(job.RetryCount)
	notBefore := time.Now().Add(retryDelay)

	retryJob := *job
	retryJob.NotBefore = &notBefore
	retryJob.RetryCount = job.RetryCount + 1

	if m.jobQueue != nil {
		if ackErr := msg.Ack(); ackErr != nil {
			m.logger.Warn("failed_to_ack_job_before_retry",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(ackErr)),
			)
		}
		if enqueueErr := m.jobQueue.Enqueue(ctx, &retryJob); enqueueErr != nil {
			return fmt.Errorf("failed to re-enqueue job for retry: %w", enqueueErr)
		}
		m.logger.Info("job_scheduled_for_retry",
			zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
			zap.String("job_type", string(job.Type)),
			zap.Int("attempt", retryJob.RetryCount),
			zap.Duration("delay", retryDelay),
		)
		return nil
	}

	// No queue access, fall back to immediate requeue
	job.IncrementRetry()
	if nackErr := msg.Nack(true); nackErr != nil {
		m.logger.Warn("failed_to_requeue_job",
			zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
			zap.String("error", logpkg.SanitizeError(nackErr)),
		)
	}
	return fmt.Errorf("job failed (will retry): %w", err)
}
