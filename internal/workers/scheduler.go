package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/stillmind/wellbeing-api/internal/logger"
	"github.com/stillmind/wellbeing-api/internal/queue"
)

// Users with no activity in this window are skipped by the scheduler.
const activityWindow = 14 * 24 * time.Hour

// ActiveUserSource lists users eligible for periodic analysis.
type ActiveUserSource interface {
	ActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// AnalysisScheduler enqueues the periodic analysis jobs (2x/day) for every
// active user.
type AnalysisScheduler struct {
	jobQueue queue.JobQueue
	users    ActiveUserSource
	logger   *zap.Logger
}

// NewAnalysisScheduler creates a new analysis scheduler
func NewAnalysisScheduler(jobQueue queue.JobQueue, users ActiveUserSource, logger *zap.Logger) *AnalysisScheduler {
	return &AnalysisScheduler{
		jobQueue: jobQueue,
		users:    users,
		logger:   logger,
	}
}

// ScheduleAnalysisJobs creates delayed analysis jobs for active users at the
// next morning (08:00) and evening (20:00) run times.
func (s *AnalysisScheduler) ScheduleAnalysisJobs(ctx context.Context) error {
	now := time.Now()
	nextMorning := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location())
	nextEvening := time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, now.Location())

	if now.After(nextMorning) {
		nextMorning = nextMorning.Add(24 * time.Hour)
	}
	if now.After(nextEvening) {
		nextEvening = nextEvening.Add(24 * time.Hour)
	}

	userIDs, err := s.users.ActiveUserIDs(ctx, now.Add(-activityWindow))
	if err != nil {
		return fmt.Errorf("failed to get active users: %w", err)
	}

	for _, userID := range userIDs {
		for _, runAt := range []time.Time{nextMorning, nextEvening} {
			for _, jobType := range []queue.JobType{
				queue.JobTypeMonitorStress,
				queue.JobTypeMonitorMood,
				queue.JobTypeAdaptSchedule,
			} {
				if err := s.createDelayedJob(ctx, jobType, userID, runAt); err != nil {
					s.logger.Warn("failed_to_schedule_analysis_job",
						zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
						zap.String("job_type", string(jobType)),
						zap.String("error", logpkg.SanitizeError(err)),
					)
					// Continue with other users
				}
			}
		}
	}

	s.logger.Info("scheduled_analysis_jobs",
		zap.Int("user_count", len(userIDs)),
		zap.Time("next_morning", nextMorning),
		zap.Time("next_evening", nextEvening),
	)

	return nil
}

// createDelayedJob enqueues a job delayed until notBefore, expiring a day
// later so stale jobs get garbage collected.
func (s *AnalysisScheduler) createDelayedJob(ctx context.Context, jobType queue.JobType, userID uuid.UUID, notBefore time.Time) error {
	job := queue.NewJob(jobType, userID)
	job.NotBefore = &notBefore

	notAfter := notBefore.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}

	return nil
}

// Run schedules analysis jobs on the given interval until ctx is cancelled.
func (s *AnalysisScheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.ScheduleAnalysisJobs(ctx); err != nil {
				s.logger.Error("analysis_scheduling_failed",
					zap.String("error", logpkg.SanitizeError(err)),
				)
			}
		}
	}
}
