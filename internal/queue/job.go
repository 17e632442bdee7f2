package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeMonitorStress runs the stress pattern detectors for a user
	JobTypeMonitorStress JobType = "monitor_stress"
	// JobTypeMonitorMood runs the mood pattern detectors for a user
	JobTypeMonitorMood JobType = "monitor_mood"
	// JobTypeAdaptSchedule evaluates schedule performance for a user
	JobTypeAdaptSchedule JobType = "adapt_schedule"
	// JobTypeAnalyzeTimes recomputes a user's optimal time slots
	JobTypeAnalyzeTimes JobType = "analyze_times"
	// JobTypeSendNotification dispatches an intervention notification
	JobTypeSendNotification JobType = "send_notification"
	// JobTypeScheduleReminder registers a practice reminder for a slot
	JobTypeScheduleReminder JobType = "schedule_reminder"
)

// Metadata keys used by notification and reminder jobs
const (
	MetaNotificationType = "notification_type"
	MetaTimeSlot         = "time_slot"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`   // Job-specific data
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// MetadataString returns a string metadata value, or "" when absent
func (j *Job) MetadataString(key string) string {
	if j.Metadata == nil {
		return ""
	}
	s, _ := j.Metadata[key].(string)
	return s
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
