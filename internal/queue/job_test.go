package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	job := NewJob(JobTypeMonitorStress, userID)

	if job.ID == uuid.Nil {
		t.Error("expected job ID to be set")
	}
	if job.Type != JobTypeMonitorStress {
		t.Errorf("expected type %s, got %s", JobTypeMonitorStress, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("expected user ID %s, got %s", userID, job.UserID)
	}
	if job.NotBefore != nil || job.NotAfter != nil {
		t.Error("expected no scheduling constraints on new job")
	}
	if job.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", job.MaxRetries)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no constraints", nil, nil, true},
		{"not before in past", &past, nil, true},
		{"not before in future", &future, nil, false},
		{"not after in future", nil, &future, true},
		{"not after in past", nil, &past, false},
		{"within window", &past, &future, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := NewJob(JobTypeMonitorMood, uuid.New())
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()
	job := NewJob(JobTypeAdaptSchedule, uuid.New())
	if job.IsExpired() {
		t.Error("job without NotAfter should not be expired")
	}

	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	if !job.IsExpired() {
		t.Error("job with NotAfter in the past should be expired")
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()
	job := NewJob(JobTypeAnalyzeTimes, uuid.New())

	for i := 0; i < 3; i++ {
		if !job.CanRetry() {
			t.Fatalf("expected CanRetry at retry count %d", job.RetryCount)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("expected CanRetry to be false after max retries")
	}
}

func TestJob_MetadataString(t *testing.T) {
	t.Parallel()
	job := NewJob(JobTypeSendNotification, uuid.New())
	job.Metadata[MetaNotificationType] = "stress_detected"
	job.Metadata["count"] = 3

	if got := job.MetadataString(MetaNotificationType); got != "stress_detected" {
		t.Errorf("expected stress_detected, got %q", got)
	}
	if got := job.MetadataString("count"); got != "" {
		t.Errorf("expected empty string for non-string value, got %q", got)
	}
	if got := job.MetadataString("missing"); got != "" {
		t.Errorf("expected empty string for missing key, got %q", got)
	}

	job.Metadata = nil
	if got := job.MetadataString(MetaNotificationType); got != "" {
		t.Errorf("expected empty string for nil metadata, got %q", got)
	}
}
