package models

import (
	"time"

	"github.com/google/uuid"
)

// MeditationSession represents a single completed meditation session.
// Sessions are immutable once recorded.
type MeditationSession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Timestamp       time.Time  `json:"timestamp"`
	DurationMinutes int        `json:"duration_minutes"`
	Quality         int        `json:"quality"` // 1-5 self rating
	Techniques      []string   `json:"techniques"`
	MoodBefore      *float64   `json:"mood_before,omitempty"` // 1-5
	MoodAfter       *float64   `json:"mood_after,omitempty"`  // 1-5
	CreatedAt       time.Time  `json:"created_at"`
}

// Hour returns the hour-of-day bucket the session falls into.
func (s *MeditationSession) Hour() int {
	return s.Timestamp.Hour()
}

// MoodDelta returns moodAfter - moodBefore and whether both were recorded.
func (s *MeditationSession) MoodDelta() (float64, bool) {
	if s.MoodBefore == nil || s.MoodAfter == nil {
		return 0, false
	}
	return *s.MoodAfter - *s.MoodBefore, true
}
