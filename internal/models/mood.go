package models

import (
	"time"

	"github.com/google/uuid"
)

// MoodEntry represents a single mood check-in. Each dimension is a 1-5
// scalar. Entries are immutable once recorded.
type MoodEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Overall   float64   `json:"overall"`
	Energy    float64   `json:"energy"`
	Anxiety   float64   `json:"anxiety"`
	Happiness float64   `json:"happiness"`
	Stress    float64   `json:"stress"`
	Focus     float64   `json:"focus"`
	CreatedAt time.Time `json:"created_at"`
}
