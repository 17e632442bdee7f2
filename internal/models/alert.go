package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType classifies the detected wellbeing episode
type AlertType string

const (
	AlertStressSpike AlertType = "stress_spike"
	AlertMoodDecline AlertType = "mood_decline"
	AlertAnxietyPeak AlertType = "anxiety_peak"
	AlertEnergyCrash AlertType = "energy_crash"
	AlertFocusDrop   AlertType = "focus_drop"
)

// AlertSeverity grades how urgent an alert is
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// NotificationType is the delivery channel classification sent to the
// notification collaborator
type NotificationType string

const (
	NotifyStressDetected NotificationType = "stress_detected"
	NotifyMoodLow        NotificationType = "mood_low"
	NotifyEnergyLow      NotificationType = "energy_low"
	NotifyAnxietyHigh    NotificationType = "anxiety_high"
)

// InterventionPlan holds the suggested actions for an alert, split by
// horizon
type InterventionPlan struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// PatternSnapshot captures the analysis state that triggered an alert.
// Only the fields relevant to the pattern kind are populated.
type PatternSnapshot struct {
	Kind         string    `json:"kind"` // "stress" or "mood"
	StressLevel  float64   `json:"stress_level,omitempty"`
	Triggers     []string  `json:"triggers,omitempty"`
	TriggerCount int       `json:"trigger_count,omitempty"`
	Chronic      bool      `json:"chronic,omitempty"`
	Trend        string    `json:"trend,omitempty"`
	Overall      float64   `json:"overall,omitempty"`
	Anxiety      float64   `json:"anxiety,omitempty"`
	Energy       float64   `json:"energy,omitempty"`
	Focus        float64   `json:"focus,omitempty"`
	Variance     float64   `json:"variance,omitempty"`
	DetectedAt   time.Time `json:"detected_at"`
}

// ContextualAlert is a persisted record of a detected wellbeing episode.
// Alerts are created once per detected episode; repeated analysis runs over
// a sustained condition will create repeated alerts (no dedup).
type ContextualAlert struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	Type             AlertType        `json:"type"`
	Severity         AlertSeverity    `json:"severity"`
	Pattern          PatternSnapshot  `json:"pattern"`
	Intervention     InterventionPlan `json:"intervention"`
	NotificationSent bool             `json:"notification_sent"`
	UserResponded    bool             `json:"user_responded"`
	Effectiveness    *int             `json:"effectiveness,omitempty"` // 1-5 feedback
	CreatedAt        time.Time        `json:"created_at"`
}
