package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleType represents how a schedule adapts over time
type ScheduleType string

const (
	ScheduleTypeFixed    ScheduleType = "fixed"
	ScheduleTypeAdaptive ScheduleType = "adaptive"
)

// FactorLevel is a coarse low/medium/high classification
type FactorLevel string

const (
	FactorLow    FactorLevel = "low"
	FactorMedium FactorLevel = "medium"
	FactorHigh   FactorLevel = "high"
)

// EffectivenessMetrics holds the per-slot historical effectiveness signals
type EffectivenessMetrics struct {
	MoodImprovement float64 `json:"mood_improvement"`
	StressReduction float64 `json:"stress_reduction"`
	SessionQuality  float64 `json:"session_quality"`
	CompletionRate  float64 `json:"completion_rate"`
}

// EnvironmentalFactors are hour-of-day derived context flags
type EnvironmentalFactors struct {
	Quiet        bool `json:"quiet"`
	NaturalLight bool `json:"natural_light"`
	LowActivity  bool `json:"low_activity"`
}

// PersonalFactors describe the user's expected state at a slot
type PersonalFactors struct {
	EnergyLevel  FactorLevel `json:"energy_level"`
	StressLevel  FactorLevel `json:"stress_level"`
	Availability FactorLevel `json:"availability"`
}

// AnyDay is the DayOfWeek value for a slot that applies every day
const AnyDay = -1

// OptimalTimeSlot is a ranked candidate practice time. Slots are recomputed
// on each analysis run and replaced wholesale, never mutated in place.
type OptimalTimeSlot struct {
	TimeSlot        string               `json:"time_slot"`   // HH:MM
	DayOfWeek       int                  `json:"day_of_week"` // AnyDay or 0-6 (Sunday=0)
	Confidence      float64              `json:"confidence"`  // [0, 0.9]
	Effectiveness   EffectivenessMetrics `json:"effectiveness"`
	BasedOnSessions int                  `json:"based_on_sessions"`
	Environmental   EnvironmentalFactors `json:"environmental"`
	Personal        PersonalFactors      `json:"personal"`
}

// SchedulePreferences are the user-supplied constraints for a schedule
type SchedulePreferences struct {
	ScheduleType         ScheduleType `json:"schedule_type"`
	DailyDurationMinutes int          `json:"daily_duration_minutes"`
	MaxSessionsPerDay    int          `json:"max_sessions_per_day"`
	PreferredTechniques  []string     `json:"preferred_techniques"`
	MinimumGapMinutes    int          `json:"minimum_gap_minutes"`
}

// Preference defaults applied when a field is zero-valued
const (
	DefaultDailyDurationMinutes = 10
	DefaultMaxSessionsPerDay    = 3
	DefaultMinimumGapMinutes    = 240
)

// ApplyDefaults fills zero-valued preference fields with defaults
func (p *SchedulePreferences) ApplyDefaults() {
	if p.ScheduleType == "" {
		p.ScheduleType = ScheduleTypeAdaptive
	}
	if p.DailyDurationMinutes <= 0 {
		p.DailyDurationMinutes = DefaultDailyDurationMinutes
	}
	if p.MaxSessionsPerDay <= 0 {
		p.MaxSessionsPerDay = DefaultMaxSessionsPerDay
	}
	if p.MinimumGapMinutes <= 0 {
		p.MinimumGapMinutes = DefaultMinimumGapMinutes
	}
	if len(p.PreferredTechniques) == 0 {
		p.PreferredTechniques = []string{"mindfulness"}
	}
}

// AdaptiveSettings control when a schedule re-optimizes itself
type AdaptiveSettings struct {
	AutoAdjust               bool    `json:"auto_adjust"`
	MinAdherencePercent      float64 `json:"min_adherence_percent"`
	MinAvgQuality            float64 `json:"min_avg_quality"`
	EvaluationWindowSessions int     `json:"evaluation_window_sessions"`
}

// DefaultAdaptiveSettings returns the standard adaptation thresholds
func DefaultAdaptiveSettings() AdaptiveSettings {
	return AdaptiveSettings{
		AutoAdjust:               true,
		MinAdherencePercent:      60,
		MinAvgQuality:            3.5,
		EvaluationWindowSessions: 30,
	}
}

// ScheduleEffectiveness tracks observed schedule performance
type ScheduleEffectiveness struct {
	AdherenceRate       float64 `json:"adherence_rate"` // 0-100
	AvgSessionQuality   float64 `json:"avg_session_quality"`
	MoodImprovementRate float64 `json:"mood_improvement_rate"`
	StressReductionRate float64 `json:"stress_reduction_rate"`
}

// RecommendationPriority orders recommendations for display
type RecommendationPriority string

const (
	PriorityLow    RecommendationPriority = "low"
	PriorityMedium RecommendationPriority = "medium"
	PriorityHigh   RecommendationPriority = "high"
)

// ScheduleRecommendation is a pure output value suggesting a practice.
// It is never persisted on its own, only nested inside a SmartSchedule
// or returned directly to the caller.
type ScheduleRecommendation struct {
	RecommendedTime   string                 `json:"recommended_time"` // HH:MM
	DayOfWeek         *int                   `json:"day_of_week,omitempty"`
	DurationMinutes   int                    `json:"duration_minutes"`
	Technique         string                 `json:"technique"`
	Reason            string                 `json:"reason"`
	Priority          RecommendationPriority `json:"priority"`
	ContextualFactors []string               `json:"contextual_factors,omitempty"`
}

// SmartSchedule is a user's active personalized practice schedule.
// One active schedule exists per user; adaptation replaces time slots
// wholesale rather than merging.
type SmartSchedule struct {
	ID                  uuid.UUID                `json:"id"`
	UserID              uuid.UUID                `json:"user_id"`
	ScheduleType        ScheduleType             `json:"schedule_type"`
	TimeSlots           []OptimalTimeSlot        `json:"time_slots"`
	AdaptiveSettings    AdaptiveSettings         `json:"adaptive_settings"`
	Preferences         SchedulePreferences      `json:"preferences"`
	Effectiveness       ScheduleEffectiveness    `json:"effectiveness"`
	NextRecommendations []ScheduleRecommendation `json:"next_recommendations,omitempty"`
	Active              bool                     `json:"active"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}
