package engine

import (
	"time"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// StressSeverity grades a detected stress pattern
type StressSeverity string

const (
	StressLow      StressSeverity = "low"
	StressModerate StressSeverity = "moderate"
	StressHigh     StressSeverity = "high"
	StressSevere   StressSeverity = "severe"
)

// Detection thresholds for stress patterns
const (
	highStressEntry       = 4.0 // a single entry at or above this is a high-stress episode
	sustainedStressMean   = 3.5 // mean of the last 3 entries
	chronicStressMean     = 3.5 // mean over the chronic window
	chronicHighStressDays = 4   // entries at/above highStressEntry within the window
	chronicWindowEntries  = 7
	stressLookback        = 24 * time.Hour
)

// StressPattern is an intermediate analysis record describing a detected
// stress condition. It is consumed within a single analysis pass and never
// persisted on its own.
type StressPattern struct {
	StressLevel     float64
	Triggers        []string
	TriggerCount    int // high-stress episodes inside the lookback window
	Severity        StressSeverity
	Chronic         bool
	Recommendations []string
	DetectedAt      time.Time
}

// MoodTrend classifies the direction of a user's recent mood
type MoodTrend string

const (
	TrendImproving   MoodTrend = "improving"
	TrendDeclining   MoodTrend = "declining"
	TrendFluctuating MoodTrend = "fluctuating"
	TrendStable      MoodTrend = "stable"
)

// MoodPattern is an intermediate analysis record describing the user's mood
// trajectory. Like StressPattern it lives only within one analysis pass.
type MoodPattern struct {
	Trend      MoodTrend
	Delta      float64 // recent mean minus older mean
	Variance   float64 // population variance of the last 5 overall scores
	Latest     models.MoodEntry
	Concern    string // set by the concerning-pattern sweep
	DetectedAt time.Time
}

// DetectStressPattern evaluates the acute stress signals: the latest
// entry's stress level, repeated high-stress episodes inside the 24-hour
// lookback, and a sustained elevated mean over the last three entries.
// Entries must be ordered newest-first. Returns nil when there is nothing
// to evaluate.
func DetectStressPattern(entries []models.MoodEntry, now time.Time) *StressPattern {
	if len(entries) == 0 {
		return nil
	}

	latest := entries[0]
	p := &StressPattern{
		StressLevel: latest.Stress,
		DetectedAt:  now,
	}

	cutoff := now.Add(-stressLookback)
	for i := range entries {
		if entries[i].Timestamp.Before(cutoff) {
			break
		}
		if entries[i].Stress >= highStressEntry {
			p.TriggerCount++
		}
	}
	if p.TriggerCount >= 2 {
		p.Triggers = append(p.Triggers, "multiple high stress episodes")
	}

	if len(entries) >= 3 {
		var sum float64
		for i := 0; i < 3; i++ {
			sum += entries[i].Stress
		}
		if sum/3 >= sustainedStressMean {
			p.Triggers = append(p.Triggers, "sustained elevated stress")
		}
	}

	p.Severity = stressSeverity(p.StressLevel, p.TriggerCount)
	return p
}

// stressSeverity is the shared severity ladder for acute stress patterns.
func stressSeverity(stressLevel float64, triggerCount int) StressSeverity {
	switch {
	case stressLevel >= 4.5 || triggerCount >= 3:
		return StressSevere
	case stressLevel >= 4 || triggerCount >= 2:
		return StressHigh
	case stressLevel >= 3 || triggerCount >= 1:
		return StressModerate
	default:
		return StressLow
	}
}

// DetectChronicStress sweeps the most recent 7 entries for a persisting
// condition: mean stress at or above 3.5, or at least 4 of the entries at
// high-stress level. The trigger is day-count OR mean, so a run of acute
// days flags even when the mean sits below the threshold. Chronic findings
// always report severe severity with a fixed escalation plan. Entries must
// be ordered newest-first; returns nil when no chronic condition is found.
func DetectChronicStress(entries []models.MoodEntry, now time.Time) *StressPattern {
	if len(entries) == 0 {
		return nil
	}
	window := entries
	if len(window) > chronicWindowEntries {
		window = window[:chronicWindowEntries]
	}

	var sum float64
	highDays := 0
	for i := range window {
		sum += window[i].Stress
		if window[i].Stress >= highStressEntry {
			highDays++
		}
	}
	mean := sum / float64(len(window))

	if mean < chronicStressMean && highDays < chronicHighStressDays {
		return nil
	}

	return &StressPattern{
		StressLevel:  mean,
		Triggers:     []string{"chronic stress"},
		TriggerCount: highDays,
		Severity:     StressSevere,
		Chronic:      true,
		Recommendations: []string{
			"consider seeking professional support",
			"establish a daily meditation practice",
			"extend session duration for deeper relaxation",
		},
		DetectedAt: now,
	}
}

// DetectMoodTrend classifies the user's recent mood trajectory. Entries
// must be ordered newest-first and there must be at least three of them;
// fewer returns ErrInsufficientData. High variance over the last five
// entries classifies as fluctuating before the delta rules apply, so a
// swinging mood is never reported as improving or declining.
func DetectMoodTrend(entries []models.MoodEntry, now time.Time) (*MoodPattern, error) {
	if len(entries) < 3 {
		return nil, ErrInsufficientData
	}

	p := &MoodPattern{Latest: entries[0], DetectedAt: now}

	recent := meanOverall(entries[:3])
	older := recent
	if len(entries) > 3 {
		end := 6
		if end > len(entries) {
			end = len(entries)
		}
		older = meanOverall(entries[3:end])
	}
	p.Delta = recent - older

	varWindow := entries
	if len(varWindow) > 5 {
		varWindow = varWindow[:5]
	}
	p.Variance = overallVariance(varWindow)

	switch {
	case p.Variance > 1.0:
		p.Trend = TrendFluctuating
	case p.Delta > 0.5:
		p.Trend = TrendImproving
	case p.Delta < -0.5:
		p.Trend = TrendDeclining
	default:
		p.Trend = TrendStable
	}

	return p, nil
}

// DetectConcerningPatterns runs the non-exclusive sweep for conditions that
// warrant attention regardless of the primary trend classification.
// Currently: sustained low mood, flagged when the mean overall score of the
// last five entries is at or below 2.5.
func DetectConcerningPatterns(entries []models.MoodEntry, now time.Time) []MoodPattern {
	if len(entries) == 0 {
		return nil
	}
	window := entries
	if len(window) > 5 {
		window = window[:5]
	}

	var found []MoodPattern
	if meanOverall(window) <= 2.5 {
		found = append(found, MoodPattern{
			Trend:      TrendDeclining,
			Variance:   overallVariance(window),
			Latest:     entries[0],
			Concern:    "sustained low mood",
			DetectedAt: now,
		})
	}
	return found
}

func meanOverall(entries []models.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for i := range entries {
		sum += entries[i].Overall
	}
	return sum / float64(len(entries))
}

// overallVariance is the population variance (mean squared deviation) of
// the overall scores.
func overallVariance(entries []models.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	mean := meanOverall(entries)
	var sum float64
	for i := range entries {
		d := entries[i].Overall - mean
		sum += d * d
	}
	return sum / float64(len(entries))
}
