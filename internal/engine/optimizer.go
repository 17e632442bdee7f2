package engine

import (
	"sort"

	"github.com/stillmind/wellbeing-api/internal/models"
)

const (
	// minSessionsForAnalysis is the history size below which the optimizer
	// skips analysis and returns the fixed default slots.
	minSessionsForAnalysis = 5
	// maxOptimalSlots caps the ranked slot list.
	maxOptimalSlots = 6
	// anchorConfidence is assigned to circadian anchor slots unioned into
	// the ranked list.
	anchorConfidence = 0.7
	// maxConfidence reserves headroom above the evidence-backed ceiling.
	maxConfidence = 0.9
)

// OptimizeSchedule merges time-effectiveness, circadian, and lifestyle
// analysis into a ranked list of optimal time slots. With fewer than five
// historical sessions it skips analysis and returns the documented
// low-data defaults; that is a fallback, not an error path.
func OptimizeSchedule(sessions []models.MeditationSession) []models.OptimalTimeSlot {
	if len(sessions) < minSessionsForAnalysis {
		return DefaultTimeSlots()
	}

	stats := AnalyzeTimeEffectiveness(sessions)
	rhythm := EstimateCircadianRhythm(sessions)
	lifestyle := EstimateLifestylePattern(sessions)

	type ranked struct {
		key   string
		stats SlotStats
	}
	buckets := make([]ranked, 0, len(stats))
	for key, st := range stats {
		buckets = append(buckets, ranked{key: key, stats: st})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].stats.AvgQuality != buckets[j].stats.AvgQuality {
			return buckets[i].stats.AvgQuality > buckets[j].stats.AvgQuality
		}
		return buckets[i].key < buckets[j].key
	})
	if len(buckets) > 5 {
		buckets = buckets[:5]
	}

	slots := make([]models.OptimalTimeSlot, 0, maxOptimalSlots)
	seen := make(map[string]bool)
	for _, b := range buckets {
		hour := hourFromKey(b.key)
		slots = append(slots, models.OptimalTimeSlot{
			TimeSlot:   b.key,
			DayOfWeek:  models.AnyDay,
			Confidence: slotConfidence(b.stats.Sessions),
			Effectiveness: models.EffectivenessMetrics{
				MoodImprovement: b.stats.MoodImprovement,
				SessionQuality:  b.stats.AvgQuality,
				CompletionRate:  b.stats.CompletionRate,
			},
			BasedOnSessions: b.stats.Sessions,
			Environmental:   environmentalFactors(hour),
			Personal:        personalFactors(hour, lifestyle),
		})
		seen[b.key] = true
	}

	// Union in the circadian morning/evening anchors when the analysis
	// buckets did not already cover them.
	morning, _, evening := rhythm.AnchorTimes()
	for _, anchor := range []string{morning, evening} {
		if seen[anchor] {
			continue
		}
		hour := hourFromKey(anchor)
		slots = append(slots, models.OptimalTimeSlot{
			TimeSlot:      anchor,
			DayOfWeek:     models.AnyDay,
			Confidence:    anchorConfidence,
			Environmental: environmentalFactors(hour),
			Personal:      personalFactors(hour, lifestyle),
		})
		seen[anchor] = true
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Confidence > slots[j].Confidence
	})
	if len(slots) > maxOptimalSlots {
		slots = slots[:maxOptimalSlots]
	}
	return slots
}

// DefaultTimeSlots is the low-data fallback: three fixed slots at moderate
// confidence.
func DefaultTimeSlots() []models.OptimalTimeSlot {
	defaults := []string{"07:00", "12:00", "19:00"}
	slots := make([]models.OptimalTimeSlot, 0, len(defaults))
	for _, ts := range defaults {
		hour := hourFromKey(ts)
		slots = append(slots, models.OptimalTimeSlot{
			TimeSlot:      ts,
			DayOfWeek:     models.AnyDay,
			Confidence:    0.5,
			Environmental: environmentalFactors(hour),
			Personal: models.PersonalFactors{
				EnergyLevel:  models.FactorMedium,
				StressLevel:  models.FactorMedium,
				Availability: models.FactorMedium,
			},
		})
	}
	return slots
}

// slotConfidence ramps linearly with the sample count and caps at the
// confidence ceiling: 10 or more sessions in a bucket earn the maximum.
func slotConfidence(sessions int) float64 {
	c := float64(sessions) / 10
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// environmentalFactors derives the context flags from the hour of day.
func environmentalFactors(hour int) models.EnvironmentalFactors {
	return models.EnvironmentalFactors{
		Quiet:        hour < 8 || hour > 20,
		NaturalLight: hour >= 6 && hour <= 18,
		LowActivity:  hour < 9 || (hour >= 12 && hour <= 14) || hour > 19,
	}
}

// personalFactors intersects the hour with the lifestyle pattern's hour
// sets to estimate the user's state at that time.
func personalFactors(hour int, lifestyle LifestylePattern) models.PersonalFactors {
	f := models.PersonalFactors{
		EnergyLevel:  models.FactorMedium,
		StressLevel:  models.FactorMedium,
		Availability: models.FactorMedium,
	}

	if lifestyle.BusyHours[hour] || lifestyle.WorkingHours[hour] {
		f.Availability = models.FactorLow
	}
	if lifestyle.QuietHours[hour] {
		f.Availability = models.FactorHigh
	}
	if lifestyle.StressfulHours[hour] {
		f.StressLevel = models.FactorHigh
	}
	if lifestyle.RelaxedHours[hour] {
		f.StressLevel = models.FactorLow
		f.EnergyLevel = models.FactorHigh
	}
	return f
}

// hourFromKey parses the hour out of an "HH:MM" slot key.
func hourFromKey(key string) int {
	if len(key) < 2 {
		return 0
	}
	return int(key[0]-'0')*10 + int(key[1]-'0')
}
