package engine

import (
	"sort"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// CircadianType is the coarse classification of a user's natural
// high-quality-session timing.
type CircadianType string

const (
	CircadianEarly   CircadianType = "early"
	CircadianRegular CircadianType = "regular"
	CircadianLate    CircadianType = "late"
)

// Hour windows used to compare morning vs evening session quality.
const (
	morningWindowStart = 6
	morningWindowEnd   = 10
	eveningWindowStart = 18
	eveningWindowEnd   = 22
)

// CircadianRhythm is the inferred natural rhythm of a user.
type CircadianRhythm struct {
	Type        CircadianType `json:"type"`
	EnergyPeaks []int         `json:"energy_peaks"` // top hours by mean session quality
	SleepStart  string        `json:"sleep_start"`  // HH:MM
	SleepEnd    string        `json:"sleep_end"`    // HH:MM
}

// AnchorTimes returns the fixed morning/midday/evening recommendation
// anchors for the rhythm type.
func (c CircadianRhythm) AnchorTimes() (morning, midday, evening string) {
	midday = "12:30"
	switch c.Type {
	case CircadianEarly:
		return "06:30", midday, "18:30"
	case CircadianLate:
		return "08:30", midday, "20:30"
	default:
		return "07:30", midday, "19:30"
	}
}

// EstimateCircadianRhythm infers the user's rhythm from session timing and
// quality. With zero sessions it falls back to the regular type and its
// fixed anchors; that is the no-data baseline, not an error.
func EstimateCircadianRhythm(sessions []models.MeditationSession) CircadianRhythm {
	hourCount := make(map[int]int)
	hourQuality := make(map[int]float64)
	for i := range sessions {
		h := sessions[i].Hour()
		hourCount[h]++
		n := float64(hourCount[h])
		hourQuality[h] = (hourQuality[h]*(n-1) + float64(sessions[i].Quality)) / n
	}

	rhythm := CircadianRhythm{Type: CircadianRegular}

	morningMean, morningN := windowMean(hourQuality, hourCount, morningWindowStart, morningWindowEnd)
	eveningMean, eveningN := windowMean(hourQuality, hourCount, eveningWindowStart, eveningWindowEnd)
	if morningN > 0 && eveningN > 0 {
		switch {
		case morningMean-eveningMean > 0.5:
			rhythm.Type = CircadianEarly
		case eveningMean-morningMean > 0.5:
			rhythm.Type = CircadianLate
		}
	} else if morningN > 0 && eveningN == 0 {
		rhythm.Type = CircadianEarly
	} else if eveningN > 0 && morningN == 0 {
		rhythm.Type = CircadianLate
	}

	rhythm.EnergyPeaks = topQualityHours(hourQuality, 3)

	// Sleep window follows the inferred type.
	switch rhythm.Type {
	case CircadianEarly:
		rhythm.SleepStart, rhythm.SleepEnd = "22:00", "06:00"
	case CircadianLate:
		rhythm.SleepStart, rhythm.SleepEnd = "00:00", "08:00"
	default:
		rhythm.SleepStart, rhythm.SleepEnd = "23:00", "07:00"
	}

	return rhythm
}

func windowMean(hourQuality map[int]float64, hourCount map[int]int, start, end int) (mean float64, n int) {
	var sum float64
	for h := start; h <= end; h++ {
		c := hourCount[h]
		if c == 0 {
			continue
		}
		sum += hourQuality[h] * float64(c)
		n += c
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// topQualityHours returns the k hours with the highest mean quality.
// Ties break toward the earlier hour so results are deterministic.
func topQualityHours(hourQuality map[int]float64, k int) []int {
	hours := make([]int, 0, len(hourQuality))
	for h := range hourQuality {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if hourQuality[hours[i]] != hourQuality[hours[j]] {
			return hourQuality[hours[i]] > hourQuality[hours[j]]
		}
		return hours[i] < hours[j]
	})
	if len(hours) > k {
		hours = hours[:k]
	}
	return hours
}
