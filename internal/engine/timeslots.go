package engine

import (
	"fmt"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// SlotStats aggregates historical session performance for one hour-of-day
// bucket.
type SlotStats struct {
	Sessions        int     `json:"sessions"`
	AvgQuality      float64 `json:"avg_quality"`
	MoodImprovement float64 `json:"mood_improvement"`
	CompletionRate  float64 `json:"completion_rate"`
}

// HourKey formats an hour-of-day as the "HH:00" bucket key used throughout
// the engine.
func HourKey(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// AnalyzeTimeEffectiveness groups sessions into hour-of-day buckets and
// computes per-bucket running statistics. An empty input yields an empty
// map, which callers must treat as "insufficient data" rather than an
// error. Every recorded session counts as completed; no partial-completion
// signal exists upstream.
func AnalyzeTimeEffectiveness(sessions []models.MeditationSession) map[string]SlotStats {
	stats := make(map[string]SlotStats)
	moodSamples := make(map[string]int)

	for i := range sessions {
		s := &sessions[i]
		key := HourKey(s.Hour())
		st := stats[key]

		st.Sessions++
		n := float64(st.Sessions)
		st.AvgQuality = (st.AvgQuality*(n-1) + float64(s.Quality)) / n
		st.CompletionRate = 1.0

		if delta, ok := s.MoodDelta(); ok {
			moodSamples[key]++
			m := float64(moodSamples[key])
			st.MoodImprovement = (st.MoodImprovement*(m-1) + delta) / m
		}

		stats[key] = st
	}

	return stats
}
