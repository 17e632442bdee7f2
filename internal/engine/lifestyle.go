package engine

import (
	"time"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// LifestylePattern holds the inferred hour sets describing a user's
// weekly routine. Hours are 0-23; sets may overlap.
type LifestylePattern struct {
	WorkingHours   map[int]bool `json:"working_hours"`
	BusyHours      map[int]bool `json:"busy_hours"`
	QuietHours     map[int]bool `json:"quiet_hours"`
	StressfulHours map[int]bool `json:"stressful_hours"`
	RelaxedHours   map[int]bool `json:"relaxed_hours"`
}

// EstimateLifestylePattern infers work/busy/quiet/stress hour sets from the
// distribution of session timing across weekdays. The working-hour default
// (09-17 plus commute hours 08 and 18 as busy) stands in for any hour the
// user has not demonstrated availability in; hours with repeated sessions
// are quiet/available, and weekday working hours where session quality runs
// below the user's own average are treated as stressful.
func EstimateLifestylePattern(sessions []models.MeditationSession) LifestylePattern {
	p := LifestylePattern{
		WorkingHours:   make(map[int]bool),
		BusyHours:      make(map[int]bool),
		QuietHours:     make(map[int]bool),
		StressfulHours: make(map[int]bool),
		RelaxedHours:   make(map[int]bool),
	}

	for h := 9; h <= 17; h++ {
		p.WorkingHours[h] = true
		p.BusyHours[h] = true
	}
	p.BusyHours[8] = true
	p.BusyHours[18] = true

	weekdayHourCount := make(map[int]int)
	hourCount := make(map[int]int)
	hourQuality := make(map[int]float64)
	var qualitySum float64

	for i := range sessions {
		s := &sessions[i]
		h := s.Hour()
		hourCount[h]++
		n := float64(hourCount[h])
		hourQuality[h] = (hourQuality[h]*(n-1) + float64(s.Quality)) / n
		qualitySum += float64(s.Quality)

		wd := s.Timestamp.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			weekdayHourCount[h]++
		}
	}

	if len(sessions) == 0 {
		return p
	}
	overallMean := qualitySum / float64(len(sessions))

	for h, count := range hourCount {
		// Repeated practice at an hour shows the user is reliably free then.
		if count >= 2 {
			p.QuietHours[h] = true
			delete(p.BusyHours, h)
		}
		if hourQuality[h] >= overallMean {
			p.RelaxedHours[h] = true
		}
		if p.WorkingHours[h] && weekdayHourCount[h] > 0 && hourQuality[h] < overallMean {
			p.StressfulHours[h] = true
		}
	}

	return p
}
