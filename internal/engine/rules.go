package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// SeverityStep maps a metric threshold to a severity grade. Steps are
// evaluated in order; the first matching step wins.
type SeverityStep struct {
	Threshold float64              `yaml:"threshold"`
	Severity  models.AlertSeverity `yaml:"severity"`
}

// SeverityLadder grades one alert type. LowerIsWorse inverts the
// comparison for metrics where a low value is the problem (energy, focus,
// overall mood).
type SeverityLadder struct {
	LowerIsWorse bool                 `yaml:"lower_is_worse"`
	Steps        []SeverityStep       `yaml:"steps"`
	Default      models.AlertSeverity `yaml:"default"`
}

// Grade returns the severity for a metric value.
func (l SeverityLadder) Grade(value float64) models.AlertSeverity {
	for _, step := range l.Steps {
		if l.LowerIsWorse {
			if value <= step.Threshold {
				return step.Severity
			}
		} else if value >= step.Threshold {
			return step.Severity
		}
	}
	if l.Default != "" {
		return l.Default
	}
	return models.SeverityLow
}

// InterventionEntry is the YAML shape of one intervention plan.
type InterventionEntry struct {
	Immediate []string `yaml:"immediate"`
	ShortTerm []string `yaml:"short_term"`
	LongTerm  []string `yaml:"long_term"`
}

// RuleSet holds the severity and intervention lookup tables. These are
// deliberately data, not conditionals, so they can be tuned and tested
// independently of the detection logic, and overridden from a YAML file in
// deployment.
type RuleSet struct {
	Severity      map[models.AlertType]SeverityLadder          `yaml:"severity"`
	Contexts      map[models.AlertType]string                  `yaml:"contexts"`
	Interventions map[string]InterventionEntry                 `yaml:"interventions"`
	Notifications map[models.AlertType]models.NotificationType `yaml:"notifications"`
}

// InterventionFor returns the plan for an alert type via its coarse
// context key.
func (r RuleSet) InterventionFor(t models.AlertType) models.InterventionPlan {
	entry := r.Interventions[r.Contexts[t]]
	return models.InterventionPlan{
		Immediate: entry.Immediate,
		ShortTerm: entry.ShortTerm,
		LongTerm:  entry.LongTerm,
	}
}

// DefaultRules returns the built-in severity and intervention tables.
func DefaultRules() RuleSet {
	return RuleSet{
		Severity: map[models.AlertType]SeverityLadder{
			models.AlertStressSpike: {Steps: []SeverityStep{
				{Threshold: 4.5, Severity: models.SeverityCritical},
				{Threshold: 4.0, Severity: models.SeverityHigh},
				{Threshold: 3.5, Severity: models.SeverityMedium},
			}, Default: models.SeverityLow},
			models.AlertAnxietyPeak: {Steps: []SeverityStep{
				{Threshold: 4.5, Severity: models.SeverityCritical},
				{Threshold: 4.0, Severity: models.SeverityHigh},
			}, Default: models.SeverityMedium},
			models.AlertMoodDecline: {LowerIsWorse: true, Steps: []SeverityStep{
				{Threshold: 1.5, Severity: models.SeverityCritical},
				{Threshold: 2.0, Severity: models.SeverityHigh},
			}, Default: models.SeverityMedium},
			models.AlertEnergyCrash: {LowerIsWorse: true, Steps: []SeverityStep{
				{Threshold: 1.5, Severity: models.SeverityHigh},
			}, Default: models.SeverityMedium},
			models.AlertFocusDrop: {LowerIsWorse: true, Steps: []SeverityStep{
				{Threshold: 1.5, Severity: models.SeverityHigh},
			}, Default: models.SeverityMedium},
		},
		Contexts: map[models.AlertType]string{
			models.AlertStressSpike: "high_stress",
			models.AlertMoodDecline: "low_mood",
			models.AlertAnxietyPeak: "anxiety_spike",
			models.AlertEnergyCrash: "fatigue",
			models.AlertFocusDrop:   "fatigue",
		},
		Interventions: map[string]InterventionEntry{
			"high_stress": {
				Immediate: []string{
					"take five slow breaths",
					"start a 3-minute box-breathing session",
					"step away from the stressor for a moment",
				},
				ShortTerm: []string{
					"schedule a 10-minute body scan today",
					"take a short walk outside",
				},
				LongTerm: []string{
					"build a daily stress-release practice",
					"review workload and commitments",
				},
			},
			"low_mood": {
				Immediate: []string{
					"try a loving-kindness micro-session",
					"write down one thing that went well today",
				},
				ShortTerm: []string{
					"schedule a gratitude meditation",
					"reach out to a friend",
				},
				LongTerm: []string{
					"establish a consistent morning practice",
					"track mood alongside sleep",
				},
			},
			"anxiety_spike": {
				Immediate: []string{
					"ground yourself with the 5-4-3-2-1 exercise",
					"breathe with an extended exhale",
				},
				ShortTerm: []string{
					"do a guided anxiety-relief session today",
					"skip caffeine for the rest of the day",
				},
				LongTerm: []string{
					"keep a daily calming practice",
					"consider professional support if peaks persist",
				},
			},
			"fatigue": {
				Immediate: []string{
					"try a two-minute energizing breath",
					"stand up and stretch",
				},
				ShortTerm: []string{
					"fit in a short restorative session this afternoon",
					"wind down earlier tonight",
				},
				LongTerm: []string{
					"align practice times with your natural energy peaks",
					"review your sleep schedule",
				},
			},
		},
		Notifications: map[models.AlertType]models.NotificationType{
			models.AlertStressSpike: models.NotifyStressDetected,
			models.AlertMoodDecline: models.NotifyMoodLow,
			models.AlertAnxietyPeak: models.NotifyAnxietyHigh,
			models.AlertEnergyCrash: models.NotifyEnergyLow,
			models.AlertFocusDrop:   models.NotifyMoodLow,
		},
	}
}

// LoadRules reads a YAML overrides file on top of the default tables.
// Only the sections present in the file replace their defaults.
func LoadRules(path string) (RuleSet, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	var overrides RuleSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(overrides.Severity) > 0 {
		for t, ladder := range overrides.Severity {
			rules.Severity[t] = ladder
		}
	}
	if len(overrides.Contexts) > 0 {
		for t, c := range overrides.Contexts {
			rules.Contexts[t] = c
		}
	}
	if len(overrides.Interventions) > 0 {
		for c, entry := range overrides.Interventions {
			rules.Interventions[c] = entry
		}
	}
	if len(overrides.Notifications) > 0 {
		for t, n := range overrides.Notifications {
			rules.Notifications[t] = n
		}
	}

	return rules, nil
}
