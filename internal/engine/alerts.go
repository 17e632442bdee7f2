package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
)

// AlertGenerator decides whether a detected pattern warrants a persisted
// ContextualAlert, grades its severity from the rule tables, attaches an
// intervention plan, and dispatches a notification for high and critical
// alerts.
type AlertGenerator struct {
	store    AlertStore
	notifier Notifier
	rules    RuleSet
	logger   *zap.Logger
}

// NewAlertGenerator creates an alert generator over the given collaborators.
func NewAlertGenerator(store AlertStore, notifier Notifier, rules RuleSet, logger *zap.Logger) *AlertGenerator {
	return &AlertGenerator{store: store, notifier: notifier, rules: rules, logger: logger}
}

// StressAlert evaluates a stress pattern against the alert gate and, when
// it fires, persists the alert. Persistence errors propagate so the
// enclosing analysis run fails loudly instead of silently losing an alert;
// a notification dispatch failure after the alert is persisted is only
// logged, preserving the partial result. Returns nil, nil when the gate
// does not fire.
func (g *AlertGenerator) StressAlert(ctx context.Context, userID uuid.UUID, p *StressPattern) (*models.ContextualAlert, error) {
	if p == nil {
		return nil, nil
	}
	if p.StressLevel < 4 && p.Severity != StressHigh && p.Severity != StressSevere {
		return nil, nil
	}

	// Grade from the metric, but never below the pattern's own grade.
	// Chronic patterns report severe regardless of their mean, so grading
	// by metric alone would silence the most serious detector.
	severity := maxSeverity(
		g.rules.Severity[models.AlertStressSpike].Grade(p.StressLevel),
		severityFloor(p.Severity),
	)

	intervention := g.rules.InterventionFor(models.AlertStressSpike)
	if p.Chronic {
		intervention.LongTerm = append(p.Recommendations, intervention.LongTerm...)
	}

	alert := &models.ContextualAlert{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     models.AlertStressSpike,
		Severity: severity,
		Pattern: models.PatternSnapshot{
			Kind:         "stress",
			StressLevel:  p.StressLevel,
			Triggers:     p.Triggers,
			TriggerCount: p.TriggerCount,
			Chronic:      p.Chronic,
			DetectedAt:   p.DetectedAt,
		},
		Intervention: intervention,
		CreatedAt:    time.Now(),
	}

	return alert, g.emit(ctx, alert)
}

// severityFloor maps a stress pattern's grade to the minimum alert severity
// it may produce.
func severityFloor(s StressSeverity) models.AlertSeverity {
	switch s {
	case StressSevere:
		return models.SeverityHigh
	case StressHigh:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

var severityRank = map[models.AlertSeverity]int{
	models.SeverityLow:      0,
	models.SeverityMedium:   1,
	models.SeverityHigh:     2,
	models.SeverityCritical: 3,
}

func maxSeverity(a, b models.AlertSeverity) models.AlertSeverity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// MoodAlert evaluates a mood pattern against the alert gate. The alert
// type is selected from the latest entry's worst dimension: anxiety peaks
// take precedence, then energy crashes, then focus drops, with a general
// mood decline as the fallback. Returns nil, nil when the gate does not
// fire.
func (g *AlertGenerator) MoodAlert(ctx context.Context, userID uuid.UUID, p *MoodPattern) (*models.ContextualAlert, error) {
	if p == nil {
		return nil, nil
	}
	latest := p.Latest
	if latest.Overall > 2 && p.Trend != TrendDeclining && latest.Anxiety < 4 {
		return nil, nil
	}

	var alertType models.AlertType
	var metric float64
	switch {
	case latest.Anxiety >= 4:
		alertType, metric = models.AlertAnxietyPeak, latest.Anxiety
	case latest.Energy <= 2:
		alertType, metric = models.AlertEnergyCrash, latest.Energy
	case latest.Focus <= 2:
		alertType, metric = models.AlertFocusDrop, latest.Focus
	default:
		alertType, metric = models.AlertMoodDecline, latest.Overall
	}

	alert := &models.ContextualAlert{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     alertType,
		Severity: g.rules.Severity[alertType].Grade(metric),
		Pattern: models.PatternSnapshot{
			Kind:       "mood",
			Trend:      string(p.Trend),
			Overall:    latest.Overall,
			Anxiety:    latest.Anxiety,
			Energy:     latest.Energy,
			Focus:      latest.Focus,
			Variance:   p.Variance,
			DetectedAt: p.DetectedAt,
		},
		Intervention: g.rules.InterventionFor(alertType),
		CreatedAt:    time.Now(),
	}

	return alert, g.emit(ctx, alert)
}

// emit persists the alert, then dispatches a notification for high and
// critical severities and records the dispatch.
func (g *AlertGenerator) emit(ctx context.Context, alert *models.ContextualAlert) error {
	if err := g.store.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist alert: %w", err)
	}

	g.logger.Info("alert_created",
		zap.String("user_id", alert.UserID.String()),
		zap.String("alert_type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
	)

	if alert.Severity != models.SeverityHigh && alert.Severity != models.SeverityCritical {
		return nil
	}

	notifyType, ok := g.rules.Notifications[alert.Type]
	if !ok {
		return nil
	}
	if err := g.notifier.Notify(ctx, alert.UserID, notifyType); err != nil {
		// Alert is already persisted; keep the partial result.
		g.logger.Warn("failed_to_dispatch_notification",
			zap.String("user_id", alert.UserID.String()),
			zap.String("notification_type", string(notifyType)),
			zap.Error(err),
		)
		return nil
	}

	alert.NotificationSent = true
	if err := g.store.MarkNotified(ctx, alert.ID); err != nil {
		g.logger.Warn("failed_to_mark_alert_notified",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}
