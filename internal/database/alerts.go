package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stillmind/wellbeing-api/internal/models"
)

// AlertRepository handles contextual alert database operations
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// CreateAlert persists a contextual alert. Alerts are created once per
// detected episode and not deduplicated across analysis runs.
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.ContextualAlert) error {
	patternJSON, err := json.Marshal(alert.Pattern)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern snapshot: %w", err)
	}
	interventionJSON, err := json.Marshal(alert.Intervention)
	if err != nil {
		return fmt.Errorf("failed to marshal intervention: %w", err)
	}

	query := `
		INSERT INTO contextual_alerts (id, user_id, type, severity, pattern, intervention, notification_sent, user_responded, effectiveness, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		alert.ID,
		alert.UserID,
		alert.Type,
		alert.Severity,
		patternJSON,
		interventionJSON,
		alert.NotificationSent,
		alert.UserResponded,
		alert.Effectiveness,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// MarkNotified records that the notification for an alert was dispatched
func (r *AlertRepository) MarkNotified(ctx context.Context, alertID uuid.UUID) error {
	query := `UPDATE contextual_alerts SET notification_sent = true WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, alertID)
	if err != nil {
		return fmt.Errorf("failed to mark alert notified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found")
	}

	return nil
}

// RecordResponse stores the user's feedback on an alert's intervention.
// Scoped by user so one user cannot respond to another's alert.
func (r *AlertRepository) RecordResponse(ctx context.Context, alertID, userID uuid.UUID, effectiveness int) error {
	query := `UPDATE contextual_alerts SET user_responded = true, effectiveness = $3 WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, alertID, userID, effectiveness)
	if err != nil {
		return fmt.Errorf("failed to record alert response: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found")
	}

	return nil
}

// RecentByUserID retrieves up to limit alerts for a user, newest first
func (r *AlertRepository) RecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.ContextualAlert, error) {
	query := `
		SELECT id, user_id, type, severity, pattern, intervention, notification_sent, user_responded, effectiveness, created_at
		FROM contextual_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.ContextualAlert
	for rows.Next() {
		var alert models.ContextualAlert
		var patternJSON, interventionJSON []byte
		var effectiveness sql.NullInt64
		var createdAt time.Time

		err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&alert.Type,
			&alert.Severity,
			&patternJSON,
			&interventionJSON,
			&alert.NotificationSent,
			&alert.UserResponded,
			&effectiveness,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		if err := json.Unmarshal(patternJSON, &alert.Pattern); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pattern snapshot: %w", err)
		}
		if err := json.Unmarshal(interventionJSON, &alert.Intervention); err != nil {
			return nil, fmt.Errorf("failed to unmarshal intervention: %w", err)
		}
		if effectiveness.Valid {
			v := int(effectiveness.Int64)
			alert.Effectiveness = &v
		}
		alert.CreatedAt = createdAt

		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}
