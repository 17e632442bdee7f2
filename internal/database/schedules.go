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

// ScheduleRepository handles smart schedule database operations. A user
// has at most one active schedule; replacement is wholesale so a failed
// write never leaves a half-updated schedule.
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ActiveSchedule retrieves the user's active schedule, or nil when none
// exists.
func (r *ScheduleRepository) ActiveSchedule(ctx context.Context, userID uuid.UUID) (*models.SmartSchedule, error) {
	schedule := &models.SmartSchedule{}
	var slotsJSON, settingsJSON, prefsJSON, effectivenessJSON, recsJSON []byte

	query := `
		SELECT id, user_id, schedule_type, time_slots, adaptive_settings, preferences, effectiveness, next_recommendations, active, created_at, updated_at
		FROM smart_schedules
		WHERE user_id = $1 AND active = true
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&schedule.ID,
		&schedule.UserID,
		&schedule.ScheduleType,
		&slotsJSON,
		&settingsJSON,
		&prefsJSON,
		&effectivenessJSON,
		&recsJSON,
		&schedule.Active,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	for _, col := range []struct {
		data []byte
		dest any
	}{
		{slotsJSON, &schedule.TimeSlots},
		{settingsJSON, &schedule.AdaptiveSettings},
		{prefsJSON, &schedule.Preferences},
		{effectivenessJSON, &schedule.Effectiveness},
		{recsJSON, &schedule.NextRecommendations},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schedule column: %w", err)
		}
	}

	return schedule, nil
}

// ReplaceActiveSchedule deactivates any existing schedule and inserts the
// new one in a single transaction.
func (r *ScheduleRepository) ReplaceActiveSchedule(ctx context.Context, schedule *models.SmartSchedule) error {
	slotsJSON, err := json.Marshal(schedule.TimeSlots)
	if err != nil {
		return fmt.Errorf("failed to marshal time slots: %w", err)
	}
	settingsJSON, err := json.Marshal(schedule.AdaptiveSettings)
	if err != nil {
		return fmt.Errorf("failed to marshal adaptive settings: %w", err)
	}
	prefsJSON, err := json.Marshal(schedule.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	effectivenessJSON, err := json.Marshal(schedule.Effectiveness)
	if err != nil {
		return fmt.Errorf("failed to marshal effectiveness: %w", err)
	}
	recsJSON, err := json.Marshal(schedule.NextRecommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deactivate := `UPDATE smart_schedules SET active = false, updated_at = $2 WHERE user_id = $1 AND active = true AND id != $3`
	if _, err := tx.ExecContext(ctx, deactivate, schedule.UserID, time.Now(), schedule.ID); err != nil {
		return fmt.Errorf("failed to deactivate previous schedule: %w", err)
	}

	upsert := `
		INSERT INTO smart_schedules (id, user_id, schedule_type, time_slots, adaptive_settings, preferences, effectiveness, next_recommendations, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			schedule_type = EXCLUDED.schedule_type,
			time_slots = EXCLUDED.time_slots,
			adaptive_settings = EXCLUDED.adaptive_settings,
			preferences = EXCLUDED.preferences,
			effectiveness = EXCLUDED.effectiveness,
			next_recommendations = EXCLUDED.next_recommendations,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	_, err = tx.ExecContext(ctx, upsert,
		schedule.ID,
		schedule.UserID,
		schedule.ScheduleType,
		slotsJSON,
		settingsJSON,
		prefsJSON,
		effectivenessJSON,
		recsJSON,
		schedule.Active,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule replacement: %w", err)
	}

	return nil
}

// SaveTimeSlots replaces the persisted analysis slots for a user. Slots
// are recomputed on each analysis run and never mutated in place.
func (r *ScheduleRepository) SaveTimeSlots(ctx context.Context, userID uuid.UUID, slots []models.OptimalTimeSlot) error {
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal time slots: %w", err)
	}

	query := `
		INSERT INTO optimal_time_slots (user_id, slots, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET slots = EXCLUDED.slots, computed_at = EXCLUDED.computed_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, slotsJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to save time slots: %w", err)
	}

	return nil
}
