package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stillmind/wellbeing-api/internal/models"
)

// MoodRepository handles mood entry database operations
type MoodRepository struct {
	db *DB
}

// NewMoodRepository creates a new mood repository
func NewMoodRepository(db *DB) *MoodRepository {
	return &MoodRepository{db: db}
}

// Create records a new mood check-in. Entries are immutable once created.
func (r *MoodRepository) Create(ctx context.Context, entry *models.MoodEntry) error {
	query := `
		INSERT INTO mood_entries (id, user_id, timestamp, overall, energy, anxiety, happiness, stress, focus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Timestamp,
		entry.Overall,
		entry.Energy,
		entry.Anxiety,
		entry.Happiness,
		entry.Stress,
		entry.Focus,
		time.Now(),
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create mood entry: %w", err)
	}

	return nil
}

// RecentByUserID retrieves up to limit mood entries for a user, newest
// first. Short history silently returns fewer rows.
func (r *MoodRepository) RecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.MoodEntry, error) {
	query := `
		SELECT id, user_id, timestamp, overall, energy, anxiety, happiness, stress, focus, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		var entry models.MoodEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Timestamp,
			&entry.Overall,
			&entry.Energy,
			&entry.Anxiety,
			&entry.Happiness,
			&entry.Stress,
			&entry.Focus,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mood entries: %w", err)
	}

	return entries, nil
}
