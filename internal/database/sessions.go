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

// SessionRepository handles meditation session database operations
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records a new meditation session. Sessions are immutable once
// created.
func (r *SessionRepository) Create(ctx context.Context, session *models.MeditationSession) error {
	query := `
		INSERT INTO meditation_sessions (id, user_id, timestamp, duration_minutes, quality, techniques, mood_before, mood_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	techniquesJSON, err := json.Marshal(session.Techniques)
	if err != nil {
		return fmt.Errorf("failed to marshal techniques: %w", err)
	}

	var moodBefore, moodAfter sql.NullFloat64
	if session.MoodBefore != nil {
		moodBefore = sql.NullFloat64{Float64: *session.MoodBefore, Valid: true}
	}
	if session.MoodAfter != nil {
		moodAfter = sql.NullFloat64{Float64: *session.MoodAfter, Valid: true}
	}

	err = r.db.QueryRowContext(ctx, query,
		session.ID,
		session.UserID,
		session.Timestamp,
		session.DurationMinutes,
		session.Quality,
		techniquesJSON,
		moodBefore,
		moodAfter,
		time.Now(),
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// RecentByUserID retrieves up to limit sessions for a user, newest first.
// Short history silently returns fewer rows.
func (r *SessionRepository) RecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.MeditationSession, error) {
	query := `
		SELECT id, user_id, timestamp, duration_minutes, quality, techniques, mood_before, mood_after, created_at
		FROM meditation_sessions
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.MeditationSession
	for rows.Next() {
		var session models.MeditationSession
		var techniquesJSON []byte
		var moodBefore, moodAfter sql.NullFloat64

		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Timestamp,
			&session.DurationMinutes,
			&session.Quality,
			&techniquesJSON,
			&moodBefore,
			&moodAfter,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if err := json.Unmarshal(techniquesJSON, &session.Techniques); err != nil {
			return nil, fmt.Errorf("failed to unmarshal techniques: %w", err)
		}

		if moodBefore.Valid {
			session.MoodBefore = &moodBefore.Float64
		}
		if moodAfter.Valid {
			session.MoodAfter = &moodAfter.Float64
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}
