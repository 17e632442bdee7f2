package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/queue"
)

type mockMoodRepo struct {
	created []*models.MoodEntry
	entries []models.MoodEntry
	err     error
}

func (m *mockMoodRepo) Create(_ context.Context, entry *models.MoodEntry) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, entry)
	return nil
}

func (m *mockMoodRepo) RecentByUserID(_ context.Context, _ uuid.UUID, _ int) ([]models.MoodEntry, error) {
	return m.entries, m.err
}

func validMoodRequest() CreateMoodEntryRequest {
	return CreateMoodEntryRequest{
		Overall:   3.5,
		Energy:    3,
		Anxiety:   2,
		Happiness: 4,
		Stress:    2.5,
		Focus:     3,
	}
}

func TestMoodHandler_CreateMoodEntry(t *testing.T) {
	t.Parallel()
	repo := &mockMoodRepo{}
	q := &mockHandlerQueue{}
	handler := NewMoodHandler(repo, q, zap.NewNop())
	user := testUser()

	body, _ := json.Marshal(validMoodRequest())
	rr := httptest.NewRecorder()
	handler.CreateMoodEntry(rr, requestWithUser(http.MethodPost, "/api/v1/moods", body, user))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 entry created, got %d", len(repo.created))
	}
	if repo.created[0].UserID != user.ID {
		t.Errorf("expected entry for user %s", user.ID)
	}

	// A check-in triggers both pattern monitors
	if len(q.enqueued) != 2 {
		t.Fatalf("expected 2 jobs enqueued, got %d", len(q.enqueued))
	}
	types := map[queue.JobType]bool{}
	for _, job := range q.enqueued {
		types[job.Type] = true
	}
	if !types[queue.JobTypeMonitorStress] || !types[queue.JobTypeMonitorMood] {
		t.Errorf("expected monitor_stress and monitor_mood jobs, got %v", types)
	}
}

func TestMoodHandler_CreateMoodEntry_Validation(t *testing.T) {
	t.Parallel()
	handler := NewMoodHandler(&mockMoodRepo{}, &mockHandlerQueue{}, zap.NewNop())
	user := testUser()

	tests := []struct {
		name   string
		mutate func(*CreateMoodEntryRequest)
	}{
		{"overall too low", func(r *CreateMoodEntryRequest) { r.Overall = 0.5 }},
		{"stress too high", func(r *CreateMoodEntryRequest) { r.Stress = 5.5 }},
		{"energy zero", func(r *CreateMoodEntryRequest) { r.Energy = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validMoodRequest()
			tt.mutate(&req)
			body, _ := json.Marshal(req)
			rr := httptest.NewRecorder()
			handler.CreateMoodEntry(rr, requestWithUser(http.MethodPost, "/api/v1/moods", body, user))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestMoodHandler_ListMoodEntries_Unauthorized(t *testing.T) {
	t.Parallel()
	handler := NewMoodHandler(&mockMoodRepo{}, &mockHandlerQueue{}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ListMoodEntries(rr, requestWithUser(http.MethodGet, "/api/v1/moods", nil, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}
