package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/middleware"
	"github.com/stillmind/wellbeing-api/internal/models"
	"github.com/stillmind/wellbeing-api/internal/queue"
)

type mockSessionRepo struct {
	created  []*models.MeditationSession
	sessions []models.MeditationSession
	err      error
}

func (m *mockSessionRepo) Create(_ context.Context, session *models.MeditationSession) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, session)
	return nil
}

func (m *mockSessionRepo) RecentByUserID(_ context.Context, _ uuid.UUID, _ int) ([]models.MeditationSession, error) {
	return m.sessions, m.err
}

type mockHandlerQueue struct {
	enqueued []*queue.Job
	err      error
}

func (m *mockHandlerQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockHandlerQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockHandlerQueue) Close() error                      { return nil }
func (m *mockHandlerQueue) HealthCheck(context.Context) error { return nil }

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "test@example.com"}
}

func requestWithUser(method, target string, body []byte, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if user != nil {
		req = req.WithContext(middleware.SetUserInContext(req.Context(), user))
	}
	return req
}

func TestSessionHandler_CreateSession(t *testing.T) {
	t.Parallel()
	repo := &mockSessionRepo{}
	q := &mockHandlerQueue{}
	handler := NewSessionHandler(repo, q, zap.NewNop())
	user := testUser()

	before, after := 2.5, 4.0
	body, _ := json.Marshal(CreateSessionRequest{
		DurationMinutes: 15,
		Quality:         4,
		Techniques:      []string{"mindfulness", "  body scan "},
		MoodBefore:      &before,
		MoodAfter:       &after,
	})

	rr := httptest.NewRecorder()
	handler.CreateSession(rr, requestWithUser(http.MethodPost, "/api/v1/sessions", body, user))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 session created, got %d", len(repo.created))
	}
	session := repo.created[0]
	if session.UserID != user.ID {
		t.Errorf("expected session for user %s, got %s", user.ID, session.UserID)
	}
	if len(session.Techniques) != 2 || session.Techniques[1] != "body scan" {
		t.Errorf("expected sanitized techniques, got %v", session.Techniques)
	}

	// A new session queues time analysis and schedule evaluation
	if len(q.enqueued) != 2 {
		t.Fatalf("expected 2 jobs enqueued, got %d", len(q.enqueued))
	}
	types := map[queue.JobType]bool{}
	for _, job := range q.enqueued {
		types[job.Type] = true
	}
	if !types[queue.JobTypeAnalyzeTimes] || !types[queue.JobTypeAdaptSchedule] {
		t.Errorf("expected analyze_times and adapt_schedule jobs, got %v", types)
	}
}

func TestSessionHandler_CreateSession_Validation(t *testing.T) {
	t.Parallel()
	handler := NewSessionHandler(&mockSessionRepo{}, &mockHandlerQueue{}, zap.NewNop())
	user := testUser()

	badMood := 7.0
	tests := []struct {
		name string
		req  CreateSessionRequest
	}{
		{"zero duration", CreateSessionRequest{DurationMinutes: 0, Quality: 3}},
		{"excessive duration", CreateSessionRequest{DurationMinutes: 999, Quality: 3}},
		{"quality too low", CreateSessionRequest{DurationMinutes: 10, Quality: 0}},
		{"quality too high", CreateSessionRequest{DurationMinutes: 10, Quality: 6}},
		{"mood out of range", CreateSessionRequest{DurationMinutes: 10, Quality: 3, MoodBefore: &badMood}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body, _ := json.Marshal(tt.req)
			rr := httptest.NewRecorder()
			handler.CreateSession(rr, requestWithUser(http.MethodPost, "/api/v1/sessions", body, user))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestSessionHandler_CreateSession_Unauthorized(t *testing.T) {
	t.Parallel()
	handler := NewSessionHandler(&mockSessionRepo{}, &mockHandlerQueue{}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.CreateSession(rr, requestWithUser(http.MethodPost, "/api/v1/sessions", []byte(`{}`), nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestSessionHandler_CreateSession_QueueFailureStillSucceeds(t *testing.T) {
	t.Parallel()
	repo := &mockSessionRepo{}
	q := &mockHandlerQueue{err: errors.New("broker down")}
	handler := NewSessionHandler(repo, q, zap.NewNop())

	body, _ := json.Marshal(CreateSessionRequest{DurationMinutes: 10, Quality: 4})
	rr := httptest.NewRecorder()
	handler.CreateSession(rr, requestWithUser(http.MethodPost, "/api/v1/sessions", body, testUser()))

	// Queueing is best-effort; the session itself is persisted
	if rr.Code != http.StatusCreated {
		t.Errorf("expected 201 despite queue failure, got %d", rr.Code)
	}
	if len(repo.created) != 1 {
		t.Errorf("expected session persisted, got %d", len(repo.created))
	}
}

func TestSessionHandler_ListSessions(t *testing.T) {
	t.Parallel()
	repo := &mockSessionRepo{sessions: []models.MeditationSession{
		{ID: uuid.New(), Timestamp: time.Now(), DurationMinutes: 10, Quality: 4},
	}}
	handler := NewSessionHandler(repo, &mockHandlerQueue{}, zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ListSessions(rr, requestWithUser(http.MethodGet, "/api/v1/sessions?limit=10", nil, testUser()))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
