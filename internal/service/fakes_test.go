package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeSessionRepo mirrors the mongo repository's field-level writes:
// reads return copies, AppendTurns only touches the transcript and
// SavePlanState only touches the plan fields.
type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.Session
	saves    int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[primitive.ObjectID]*domain.Session{}}
}

func (r *fakeSessionRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Session, error) {
	s, ok := r.sessions[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *fakeSessionRepo) AppendTurns(_ context.Context, userID primitive.ObjectID, turns ...domain.ChatTurn) error {
	r.saves++
	s := r.stored(userID)
	s.ChatHistory = append(s.ChatHistory, turns...)
	return nil
}

func (r *fakeSessionRepo) SavePlanState(_ context.Context, session *domain.Session) error {
	r.saves++
	s := r.stored(session.UserID)
	c := cloneSession(session)
	s.ActivePlan, s.PendingSince = c.ActivePlan, c.PendingSince
	return nil
}

func (r *fakeSessionRepo) stored(userID primitive.ObjectID) *domain.Session {
	s, ok := r.sessions[userID]
	if !ok {
		s = domain.NewSession(userID)
		r.sessions[userID] = s
	}
	return s
}

func cloneSession(s *domain.Session) *domain.Session {
	c := *s
	c.ChatHistory = append([]domain.ChatTurn{}, s.ChatHistory...)
	if s.PendingSince != nil {
		t := *s.PendingSince
		c.PendingSince = &t
	}
	if s.ActivePlan != nil {
		ap := *s.ActivePlan
		ap.Plan.Exercises = append([]domain.PlannedExercise{}, s.ActivePlan.Plan.Exercises...)
		ap.Completed = map[int]bool{}
		for k, v := range s.ActivePlan.Completed {
			ap.Completed[k] = v
		}
		ap.ActualWeights = map[int]string{}
		for k, v := range s.ActivePlan.ActualWeights {
			ap.ActualWeights[k] = v
		}
		c.ActivePlan = &ap
	}
	return &c
}

type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	u := *user
	u.ID = primitive.NewObjectID()
	r.byEmail[u.Email] = &u
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type retained struct {
	content string
	plan    bool
}

type fakeMemory struct {
	retained   []retained
	retainErr  error
	recall     string
	recallErr  error
	plan       *domain.WorkoutPlan
	planErr    error
	planQuery  string
	insight    string
	insightErr error
	// onGenerate runs while the plan request is in flight.
	onGenerate func()
}

func (m *fakeMemory) LogWorkout(_ context.Context, content string) error {
	if m.retainErr != nil {
		return m.retainErr
	}
	m.retained = append(m.retained, retained{content: content})
	return nil
}

func (m *fakeMemory) SaveCompletedPlan(_ context.Context, summary string) error {
	if m.retainErr != nil {
		return m.retainErr
	}
	m.retained = append(m.retained, retained{content: summary, plan: true})
	return nil
}

func (m *fakeMemory) RecallContext(context.Context, string) (string, error) {
	return m.recall, m.recallErr
}

func (m *fakeMemory) GeneratePlan(_ context.Context, query string) (*domain.WorkoutPlan, error) {
	m.planQuery = query
	if m.onGenerate != nil {
		m.onGenerate()
	}
	return m.plan, m.planErr
}

func (m *fakeMemory) AskInsight(context.Context, string) (string, error) {
	return m.insight, m.insightErr
}

type fakeCoach struct {
	reply   string
	err     error
	context string
	history []domain.ChatTurn
	// onRespond runs while the reply is being generated.
	onRespond func()
}

func (c *fakeCoach) Respond(_ context.Context, _ string, memoryContext string, history []domain.ChatTurn) (string, error) {
	c.context = memoryContext
	c.history = history
	if c.onRespond != nil {
		c.onRespond()
	}
	return c.reply, c.err
}

type fakeStorage struct {
	objects    map[string][]byte
	presignErr error
	deleted    []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	s.objects[key] = body
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://bucket.example/" + key + "?sig=1", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

var errBoom = errors.New("boom")

func benchPlan() *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		Title: "Push Day",
		Exercises: []domain.PlannedExercise{
			{Name: "Bench", Sets: 3, Reps: "8", Weight: "80kg", RestSeconds: 90},
			{Name: "Dips", Sets: 3, Reps: "10", Weight: "bodyweight", RestSeconds: 60},
			{Name: "Flyes", Sets: 3, Reps: "12", Weight: "12kg", RestSeconds: 60},
		},
	}
}
