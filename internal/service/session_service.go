package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionService exposes the caller's session for rendering.
type SessionService interface {
	GetSession(ctx context.Context, userID primitive.ObjectID) (*domain.Session, error)
}

// sessionStore loads sessions, creating an empty one on first use.
type sessionStore struct {
	repo repository.SessionRepository
	now  func() time.Time
}

func newSessionStore(repo repository.SessionRepository) sessionStore {
	return sessionStore{repo: repo, now: time.Now}
}

func (s sessionStore) load(ctx context.Context, userID primitive.ObjectID) (*domain.Session, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	session, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// appendTurn adds a turn to the loaded session and persists only the new turn.
func (s sessionStore) appendTurn(ctx context.Context, session *domain.Session, role domain.ChatRole, content string) error {
	session.AppendTurn(role, content, s.now().UTC())
	return s.repo.AppendTurns(ctx, session.UserID, session.ChatHistory[len(session.ChatHistory)-1])
}

// savePlan persists the plan fields without touching the transcript.
func (s sessionStore) savePlan(ctx context.Context, session *domain.Session) error {
	return s.repo.SavePlanState(ctx, session)
}

type sessionService struct {
	store sessionStore
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{store: newSessionStore(sessionRepo)}
}

// GetSession returns the user's session; a fresh one if none was saved yet.
func (s *sessionService) GetSession(ctx context.Context, userID primitive.ObjectID) (*domain.Session, error) {
	return s.store.load(ctx, userID)
}
