package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// SessionRepository persists per-user session state between interactions.
type SessionRepository interface {
	// GetByUserID returns ErrNotFound when the user has no session yet.
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Session, error)
	// AppendTurns pushes turns onto the transcript, creating the session if needed.
	// The plan fields are not touched.
	AppendTurns(ctx context.Context, userID primitive.ObjectID, turns ...domain.ChatTurn) error
	// SavePlanState writes activePlan and pendingSince from session, creating
	// the session if needed. The transcript is not touched.
	SavePlanState(ctx context.Context, session *domain.Session) error
}
