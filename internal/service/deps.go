package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"errors"
	"fmt"
)

// ErrUpstream marks failures of the memory service or the model provider.
// They are surfaced once; nothing is retried.
var ErrUpstream = errors.New("upstream service failed")

// MemoryGateway is the part of memory.Gateway the services rely on.
type MemoryGateway interface {
	LogWorkout(ctx context.Context, content string) error
	SaveCompletedPlan(ctx context.Context, summary string) error
	RecallContext(ctx context.Context, query string) (string, error)
	GeneratePlan(ctx context.Context, query string) (*domain.WorkoutPlan, error)
	AskInsight(ctx context.Context, query string) (string, error)
}

// Coach produces one assistant reply per user turn.
type Coach interface {
	Respond(ctx context.Context, userMessage, memoryContext string, history []domain.ChatTurn) (string, error)
}

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
