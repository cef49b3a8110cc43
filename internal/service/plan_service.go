package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const planRequestTemplate = "Generate a %s workout based on my history and strength levels."

var ErrEmptyQuery = errors.New("query cannot be empty")

// ProgressUpdate carries checkbox and weight edits keyed by exercise index.
// Absent indices and blank weights are left as they are.
type ProgressUpdate struct {
	Completed map[int]bool   `json:"completed"`
	Weights   map[int]string `json:"weights"`
}

// CompletionResult describes a plan that was logged and cleared.
type CompletionResult struct {
	Summary   string `json:"summary"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Message is the confirmation shown after completing a plan.
func (r *CompletionResult) Message() string {
	return fmt.Sprintf("Logged %d/%d exercises!", r.Completed, r.Total)
}

// PlanService drives the Plan tab follow-along workflow.
type PlanService interface {
	GeneratePlan(ctx context.Context, userID primitive.ObjectID, query string) (*domain.Session, error)
	UpdateProgress(ctx context.Context, userID primitive.ObjectID, update ProgressUpdate) (*domain.Session, error)
	ApplyForm(ctx context.Context, userID primitive.ObjectID, checked map[int]bool, weights map[int]string) (*domain.Session, error)
	CompletePlan(ctx context.Context, userID primitive.ObjectID) (*CompletionResult, error)
	DiscardPlan(ctx context.Context, userID primitive.ObjectID) error
}

type planService struct {
	store  sessionStore
	memory MemoryGateway
}

// NewPlanService creates a new instance of planService.
func NewPlanService(sessionRepo repository.SessionRepository, memory MemoryGateway) PlanService {
	return &planService{
		store:  newSessionStore(sessionRepo),
		memory: memory,
	}
}

// GeneratePlan asks the memory bank for a plan of the requested kind and makes
// it the session's active plan. No partial plan is kept on failure.
func (s *planService) GeneratePlan(ctx context.Context, userID primitive.ObjectID, query string) (*domain.Session, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	session, err := s.store.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := session.BeginPlanGeneration(s.store.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.store.savePlan(ctx, session); err != nil {
		return nil, err
	}

	plan, err := s.memory.GeneratePlan(ctx, fmt.Sprintf(planRequestTemplate, query))
	if err != nil {
		session.AbortPlanGeneration()
		if saveErr := s.store.savePlan(ctx, session); saveErr != nil {
			log.Printf("ERROR: Failed to clear pending generation for user %s: %v", userID.Hex(), saveErr)
		}
		return nil, upstream("generate plan", err)
	}

	session.AcceptPlan(*plan)
	if err := s.store.savePlan(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateProgress applies partial edits. Every index is checked before any
// edit is applied, so an invalid index leaves the plan untouched.
func (s *planService) UpdateProgress(ctx context.Context, userID primitive.ObjectID, update ProgressUpdate) (*domain.Session, error) {
	return s.mutate(ctx, userID, func(ap *domain.ActivePlan) error {
		for i := range update.Completed {
			if err := checkIndex(ap, i); err != nil {
				return err
			}
		}
		for i := range update.Weights {
			if err := checkIndex(ap, i); err != nil {
				return err
			}
		}
		for i, done := range update.Completed {
			_ = ap.SetCompleted(i, done)
		}
		setWeights(ap, update.Weights)
		return nil
	})
}

// ApplyForm applies a whole Plan tab form: indices missing from checked are
// marked not done, weights replace the overrides they name.
func (s *planService) ApplyForm(ctx context.Context, userID primitive.ObjectID, checked map[int]bool, weights map[int]string) (*domain.Session, error) {
	return s.mutate(ctx, userID, func(ap *domain.ActivePlan) error {
		for i := range checked {
			if err := checkIndex(ap, i); err != nil {
				return err
			}
		}
		for i := range weights {
			if err := checkIndex(ap, i); err != nil {
				return err
			}
		}
		for i := range ap.Plan.Exercises {
			_ = ap.SetCompleted(i, checked[i])
		}
		setWeights(ap, weights)
		return nil
	})
}

func (s *planService) mutate(ctx context.Context, userID primitive.ObjectID, fn func(*domain.ActivePlan) error) (*domain.Session, error) {
	session, err := s.store.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.ActivePlan == nil {
		return nil, domain.ErrNoActivePlan
	}
	if err := fn(session.ActivePlan); err != nil {
		return nil, err
	}
	if err := s.store.savePlan(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// setWeights records weight overrides. A blank weight keeps the current value.
func setWeights(ap *domain.ActivePlan, weights map[int]string) {
	for i, w := range weights {
		if w = strings.TrimSpace(w); w != "" {
			_ = ap.SetWeight(i, w)
		}
	}
}

func checkIndex(ap *domain.ActivePlan, i int) error {
	if i < 0 || i >= len(ap.Plan.Exercises) {
		return fmt.Errorf("%w: %d", domain.ErrExerciseIndex, i)
	}
	return nil
}

// CompletePlan retains the summary of the checked-off exercises and clears
// the plan. With nothing checked off it returns domain.ErrNothingCompleted
// and changes nothing.
func (s *planService) CompletePlan(ctx context.Context, userID primitive.ObjectID) (*CompletionResult, error) {
	session, err := s.store.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	ap := session.ActivePlan
	if ap == nil {
		return nil, domain.ErrNoActivePlan
	}

	summary, err := ap.Summary()
	if err != nil {
		return nil, err
	}
	if err := s.memory.SaveCompletedPlan(ctx, summary); err != nil {
		return nil, upstream("save completed plan", err)
	}

	result := &CompletionResult{
		Summary:   summary,
		Completed: ap.CompletedCount(),
		Total:     len(ap.Plan.Exercises),
	}
	session.ClearCompletedPlan()
	if err := s.store.savePlan(ctx, session); err != nil {
		return nil, err
	}
	log.Printf("INFO: User %s completed '%s' (%d/%d)", userID.Hex(), ap.Plan.Title, result.Completed, result.Total)
	return result, nil
}

// DiscardPlan drops the active plan without logging anything.
func (s *planService) DiscardPlan(ctx context.Context, userID primitive.ObjectID) error {
	session, err := s.store.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := session.DiscardPlan(); err != nil {
		return err
	}
	return s.store.savePlan(ctx, session)
}
