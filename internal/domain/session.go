package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanState is the position of a session in the follow-along workflow.
type PlanState string

const (
	PlanStateNone    PlanState = "no_plan"
	PlanStatePending PlanState = "pending_generation"
	PlanStateActive  PlanState = "active"
)

// PendingGenerationTimeout bounds how long a generation request blocks another.
// A flag older than this is left over from a request that never finished.
const PendingGenerationTimeout = 2 * time.Minute

var (
	ErrPlanAlreadyActive = errors.New("a workout plan is already active")
	ErrGenerationPending = errors.New("a workout plan is already being generated")
)

// Session is the per-user state carried between interactions:
// the Log tab transcript and the Plan tab workflow.
type Session struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ChatHistory []ChatTurn         `bson:"chatHistory" json:"chatHistory"`
	ActivePlan  *ActivePlan        `bson:"activePlan,omitempty" json:"activePlan,omitempty"`
	// PendingSince is set while a plan generation request is in flight.
	PendingSince *time.Time `bson:"pendingSince,omitempty" json:"pendingSince,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// NewSession returns an empty session for the given user.
func NewSession(userID primitive.ObjectID) *Session {
	return &Session{
		UserID:      userID,
		ChatHistory: []ChatTurn{},
	}
}

// PlanState derives the workflow state at time now.
func (s *Session) PlanState(now time.Time) PlanState {
	if s.ActivePlan != nil {
		return PlanStateActive
	}
	if s.PendingSince != nil && now.Sub(*s.PendingSince) < PendingGenerationTimeout {
		return PlanStatePending
	}
	return PlanStateNone
}

// AppendTurn adds a turn to the transcript.
func (s *Session) AppendTurn(role ChatRole, content string, at time.Time) {
	s.ChatHistory = append(s.ChatHistory, ChatTurn{Role: role, Content: content, CreatedAt: at})
}

// BeginPlanGeneration moves NoPlan -> PendingGeneration.
func (s *Session) BeginPlanGeneration(now time.Time) error {
	switch s.PlanState(now) {
	case PlanStateActive:
		return ErrPlanAlreadyActive
	case PlanStatePending:
		return ErrGenerationPending
	}
	t := now
	s.PendingSince = &t
	return nil
}

// AcceptPlan moves PendingGeneration -> ActivePlan.
func (s *Session) AcceptPlan(plan WorkoutPlan) {
	s.PendingSince = nil
	s.ActivePlan = NewActivePlan(plan)
}

// AbortPlanGeneration moves PendingGeneration back to NoPlan after a failure.
func (s *Session) AbortPlanGeneration() {
	s.PendingSince = nil
}

// DiscardPlan moves ActivePlan -> NoPlan without side effects.
func (s *Session) DiscardPlan() error {
	if s.ActivePlan == nil {
		return ErrNoActivePlan
	}
	s.ActivePlan = nil
	return nil
}

// ClearCompletedPlan drops the active plan once its summary has been retained.
func (s *Session) ClearCompletedPlan() {
	s.ActivePlan = nil
}
