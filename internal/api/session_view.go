package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"time"
)

// ExerciseResponse is one plan row with its follow-along progress.
type ExerciseResponse struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Sets          int    `json:"sets"`
	Reps          string `json:"reps"`
	PlannedWeight string `json:"plannedWeight"`
	Weight        string `json:"weight"`
	RestSeconds   int    `json:"restSeconds"`
	Notes         string `json:"notes,omitempty"`
	Done          bool   `json:"done"`
}

type PlanResponse struct {
	Title     string             `json:"title"`
	Notes     string             `json:"notes,omitempty"`
	Exercises []ExerciseResponse `json:"exercises"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
}

type ChatTurnResponse struct {
	Role      domain.ChatRole `json:"role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

type SessionResponse struct {
	State       domain.PlanState   `json:"state"`
	ChatHistory []ChatTurnResponse `json:"chatHistory"`
	ActivePlan  *PlanResponse      `json:"activePlan,omitempty"`
}

// MapPlanToResponse flattens an active plan into display rows, in plan order.
func MapPlanToResponse(ap *domain.ActivePlan) *PlanResponse {
	if ap == nil {
		return nil
	}
	resp := &PlanResponse{
		Title:     ap.Plan.Title,
		Notes:     ap.Plan.Notes,
		Exercises: make([]ExerciseResponse, len(ap.Plan.Exercises)),
		Completed: ap.CompletedCount(),
		Total:     len(ap.Plan.Exercises),
	}
	for i, ex := range ap.Plan.Exercises {
		resp.Exercises[i] = ExerciseResponse{
			Index:         i,
			Name:          ex.Name,
			Sets:          ex.Sets,
			Reps:          ex.Reps,
			PlannedWeight: ex.Weight,
			Weight:        ap.WeightFor(i),
			RestSeconds:   ex.RestSeconds,
			Notes:         ex.Notes,
			Done:          ap.IsCompleted(i),
		}
	}
	return resp
}

// MapSessionToResponse converts a session to its API shape at time now.
func MapSessionToResponse(s *domain.Session, now time.Time) SessionResponse {
	resp := SessionResponse{
		State:       s.PlanState(now),
		ChatHistory: make([]ChatTurnResponse, len(s.ChatHistory)),
		ActivePlan:  MapPlanToResponse(s.ActivePlan),
	}
	for i, turn := range s.ChatHistory {
		resp.ChatHistory[i] = ChatTurnResponse{Role: turn.Role, Content: turn.Content, CreatedAt: turn.CreatedAt}
	}
	return resp
}
