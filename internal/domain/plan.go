// internal/domain/plan.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultRestSeconds is used when a generated exercise omits rest_seconds.
const DefaultRestSeconds = 90

var (
	ErrNoActivePlan     = errors.New("no active plan")
	ErrNothingCompleted = errors.New("check off at least one exercise first")
	ErrExerciseIndex    = errors.New("exercise index out of range")
)

// PlannedExercise is one entry of a generated workout plan.
type PlannedExercise struct {
	Name        string `bson:"name" json:"name"`
	Sets        int    `bson:"sets" json:"sets"`
	Reps        string `bson:"reps" json:"reps"`     // May be a range, e.g. "8-12"
	Weight      string `bson:"weight" json:"weight"` // May be qualitative, e.g. "bodyweight"
	RestSeconds int    `bson:"restSeconds" json:"rest_seconds"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutPlan is produced by the memory service and never mutated afterwards.
// Exercise order is the display and indexing order.
type WorkoutPlan struct {
	Title     string            `bson:"title" json:"title"`
	Exercises []PlannedExercise `bson:"exercises" json:"exercises"`
	Notes     string            `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ActivePlan is the plan a session is currently following along with.
// Completed and ActualWeights are keyed by index into Plan.Exercises.
type ActivePlan struct {
	Plan          WorkoutPlan    `bson:"plan" json:"plan"`
	Completed     map[int]bool   `bson:"completed" json:"completed"`
	ActualWeights map[int]string `bson:"actualWeights" json:"actual_weights"`
}

// NewActivePlan wraps a freshly generated plan with no progress recorded.
func NewActivePlan(plan WorkoutPlan) *ActivePlan {
	return &ActivePlan{
		Plan:          plan,
		Completed:     map[int]bool{},
		ActualWeights: map[int]string{},
	}
}

func (a *ActivePlan) checkIndex(i int) error {
	if i < 0 || i >= len(a.Plan.Exercises) {
		return fmt.Errorf("%w: %d (plan has %d exercises)", ErrExerciseIndex, i, len(a.Plan.Exercises))
	}
	return nil
}

// SetCompleted marks exercise i as done or not done.
func (a *ActivePlan) SetCompleted(i int, done bool) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	if a.Completed == nil {
		a.Completed = map[int]bool{}
	}
	a.Completed[i] = done
	return nil
}

// SetWeight records the weight actually used for exercise i.
func (a *ActivePlan) SetWeight(i int, weight string) error {
	if err := a.checkIndex(i); err != nil {
		return err
	}
	if a.ActualWeights == nil {
		a.ActualWeights = map[int]string{}
	}
	a.ActualWeights[i] = weight
	return nil
}

// IsCompleted reports whether exercise i has been checked off.
func (a *ActivePlan) IsCompleted(i int) bool {
	return a.Completed[i]
}

// WeightFor returns the override for exercise i, or the planned weight.
func (a *ActivePlan) WeightFor(i int) string {
	if w, ok := a.ActualWeights[i]; ok {
		return w
	}
	if i >= 0 && i < len(a.Plan.Exercises) {
		return a.Plan.Exercises[i].Weight
	}
	return ""
}

// CompletedCount returns how many exercises are checked off.
func (a *ActivePlan) CompletedCount() int {
	n := 0
	for i := range a.Plan.Exercises {
		if a.Completed[i] {
			n++
		}
	}
	return n
}

// Summary renders the completed plan as the plain-text fact retained in memory.
// It fails with ErrNothingCompleted when no exercise is checked off.
func (a *ActivePlan) Summary() (string, error) {
	if a.CompletedCount() == 0 {
		return "", ErrNothingCompleted
	}

	lines := []string{"Completed workout: " + a.Plan.Title}
	var skipped []string
	for i, ex := range a.Plan.Exercises {
		if !a.Completed[i] {
			skipped = append(skipped, ex.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %dx%s @ %s", ex.Name, ex.Sets, ex.Reps, a.WeightFor(i)))
	}
	if len(skipped) > 0 {
		lines = append(lines, "Skipped: "+strings.Join(skipped, ", "))
	}
	return strings.Join(lines, "\n"), nil
}
