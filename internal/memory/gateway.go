// Package memory is the workout tracker's façade over the Hindsight memory bank.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/hindsight"
)

const (
	BankName = "Workout Tracker"

	TagWorkout = "workout"
	TagPlan    = "plan"
)

// BankMission tells the memory service which facts are worth preserving.
const BankMission = `Track weightlifting workouts: exercises, sets, reps, weights,
RPE, personal records, muscle groups trained, energy levels, soreness, recovery
notes, training preferences (split type, favorite lifts), and strength goals.
Always preserve specific numbers (weights, sets, reps) and associate them with
exercise names and dates.`

// ErrConnection means the memory service could not be reached.
var ErrConnection = errors.New("could not connect to memory service")

// Client is the subset of the Hindsight API the gateway needs.
type Client interface {
	CreateBank(ctx context.Context, bankID, name, mission string) error
	Retain(ctx context.Context, bankID, content string, tags []string) error
	Recall(ctx context.Context, bankID, query string, budget hindsight.Budget, tags []string) (*hindsight.RecallResponse, error)
	Reflect(ctx context.Context, bankID string, req hindsight.ReflectRequest) (*hindsight.ReflectResponse, error)
}

// Gateway is constructed once by the application root and passed to services.
type Gateway struct {
	client Client
	bankID string
}

// NewGateway binds a client to a bank id.
func NewGateway(client Client, bankID string) *Gateway {
	return &Gateway{client: client, bankID: bankID}
}

// BankID returns the bank this gateway reads and writes.
func (g *Gateway) BankID() string { return g.bankID }

// Init ensures the bank exists with the workout mission. Safe to call again.
func (g *Gateway) Init(ctx context.Context) error {
	if err := g.client.CreateBank(ctx, g.bankID, BankName, BankMission); err != nil {
		if hindsight.IsUnreachable(err) {
			return fmt.Errorf("%w: %v", ErrConnection, err)
		}
		return fmt.Errorf("create bank %q: %w", g.bankID, err)
	}
	log.Printf("INFO: Memory bank '%s' ready", g.bankID)
	return nil
}

// LogWorkout retains raw user text as a workout log entry.
func (g *Gateway) LogWorkout(ctx context.Context, content string) error {
	return g.retain(ctx, content, TagWorkout)
}

// SaveCompletedPlan retains a completed-plan summary.
func (g *Gateway) SaveCompletedPlan(ctx context.Context, summary string) error {
	return g.retain(ctx, summary, TagWorkout, TagPlan)
}

func (g *Gateway) retain(ctx context.Context, content string, tags ...string) error {
	if err := g.client.Retain(ctx, g.bankID, content, tags); err != nil {
		return g.wrap("retain", err)
	}
	return nil
}

// RecallContext returns relevant prior facts as bulleted lines, or "" when
// there are none. The service's ranking order is preserved.
func (g *Gateway) RecallContext(ctx context.Context, query string) (string, error) {
	resp, err := g.client.Recall(ctx, g.bankID, query, hindsight.BudgetLow, []string{TagWorkout})
	if err != nil {
		return "", g.wrap("recall", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	lines := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		lines = append(lines, "- "+r.Text)
	}
	return strings.Join(lines, "\n"), nil
}

// GeneratePlan asks the bank for a schema-constrained workout plan.
func (g *Gateway) GeneratePlan(ctx context.Context, query string) (*domain.WorkoutPlan, error) {
	resp, err := g.client.Reflect(ctx, g.bankID, hindsight.ReflectRequest{
		Query:          query,
		Budget:         hindsight.BudgetMid,
		Tags:           []string{TagWorkout},
		ResponseSchema: PlanSchema,
	})
	if err != nil {
		return nil, g.wrap("reflect", err)
	}
	return DecodePlan(resp.StructuredOutput)
}

// AskInsight returns the bank's free-text answer verbatim.
func (g *Gateway) AskInsight(ctx context.Context, query string) (string, error) {
	resp, err := g.client.Reflect(ctx, g.bankID, hindsight.ReflectRequest{
		Query:  query,
		Budget: hindsight.BudgetMid,
		Tags:   []string{TagWorkout},
	})
	if err != nil {
		return "", g.wrap("reflect", err)
	}
	return resp.AnswerText(), nil
}

func (g *Gateway) wrap(op string, err error) error {
	if hindsight.IsUnreachable(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrConnection, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
