package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrPlanDecode means the structured payload was not valid JSON.
	ErrPlanDecode = errors.New("plan payload could not be decoded")
	// ErrPlanValidation means the payload decoded but did not match the plan schema.
	ErrPlanValidation = errors.New("plan payload does not match schema")
)

// PlanSchema is the structured-output contract sent with plan reflections.
var PlanSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{"type": "string"},
		"exercises": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":         map[string]any{"type": "string"},
					"sets":         map[string]any{"type": "integer"},
					"reps":         map[string]any{"type": "string"},
					"weight":       map[string]any{"type": "string"},
					"rest_seconds": map[string]any{"type": "integer"},
					"notes":        map[string]any{"type": "string"},
				},
				"required": []any{"name", "sets", "reps", "weight"},
			},
		},
		"notes": map[string]any{"type": "string"},
	},
	"required": []any{"title", "exercises"},
}

var (
	planSchemaOnce sync.Once
	planSchema     *gojsonschema.Schema
	planSchemaErr  error
)

func compiledPlanSchema() (*gojsonschema.Schema, error) {
	planSchemaOnce.Do(func() {
		planSchema, planSchemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(PlanSchema))
	})
	return planSchema, planSchemaErr
}

// DecodePlan turns a reflect structured_output payload into a WorkoutPlan.
// The payload may be a JSON object or a JSON string that encodes one.
func DecodePlan(raw json.RawMessage) (*domain.WorkoutPlan, error) {
	doc := bytes.TrimSpace(raw)
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return nil, fmt.Errorf("%w: empty structured output", ErrPlanDecode)
	}

	if doc[0] == '"' {
		var inner string
		if err := json.Unmarshal(doc, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlanDecode, err)
		}
		doc = []byte(strings.TrimSpace(inner))
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrPlanDecode)
	}

	schema, err := compiledPlanSchema()
	if err != nil {
		return nil, fmt.Errorf("invalid plan schema definition: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanDecode, err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		if len(errs) > 3 {
			errs = append(errs[:3], fmt.Sprintf("and %d more", len(errs)-3))
		}
		return nil, fmt.Errorf("%w: %s", ErrPlanValidation, strings.Join(errs, "; "))
	}

	var payload planPayload
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanValidation, err)
	}
	return payload.toPlan()
}

// planPayload mirrors the schema; pointer fields tell "absent" from zero.
type planPayload struct {
	Title     string `json:"title"`
	Exercises []struct {
		Name        string  `json:"name"`
		Sets        int     `json:"sets"`
		Reps        string  `json:"reps"`
		Weight      string  `json:"weight"`
		RestSeconds *int    `json:"rest_seconds"`
		Notes       *string `json:"notes"`
	} `json:"exercises"`
	Notes *string `json:"notes"`
}

func (p planPayload) toPlan() (*domain.WorkoutPlan, error) {
	plan := domain.WorkoutPlan{Title: p.Title, Exercises: make([]domain.PlannedExercise, 0, len(p.Exercises))}
	if p.Notes != nil {
		plan.Notes = *p.Notes
	}
	for i, ex := range p.Exercises {
		if ex.Sets < 0 {
			return nil, fmt.Errorf("%w: exercise %d has negative sets", ErrPlanValidation, i)
		}
		pe := domain.PlannedExercise{
			Name:        ex.Name,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			Weight:      ex.Weight,
			RestSeconds: domain.DefaultRestSeconds,
		}
		if ex.RestSeconds != nil {
			pe.RestSeconds = *ex.RestSeconds
		}
		if ex.Notes != nil {
			pe.Notes = *ex.Notes
		}
		plan.Exercises = append(plan.Exercises, pe)
	}
	return &plan, nil
}
