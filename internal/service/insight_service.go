package service

import (
	"context"
	"strings"
)

// QuickQueries are the one-click questions offered on the Insights tab.
var QuickQueries = []string{"Squat progress", "Weekly volume", "Recovery status"}

// InsightService answers free-form questions about the user's history.
type InsightService interface {
	Ask(ctx context.Context, query string) (string, error)
	QuickQueries() []string
}

type insightService struct {
	memory MemoryGateway
}

// NewInsightService creates a new instance of insightService.
func NewInsightService(memory MemoryGateway) InsightService {
	return &insightService{memory: memory}
}

// Ask returns the memory service's answer verbatim.
func (s *insightService) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	answer, err := s.memory.AskInsight(ctx, query)
	if err != nil {
		return "", upstream("insight", err)
	}
	return answer, nil
}

func (s *insightService) QuickQueries() []string {
	out := make([]string, len(QuickQueries))
	copy(out, QuickQueries)
	return out
}
