package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSendMessageHappyPath(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{recall: "- squat 100kg"}
	coach := &fakeCoach{reply: "Nice work!"}
	svc := NewChatService(repo, mem, coach)
	userID := primitive.NewObjectID()

	result, err := svc.SendMessage(context.Background(), userID, "squat 3x5 @ 102.5kg")
	require.NoError(t, err)

	assert.Equal(t, "Nice work!", result.Reply)
	require.Len(t, result.Session.ChatHistory, 2)
	assert.Equal(t, domain.ChatRoleUser, result.Session.ChatHistory[0].Role)
	assert.Equal(t, "squat 3x5 @ 102.5kg", result.Session.ChatHistory[0].Content)
	assert.Equal(t, domain.ChatRoleAssistant, result.Session.ChatHistory[1].Role)

	assert.Equal(t, "- squat 100kg", coach.context)
	assert.Empty(t, coach.history)
	require.Len(t, mem.retained, 1)
	assert.Equal(t, "squat 3x5 @ 102.5kg", mem.retained[0].content)
	assert.False(t, mem.retained[0].plan)
}

func TestSendMessagePassesLastTenPriorTurns(t *testing.T) {
	repo := newFakeSessionRepo()
	userID := primitive.NewObjectID()
	s := domain.NewSession(userID)
	for i := 0; i < 14; i++ {
		s.AppendTurn(domain.ChatRoleUser, fmt.Sprintf("turn %d", i), time.Now())
	}
	repo.sessions[userID] = s
	coach := &fakeCoach{reply: "ok"}
	svc := NewChatService(repo, &fakeMemory{}, coach)

	_, err := svc.SendMessage(context.Background(), userID, "new")
	require.NoError(t, err)

	require.Len(t, coach.history, domain.HistoryWindow)
	assert.Equal(t, "turn 4", coach.history[0].Content)
	assert.Equal(t, "turn 13", coach.history[9].Content)
}

func TestSendMessageCoachFailureKeepsUserTurn(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{}
	svc := NewChatService(repo, mem, &fakeCoach{err: errBoom})
	userID := primitive.NewObjectID()

	result, err := svc.SendMessage(context.Background(), userID, "bench 5x5")
	assert.ErrorIs(t, err, ErrUpstream)
	require.NotNil(t, result)
	assert.Empty(t, result.Reply)

	saved := repo.sessions[userID]
	require.Len(t, saved.ChatHistory, 1)
	assert.Equal(t, "bench 5x5", saved.ChatHistory[0].Content)
	// The log still reaches memory.
	assert.Len(t, mem.retained, 1)
}

func TestSendMessageRecallFailure(t *testing.T) {
	repo := newFakeSessionRepo()
	coach := &fakeCoach{reply: "unused"}
	svc := NewChatService(repo, &fakeMemory{recallErr: errBoom}, coach)

	result, err := svc.SendMessage(context.Background(), primitive.NewObjectID(), "deadlift")
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, result.Session.ChatHistory, 1)
	assert.Empty(t, coach.context)
}

func TestSendMessageRetainFailureIsNotSurfaced(t *testing.T) {
	svc := NewChatService(newFakeSessionRepo(), &fakeMemory{retainErr: errBoom}, &fakeCoach{reply: "ok"})

	result, err := svc.SendMessage(context.Background(), primitive.NewObjectID(), "rows")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Reply)
}

func TestSendMessageEmpty(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewChatService(repo, &fakeMemory{}, &fakeCoach{})

	_, err := svc.SendMessage(context.Background(), primitive.NewObjectID(), " \n ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, repo.saves)
}

func TestSendMessageKeepsPlanAcceptedMeanwhile(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{plan: benchPlan()}
	coach := &fakeCoach{reply: "Good session."}
	svc := NewChatService(repo, mem, coach)
	plans := NewPlanService(repo, mem)
	userID := primitive.NewObjectID()
	coach.onRespond = func() {
		_, err := plans.GeneratePlan(context.Background(), userID, "push")
		require.NoError(t, err)
	}

	_, err := svc.SendMessage(context.Background(), userID, "bench 3x8 @ 80kg")
	require.NoError(t, err)

	saved := repo.sessions[userID]
	require.NotNil(t, saved.ActivePlan)
	assert.Equal(t, "Push Day", saved.ActivePlan.Plan.Title)
	assert.Nil(t, saved.PendingSince)
	require.Len(t, saved.ChatHistory, 2)
	assert.Equal(t, domain.ChatRoleAssistant, saved.ChatHistory[1].Role)
}
