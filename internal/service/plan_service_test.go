package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPlanService(repo *fakeSessionRepo, mem *fakeMemory) *planService {
	return NewPlanService(repo, mem).(*planService)
}

func activeSession(repo *fakeSessionRepo, userID primitive.ObjectID) *domain.Session {
	s := domain.NewSession(userID)
	s.AcceptPlan(*benchPlan())
	repo.sessions[userID] = s
	return s
}

func TestGeneratePlanActivatesPlan(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{plan: benchPlan()}
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()

	session, err := svc.GeneratePlan(context.Background(), userID, "  push day ")
	require.NoError(t, err)

	assert.Equal(t, "Generate a push day workout based on my history and strength levels.", mem.planQuery)
	require.NotNil(t, session.ActivePlan)
	assert.Equal(t, "Push Day", session.ActivePlan.Plan.Title)
	assert.Zero(t, session.ActivePlan.CompletedCount())
	assert.Nil(t, session.PendingSince)
	assert.Equal(t, session.ActivePlan, repo.sessions[userID].ActivePlan)
}

func TestGeneratePlanKeepsChatSentMeanwhile(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{plan: benchPlan()}
	chat := NewChatService(repo, mem, &fakeCoach{reply: "Logged."})
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()
	mem.onGenerate = func() {
		_, err := chat.SendMessage(context.Background(), userID, "squat 5x5 @ 100kg")
		require.NoError(t, err)
	}

	_, err := svc.GeneratePlan(context.Background(), userID, "legs")
	require.NoError(t, err)

	saved := repo.sessions[userID]
	require.Len(t, saved.ChatHistory, 2)
	assert.Equal(t, "squat 5x5 @ 100kg", saved.ChatHistory[0].Content)
	require.NotNil(t, saved.ActivePlan)
	assert.Nil(t, saved.PendingSince)
}

func TestGeneratePlanRejectsWhileActiveOrPending(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{plan: benchPlan()}
	svc := newTestPlanService(repo, mem)

	activeUser := primitive.NewObjectID()
	activeSession(repo, activeUser)
	_, err := svc.GeneratePlan(context.Background(), activeUser, "legs")
	assert.ErrorIs(t, err, domain.ErrPlanAlreadyActive)

	pendingUser := primitive.NewObjectID()
	pending := domain.NewSession(pendingUser)
	require.NoError(t, pending.BeginPlanGeneration(time.Now().UTC()))
	repo.sessions[pendingUser] = pending
	_, err = svc.GeneratePlan(context.Background(), pendingUser, "legs")
	assert.ErrorIs(t, err, domain.ErrGenerationPending)

	assert.Empty(t, mem.planQuery)
}

func TestGeneratePlanFailureLeavesNoPlan(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{planErr: errBoom}
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()

	_, err := svc.GeneratePlan(context.Background(), userID, "pull")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, errBoom)

	saved := repo.sessions[userID]
	require.NotNil(t, saved)
	assert.Nil(t, saved.ActivePlan)
	assert.Nil(t, saved.PendingSince)
	assert.Equal(t, domain.PlanStateNone, saved.PlanState(time.Now()))
}

func TestGeneratePlanEmptyQuery(t *testing.T) {
	svc := newTestPlanService(newFakeSessionRepo(), &fakeMemory{})
	_, err := svc.GeneratePlan(context.Background(), primitive.NewObjectID(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestUpdateProgressPartial(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestPlanService(repo, &fakeMemory{})
	userID := primitive.NewObjectID()
	activeSession(repo, userID)

	session, err := svc.UpdateProgress(context.Background(), userID, ProgressUpdate{
		Completed: map[int]bool{0: true},
		Weights:   map[int]string{0: " 85kg "},
	})
	require.NoError(t, err)
	assert.True(t, session.ActivePlan.IsCompleted(0))
	assert.Equal(t, "85kg", session.ActivePlan.WeightFor(0))

	// A second partial update leaves earlier edits alone.
	session, err = svc.UpdateProgress(context.Background(), userID, ProgressUpdate{Completed: map[int]bool{2: true}})
	require.NoError(t, err)
	assert.True(t, session.ActivePlan.IsCompleted(0))
	assert.True(t, session.ActivePlan.IsCompleted(2))
	assert.Equal(t, 2, session.ActivePlan.CompletedCount())
}

func TestUpdateProgressBlankWeightKeepsCurrent(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestPlanService(repo, &fakeMemory{})
	userID := primitive.NewObjectID()
	s := activeSession(repo, userID)
	require.NoError(t, s.ActivePlan.SetWeight(0, "85kg"))

	session, err := svc.UpdateProgress(context.Background(), userID, ProgressUpdate{
		Completed: map[int]bool{0: true, 1: true},
		Weights:   map[int]string{0: "  ", 1: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "85kg", session.ActivePlan.WeightFor(0))
	assert.Equal(t, "bodyweight", session.ActivePlan.WeightFor(1))

	summary, err := session.ActivePlan.Summary()
	require.NoError(t, err)
	assert.Contains(t, summary, "- Bench: 3x8 @ 85kg")
	assert.Contains(t, summary, "- Dips: 3x10 @ bodyweight")
}

func TestUpdateProgressRejectsOutOfRangeWithoutApplying(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestPlanService(repo, &fakeMemory{})
	userID := primitive.NewObjectID()
	s := activeSession(repo, userID)

	_, err := svc.UpdateProgress(context.Background(), userID, ProgressUpdate{
		Completed: map[int]bool{0: true, 3: true},
	})
	assert.ErrorIs(t, err, domain.ErrExerciseIndex)
	assert.False(t, s.ActivePlan.IsCompleted(0))
}

func TestUpdateProgressWithoutPlan(t *testing.T) {
	svc := newTestPlanService(newFakeSessionRepo(), &fakeMemory{})
	_, err := svc.UpdateProgress(context.Background(), primitive.NewObjectID(), ProgressUpdate{})
	assert.ErrorIs(t, err, domain.ErrNoActivePlan)
}

func TestApplyFormUnchecksMissingIndices(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestPlanService(repo, &fakeMemory{})
	userID := primitive.NewObjectID()
	s := activeSession(repo, userID)
	require.NoError(t, s.ActivePlan.SetCompleted(0, true))
	require.NoError(t, s.ActivePlan.SetCompleted(1, true))

	session, err := svc.ApplyForm(context.Background(), userID, map[int]bool{1: true}, map[int]string{2: "14kg"})
	require.NoError(t, err)
	assert.False(t, session.ActivePlan.IsCompleted(0))
	assert.True(t, session.ActivePlan.IsCompleted(1))
	assert.False(t, session.ActivePlan.IsCompleted(2))
	assert.Equal(t, "14kg", session.ActivePlan.WeightFor(2))
}

func TestCompletePlanRetainsSummaryAndClears(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{}
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()
	s := activeSession(repo, userID)
	require.NoError(t, s.ActivePlan.SetCompleted(0, true))
	require.NoError(t, s.ActivePlan.SetWeight(0, "85kg"))
	require.NoError(t, s.ActivePlan.SetCompleted(1, true))

	result, err := svc.CompletePlan(context.Background(), userID)
	require.NoError(t, err)

	want := "Completed workout: Push Day\n- Bench: 3x8 @ 85kg\n- Dips: 3x10 @ bodyweight\nSkipped: Flyes"
	assert.Equal(t, want, result.Summary)
	assert.Equal(t, "Logged 2/3 exercises!", result.Message())
	require.Len(t, mem.retained, 1)
	assert.Equal(t, want, mem.retained[0].content)
	assert.True(t, mem.retained[0].plan)
	assert.Nil(t, repo.sessions[userID].ActivePlan)
}

func TestCompletePlanNothingCompleted(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{}
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()
	activeSession(repo, userID)

	_, err := svc.CompletePlan(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrNothingCompleted)
	assert.Empty(t, mem.retained)
	assert.NotNil(t, repo.sessions[userID].ActivePlan)
}

func TestCompletePlanRetainFailureKeepsPlan(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{retainErr: errBoom}
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()
	s := activeSession(repo, userID)
	require.NoError(t, s.ActivePlan.SetCompleted(0, true))

	_, err := svc.CompletePlan(context.Background(), userID)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotNil(t, repo.sessions[userID].ActivePlan)
}

func TestDiscardPlan(t *testing.T) {
	repo := newFakeSessionRepo()
	mem := &fakeMemory{}
	svc := newTestPlanService(repo, mem)
	userID := primitive.NewObjectID()
	s := activeSession(repo, userID)
	require.NoError(t, s.ActivePlan.SetCompleted(0, true))

	require.NoError(t, svc.DiscardPlan(context.Background(), userID))
	assert.Nil(t, repo.sessions[userID].ActivePlan)
	assert.Empty(t, mem.retained)

	assert.ErrorIs(t, svc.DiscardPlan(context.Background(), userID), domain.ErrNoActivePlan)
}
