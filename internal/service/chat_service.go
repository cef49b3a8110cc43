package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

// ChatResult is the state after one Log tab turn.
// Reply is empty when the coach could not answer.
type ChatResult struct {
	Session *domain.Session
	Reply   string
}

// ChatService drives the Log tab conversation.
type ChatService interface {
	SendMessage(ctx context.Context, userID primitive.ObjectID, text string) (*ChatResult, error)
}

type chatService struct {
	store  sessionStore
	memory MemoryGateway
	coach  Coach
}

// NewChatService creates a new instance of chatService.
func NewChatService(sessionRepo repository.SessionRepository, memory MemoryGateway, coach Coach) ChatService {
	return &chatService{
		store:  newSessionStore(sessionRepo),
		memory: memory,
		coach:  coach,
	}
}

// SendMessage records the user's turn, asks the coach with recalled context,
// and logs the raw text into memory as a workout entry.
//
// On a recall or coach failure the user's turn stays in history and the
// error is returned together with the result so it can be shown inline.
func (s *chatService) SendMessage(ctx context.Context, userID primitive.ObjectID, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.store.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The coach sees the turns before this one; the new message is sent separately.
	history := domain.LastTurns(session.ChatHistory, domain.HistoryWindow)
	if err := s.store.appendTurn(ctx, session, domain.ChatRoleUser, text); err != nil {
		return nil, err
	}

	result := &ChatResult{Session: session}
	reply, replyErr := s.reply(ctx, text, history)

	if err := s.memory.LogWorkout(ctx, text); err != nil {
		log.Printf("WARN: Failed to retain workout log for user %s: %v", userID.Hex(), err)
	}

	if replyErr != nil {
		log.Printf("ERROR: Coach reply failed for user %s: %v", userID.Hex(), replyErr)
		return result, replyErr
	}

	if err := s.store.appendTurn(ctx, session, domain.ChatRoleAssistant, reply); err != nil {
		return nil, err
	}
	result.Reply = reply
	return result, nil
}

func (s *chatService) reply(ctx context.Context, text string, history []domain.ChatTurn) (string, error) {
	memoryContext, err := s.memory.RecallContext(ctx, text)
	if err != nil {
		return "", upstream("recall", err)
	}
	reply, err := s.coach.Respond(ctx, text, memoryContext, history)
	if err != nil {
		return "", upstream("coach", err)
	}
	return reply, nil
}
