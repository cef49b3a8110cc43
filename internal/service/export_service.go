package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrExportDisabled  = errors.New("transcript export is not configured")
	ErrNothingToExport = errors.New("chat history is empty")
)

// Export points at an uploaded transcript.
type Export struct {
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService writes the Log tab transcript to object storage.
type ExportService interface {
	ExportHistory(ctx context.Context, userID primitive.ObjectID) (*Export, error)
}

type exportService struct {
	store      sessionStore
	fileStore  storage.FileStorage
	linkExpiry time.Duration
}

// NewExportService creates a new instance of exportService. A nil fileStore
// makes every export fail with ErrExportDisabled.
func NewExportService(sessionRepo repository.SessionRepository, fileStore storage.FileStorage) ExportService {
	return &exportService{
		store:      newSessionStore(sessionRepo),
		fileStore:  fileStore,
		linkExpiry: storage.DefaultPresignedURLExpiry,
	}
}

func (s *exportService) ExportHistory(ctx context.Context, userID primitive.ObjectID) (*Export, error) {
	if s.fileStore == nil {
		return nil, ErrExportDisabled
	}
	session, err := s.store.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(session.ChatHistory) == 0 {
		return nil, ErrNothingToExport
	}

	now := s.store.now().UTC()
	objectKey := fmt.Sprintf("exports/%s/%s.md", userID.Hex(), uuid.NewString())
	body := []byte(RenderTranscript(session.ChatHistory, now))

	if err := s.fileStore.PutObject(ctx, objectKey, "text/markdown; charset=utf-8", body); err != nil {
		log.Printf("ERROR: Failed to upload transcript %s: %v", objectKey, err)
		return nil, fmt.Errorf("failed to upload transcript: %w", err)
	}

	url, err := s.fileStore.GeneratePresignedDownloadURL(ctx, objectKey, s.linkExpiry)
	if err != nil {
		log.Printf("ERROR: Failed to presign transcript %s: %v", objectKey, err)
		// Don't leave an unreachable object behind
		if delErr := s.fileStore.DeleteObject(ctx, objectKey); delErr != nil {
			log.Printf("WARN: Failed to delete orphaned transcript %s: %v", objectKey, delErr)
		}
		return nil, fmt.Errorf("failed to create download link: %w", err)
	}

	log.Printf("INFO: Exported %d turns for user %s to %s", len(session.ChatHistory), userID.Hex(), objectKey)
	return &Export{ObjectKey: objectKey, URL: url, ExpiresAt: now.Add(s.linkExpiry)}, nil
}

// RenderTranscript formats the chat history as markdown.
func RenderTranscript(history []domain.ChatTurn, exportedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# Workout log\n\n")
	fmt.Fprintf(&b, "Exported %s\n", exportedAt.Format(time.RFC3339))
	for _, turn := range history {
		who := "You"
		if turn.Role == domain.ChatRoleAssistant {
			who = "Coach"
		}
		fmt.Fprintf(&b, "\n**%s**", who)
		if !turn.CreatedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", turn.CreatedAt.UTC().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(&b, "\n\n%s\n", turn.Content)
	}
	return b.String()
}
