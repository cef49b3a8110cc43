package api

import (
	"alcyxob/workout-tracker/internal/coach"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/memory"
	"alcyxob/workout-tracker/internal/service"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusForError maps service and domain errors to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrExerciseIndex):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoActivePlan),
		errors.Is(err, service.ErrNothingToExport):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPlanAlreadyActive),
		errors.Is(err, domain.ErrGenerationPending),
		errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNothingCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrExportDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// userMessage is what the caller gets to see for err.
func userMessage(err error) string {
	var providerErr *coach.ProviderError
	switch {
	case errors.As(err, &providerErr):
		return "Coach unavailable: " + providerErr.Message
	case errors.Is(err, memory.ErrConnection):
		return "Cannot reach the memory service. Is it running?"
	case errors.Is(err, memory.ErrPlanDecode), errors.Is(err, memory.ErrPlanValidation):
		return "Failed to generate plan: " + err.Error()
	case statusForError(err) == http.StatusInternalServerError:
		return "An unexpected error occurred"
	}
	return err.Error()
}

// respondWithError logs unexpected failures and aborts with the mapped status.
func respondWithError(c *gin.Context, op string, err error) {
	code := statusForError(err)
	if code >= http.StatusInternalServerError {
		log.Printf("ERROR: %s failed (request %s): %v", op, c.GetString(ContextRequestIDKey), err)
	}
	abortWithError(c, code, userMessage(err))
}
