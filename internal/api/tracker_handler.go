package api

import (
	"alcyxob/workout-tracker/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TrackerHandler serves the JSON version of the three tabs.
type TrackerHandler struct {
	sessionService service.SessionService
	chatService    service.ChatService
	planService    service.PlanService
	insightService service.InsightService
	exportService  service.ExportService
}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler(
	sessionService service.SessionService,
	chatService service.ChatService,
	planService service.PlanService,
	insightService service.InsightService,
	exportService service.ExportService,
) *TrackerHandler {
	return &TrackerHandler{
		sessionService: sessionService,
		chatService:    chatService,
		planService:    planService,
		insightService: insightService,
		exportService:  exportService,
	}
}

// --- DTOs ---

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Reply   string          `json:"reply,omitempty"`
	Error   string          `json:"error,omitempty"`
	Session SessionResponse `json:"session"`
}

type GeneratePlanRequest struct {
	Query string `json:"query" binding:"required"`
}

type CompletePlanResponse struct {
	Message string `json:"message"`
	Summary string `json:"summary"`
}

type InsightRequest struct {
	Query string `json:"query" binding:"required"`
}

type InsightResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// GetSession godoc
// @Summary Current session state
// @Tags Tracker
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session [get]
func (h *TrackerHandler) GetSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	session, err := h.sessionService.GetSession(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, "get session", err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session, time.Now()))
}

// Chat godoc
// @Summary Send a Log tab message
// @Description Logs the message into memory and returns the coach reply. A
// @Description failed reply still returns the updated session with an error.
// @Tags Tracker
// @Accept json
// @Produce json
// @Param message body ChatRequest true "Message"
// @Success 200 {object} ChatResponse
// @Failure 502 {object} ChatResponse "Coach or memory service failed"
// @Router /chat [post]
func (h *TrackerHandler) Chat(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), userID, req.Message)
	if err != nil && result == nil {
		respondWithError(c, "chat", err)
		return
	}
	resp := ChatResponse{Reply: result.Reply, Session: MapSessionToResponse(result.Session, time.Now())}
	if err != nil {
		resp.Error = userMessage(err)
		c.JSON(statusForError(err), resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GeneratePlan godoc
// @Summary Generate a workout plan from memory
// @Tags Plan
// @Accept json
// @Produce json
// @Param request body GeneratePlanRequest true "Workout type, e.g. push day"
// @Success 201 {object} PlanResponse
// @Failure 409 {object} gin.H "A plan is already active or being generated"
// @Failure 502 {object} gin.H "Memory service failed or returned an invalid plan"
// @Router /plan [post]
func (h *TrackerHandler) GeneratePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	session, err := h.planService.GeneratePlan(c.Request.Context(), userID, req.Query)
	if err != nil {
		respondWithError(c, "generate plan", err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(session.ActivePlan))
}

// UpdatePlan godoc
// @Summary Check off exercises or record actual weights
// @Tags Plan
// @Accept json
// @Produce json
// @Param update body service.ProgressUpdate true "Edits keyed by exercise index"
// @Success 200 {object} PlanResponse
// @Failure 400 {object} gin.H "Index out of range"
// @Failure 404 {object} gin.H "No active plan"
// @Router /plan [patch]
func (h *TrackerHandler) UpdatePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req service.ProgressUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	session, err := h.planService.UpdateProgress(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, "update plan", err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(session.ActivePlan))
}

// CompletePlan godoc
// @Summary Log the checked-off exercises and clear the plan
// @Tags Plan
// @Produce json
// @Success 200 {object} CompletePlanResponse
// @Failure 422 {object} gin.H "Nothing checked off"
// @Router /plan/complete [post]
func (h *TrackerHandler) CompletePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	result, err := h.planService.CompletePlan(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, "complete plan", err)
		return
	}
	c.JSON(http.StatusOK, CompletePlanResponse{Message: result.Message(), Summary: result.Summary})
}

// DiscardPlan godoc
// @Summary Drop the active plan without logging it
// @Tags Plan
// @Success 204
// @Failure 404 {object} gin.H "No active plan"
// @Router /plan [delete]
func (h *TrackerHandler) DiscardPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err := h.planService.DiscardPlan(c.Request.Context(), userID); err != nil {
		respondWithError(c, "discard plan", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AskInsight godoc
// @Summary Ask a question about training history
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body InsightRequest true "Question"
// @Success 200 {object} InsightResponse
// @Router /insights [post]
func (h *TrackerHandler) AskInsight(c *gin.Context) {
	var req InsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	answer, err := h.insightService.Ask(c.Request.Context(), req.Query)
	if err != nil {
		respondWithError(c, "insight", err)
		return
	}
	c.JSON(http.StatusOK, InsightResponse{Query: req.Query, Answer: answer})
}

// QuickQueries returns the one-click Insights questions.
func (h *TrackerHandler) QuickQueries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"queries": h.insightService.QuickQueries()})
}

// Export godoc
// @Summary Export the chat transcript to object storage
// @Tags Tracker
// @Produce json
// @Success 201 {object} service.Export
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /export [post]
func (h *TrackerHandler) Export(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	export, err := h.exportService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, "export", err)
		return
	}
	c.JSON(http.StatusCreated, export)
}
