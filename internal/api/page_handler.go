package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	tabLog      = "log"
	tabPlan     = "plan"
	tabInsights = "insights"
)

// PageHandler renders the three-tab HTML interface.
type PageHandler struct {
	sessionService service.SessionService
	chatService    service.ChatService
	planService    service.PlanService
	insightService service.InsightService
	exportService  service.ExportService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(
	sessionService service.SessionService,
	chatService service.ChatService,
	planService service.PlanService,
	insightService service.InsightService,
	exportService service.ExportService,
) *PageHandler {
	return &PageHandler{
		sessionService: sessionService,
		chatService:    chatService,
		planService:    planService,
		insightService: insightService,
		exportService:  exportService,
	}
}

type pageData struct {
	Tab          string
	Session      SessionResponse
	Pending      bool
	Flash        string
	Error        string
	Query        string
	Answer       string
	QuickQueries []string
	ExportURL    string
}

// Index renders the tab named by ?tab=, defaulting to the Log tab.
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, &pageData{Tab: c.DefaultQuery("tab", tabLog)})
}

// PostLog sends one chat message. Errors are shown inline under the transcript.
func (h *PageHandler) PostLog(c *gin.Context) {
	data := &pageData{Tab: tabLog}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	if _, err := h.chatService.SendMessage(c.Request.Context(), userID, c.PostForm("message")); err != nil {
		data.Error = userMessage(err)
	}
	h.render(c, http.StatusOK, data)
}

// PostPlanGenerate requests a new plan of the typed workout kind.
func (h *PageHandler) PostPlanGenerate(c *gin.Context) {
	data := &pageData{Tab: tabPlan, Query: c.PostForm("query")}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	if _, err := h.planService.GeneratePlan(c.Request.Context(), userID, data.Query); err != nil {
		data.Error = userMessage(err)
	} else {
		data.Query = ""
	}
	h.render(c, http.StatusOK, data)
}

// PostPlanUpdate handles the plan form. action is save, complete or discard;
// the checkboxes and weights are applied before completing.
func (h *PageHandler) PostPlanUpdate(c *gin.Context) {
	data := &pageData{Tab: tabPlan}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		data.Error = "Could not read the form."
		h.render(c, http.StatusBadRequest, data)
		return
	}
	ctx := c.Request.Context()
	action := c.Request.PostForm.Get("action")

	if action == "discard" {
		if err := h.planService.DiscardPlan(ctx, userID); err != nil {
			data.Error = userMessage(err)
		} else {
			data.Flash = "Plan discarded."
		}
		h.render(c, http.StatusOK, data)
		return
	}

	checked, weights, err := parsePlanForm(c.Request.PostForm)
	if err != nil {
		data.Error = err.Error()
		h.render(c, http.StatusBadRequest, data)
		return
	}
	if _, err := h.planService.ApplyForm(ctx, userID, checked, weights); err != nil {
		data.Error = userMessage(err)
		h.render(c, http.StatusOK, data)
		return
	}

	switch action {
	case "complete":
		result, err := h.planService.CompletePlan(ctx, userID)
		if err != nil {
			data.Error = userMessage(err)
		} else {
			data.Flash = result.Message()
		}
	default:
		data.Flash = "Progress saved."
	}
	h.render(c, http.StatusOK, data)
}

// PostInsights asks a free-form or quick-pick question.
func (h *PageHandler) PostInsights(c *gin.Context) {
	data := &pageData{Tab: tabInsights, Query: strings.TrimSpace(c.PostForm("query"))}
	answer, err := h.insightService.Ask(c.Request.Context(), data.Query)
	if err != nil {
		data.Error = userMessage(err)
	}
	data.Answer = answer
	h.render(c, http.StatusOK, data)
}

// PostExport uploads the transcript and shows the download link.
func (h *PageHandler) PostExport(c *gin.Context) {
	data := &pageData{Tab: tabLog}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	export, err := h.exportService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		data.Error = userMessage(err)
	} else {
		data.ExportURL = export.URL
		data.Flash = fmt.Sprintf("Transcript exported. The link expires at %s.", export.ExpiresAt.Format("15:04 MST"))
	}
	h.render(c, http.StatusOK, data)
}

func (h *PageHandler) render(c *gin.Context, status int, data *pageData) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	switch data.Tab {
	case tabLog, tabPlan, tabInsights:
	default:
		data.Tab = tabLog
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: Failed to load session for user %s: %v", userID.Hex(), err)
		c.String(http.StatusInternalServerError, "Failed to load your session.")
		return
	}
	now := time.Now()
	data.Session = MapSessionToResponse(session, now)
	data.Pending = data.Session.State == domain.PlanStatePending
	data.QuickQueries = h.insightService.QuickQueries()
	c.HTML(status, "index.html", data)
}

// parsePlanForm reads done_{i} checkboxes and weight_{i} fields.
// Empty weights keep the current value.
func parsePlanForm(form url.Values) (map[int]bool, map[int]string, error) {
	checked := map[int]bool{}
	weights := map[int]string{}
	for key, values := range form {
		switch {
		case strings.HasPrefix(key, "done_"):
			i, err := strconv.Atoi(strings.TrimPrefix(key, "done_"))
			if err != nil {
				return nil, nil, fmt.Errorf("invalid field %q", key)
			}
			checked[i] = true
		case strings.HasPrefix(key, "weight_"):
			i, err := strconv.Atoi(strings.TrimPrefix(key, "weight_"))
			if err != nil {
				return nil, nil, fmt.Errorf("invalid field %q", key)
			}
			if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
				weights[i] = values[0]
			}
		}
	}
	return checked, weights, nil
}
