package api

import (
	"alcyxob/workout-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth    service.AuthService
	Session service.SessionService
	Chat    service.ChatService
	Plan    service.PlanService
	Insight service.InsightService
	Export  service.ExportService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, secureCookies bool, svc Services) error {
	tmpl, err := LoadTemplates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	router.Use(RequestIDMiddleware())

	authHandler := NewAuthHandler(svc.Auth, secureCookies)
	trackerHandler := NewTrackerHandler(svc.Session, svc.Chat, svc.Plan, svc.Insight, svc.Export)
	pageHandler := NewPageHandler(svc.Session, svc.Chat, svc.Plan, svc.Insight, svc.Export)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// --- HTML pages ---
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.LoginForm)
	router.POST("/register", authHandler.RegisterForm)
	router.POST("/logout", authHandler.Logout)

	pages := router.Group("")
	pages.Use(PageAuthMiddleware(jwtSecret))
	{
		pages.GET("/", pageHandler.Index)
		pages.POST("/log", pageHandler.PostLog)
		pages.POST("/plan/generate", pageHandler.PostPlanGenerate)
		pages.POST("/plan/update", pageHandler.PostPlanUpdate)
		pages.POST("/insights", pageHandler.PostInsights)
		pages.POST("/export", pageHandler.PostExport)
	}

	// --- JSON API ---
	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/session", trackerHandler.GetSession)
		protected.POST("/chat", trackerHandler.Chat)
		protected.POST("/export", trackerHandler.Export)

		planGroup := protected.Group("/plan")
		{
			planGroup.POST("", trackerHandler.GeneratePlan)
			planGroup.PATCH("", trackerHandler.UpdatePlan)
			planGroup.DELETE("", trackerHandler.DiscardPlan)
			planGroup.POST("/complete", trackerHandler.CompletePlan)
		}

		insightGroup := protected.Group("/insights")
		{
			insightGroup.POST("", trackerHandler.AskInsight)
			insightGroup.GET("/quick", trackerHandler.QuickQueries)
		}
	}
	return nil
}
