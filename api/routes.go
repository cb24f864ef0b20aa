package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/recruitstack/recruitstack/api/handlers"
	"github.com/recruitstack/recruitstack/api/middleware"
	"github.com/recruitstack/recruitstack/internal/repository"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/services"
)

const AppSource = "recruitstack"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", handlers.HealthCheck)

	emailConfig := handlers.NewEmailConfigHandler(s.EmailConfigService)
	candidates := handlers.NewCandidatesHandler(repos.CandidateRepository, s.Exporter)

	api := r.Group("/v1")
	api.Use(middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.APIKeyHeader,
		ValidAPIKey: apikey,
	}))
	api.Use(middleware.CustomContextMiddleware(AppSource))
	api.Use(middleware.TracingMiddleware())
	{
		api.POST("/process-emails", handlers.ProcessEmails(s.EmailProcessor))

		configs := api.Group("/email-config")
		{
			configs.GET("", emailConfig.List())
			configs.POST("", emailConfig.Create())
			configs.POST("/activate", emailConfig.Activate())
			configs.POST("/test", emailConfig.Test())
			configs.PUT("/:id", emailConfig.Update())
			configs.DELETE("/:id", emailConfig.Delete())
		}

		candidatesGroup := api.Group("/candidates")
		{
			candidatesGroup.GET("", candidates.List())
			candidatesGroup.GET("/export", candidates.Export())
			candidatesGroup.GET("/stats", candidates.Stats())
		}

		api.GET("/processing-logs", handlers.ProcessingLogs(repos.ProcessingLogRepository))
	}
}
