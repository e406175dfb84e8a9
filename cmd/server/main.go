package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	achievementHandlers "github.com/architect/learning-playground/internal/achievements/handlers"
	achievementServices "github.com/architect/learning-playground/internal/achievements/services"
	"github.com/architect/learning-playground/internal/common/database"
	commonHandlers "github.com/architect/learning-playground/internal/common/handlers"
	"github.com/architect/learning-playground/internal/common/health"
	"github.com/architect/learning-playground/internal/common/middleware"
	"github.com/architect/learning-playground/internal/common/notify"
	difficultyHandlers "github.com/architect/learning-playground/internal/difficulty/handlers"
	difficultyServices "github.com/architect/learning-playground/internal/difficulty/services"
	progressHandlers "github.com/architect/learning-playground/internal/progress/handlers"
	"github.com/architect/learning-playground/internal/progress/repository"
	progressServices "github.com/architect/learning-playground/internal/progress/services"
	sessionHandlers "github.com/architect/learning-playground/internal/session/handlers"
	"github.com/architect/learning-playground/pkg/config"
	"github.com/architect/learning-playground/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// SQLite for development, PostgreSQL for production
	db, err := database.Connect(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	kv, err := repository.NewKVRepository(db)
	if err != nil {
		log.Fatalf("Failed to prepare store: %v", err)
	}

	store := progressServices.NewStore(kv)
	controller := difficultyServices.NewController(kv)
	notifier := notify.Log{}
	evaluator := achievementServices.NewEvaluator(store, notifier)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ErrorHandler())

	healthChecker := health.NewChecker(db, version)
	healthHandler := commonHandlers.NewHealthHandler(healthChecker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/readiness", healthHandler.Readiness)
	router.GET("/health/liveness", healthHandler.Liveness)
	router.GET("/health/metrics", healthHandler.Metrics)

	progressHandler := progressHandlers.NewProgressHandler(store, evaluator)
	sessionHandler := sessionHandlers.NewSessionHandler(store, controller, evaluator, notifier)
	difficultyHandler := difficultyHandlers.NewDifficultyHandler(controller)
	achievementHandler := achievementHandlers.NewAchievementHandler(evaluator)

	v1 := router.Group("/api/v1")
	{
		profileGroup := v1.Group("/profile")
		{
			profileGroup.GET("", progressHandler.GetProfile)
			profileGroup.PUT("", progressHandler.UpdateProfile)
			profileGroup.POST("/xp", progressHandler.AddXP)
		}

		progressGroup := v1.Group("/progress")
		{
			progressGroup.GET("", progressHandler.GetProgress)
			progressGroup.POST("/selection", progressHandler.SetSelection)
			progressGroup.GET("/class/:class", progressHandler.GetClassProgress)
			progressGroup.GET("/class/:class/subject/:subject", progressHandler.GetSubjectProgress)
			progressGroup.POST("/complete", progressHandler.CompleteActivity)
		}

		analyticsGroup := v1.Group("/analytics")
		{
			analyticsGroup.GET("", progressHandler.GetAnalytics)
			analyticsGroup.GET("/weekly", progressHandler.GetWeeklyStats)
			analyticsGroup.GET("/insights/:class", progressHandler.GetInsights)
		}

		settingsGroup := v1.Group("/settings")
		{
			settingsGroup.GET("", progressHandler.GetSettings)
			settingsGroup.PUT("", progressHandler.UpdateSettings)
		}

		sessionGroup := v1.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.POST("/:id/rules", sessionHandler.ShowRules)
			sessionGroup.POST("/:id/start", sessionHandler.StartSession)
			sessionGroup.POST("/:id/pause", sessionHandler.PauseSession)
			sessionGroup.POST("/:id/resume", sessionHandler.ResumeSession)
			sessionGroup.POST("/:id/reset", sessionHandler.ResetSession)
			sessionGroup.POST("/:id/answer", sessionHandler.SubmitAnswer)
			sessionGroup.POST("/:id/complete", sessionHandler.CompleteSession)
			sessionGroup.POST("/:id/fail", sessionHandler.FailSession)
			sessionGroup.PUT("/:id/difficulty", sessionHandler.SetDifficulty)
			sessionGroup.DELETE("/:id", sessionHandler.DestroySession)
		}

		difficultyGroup := v1.Group("/difficulty")
		{
			difficultyGroup.GET("/class/:class/subject/:subject", difficultyHandler.GetMetrics)
			difficultyGroup.GET("/class/:class/subject/:subject/settings", difficultyHandler.GetSettings)
			difficultyGroup.PUT("/class/:class/subject/:subject", difficultyHandler.SetDifficulty)
			difficultyGroup.DELETE("/class/:class/subject/:subject", difficultyHandler.ResetProgress)
		}

		achievementGroup := v1.Group("/achievements")
		{
			achievementGroup.GET("", achievementHandler.GetAchievements)
			achievementGroup.GET("/:id", achievementHandler.GetAchievement)
		}

		v1.DELETE("/data", progressHandler.ClearData)
	}

	address := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting learning playground server", zap.String("address", address))

	if err := router.Run(address); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
