// cmd/server/main.go - Eco-Barangay waste collection backend
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/centmarde/Eco-Barangay/internal/config"
	"github.com/centmarde/Eco-Barangay/internal/database"
	"github.com/centmarde/Eco-Barangay/internal/handlers"
	"github.com/centmarde/Eco-Barangay/internal/middleware"
	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
	"github.com/centmarde/Eco-Barangay/internal/repository"
	"github.com/centmarde/Eco-Barangay/internal/services"
	"github.com/centmarde/Eco-Barangay/pkg/auth"
)

var serverStartTime = time.Now()

const appVersion = "1.0.0"

func main() {
	cfg := config.Load()
	log := setupLogging(cfg)

	log.WithFields(logrus.Fields{
		"version": appVersion,
		"env":     cfg.Env,
		"port":    cfg.Port,
	}).Info("Starting Eco-Barangay backend")

	db, err := database.NewMongoDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Error("Failed to close MongoDB connection")
		}
	}()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		cancelIndex()
		log.WithError(err).Fatal("Failed to create indexes")
	}
	cancelIndex()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiration)*time.Hour)

	// Repositories
	collectionRepo := repository.NewCollectionRepository(db.Database.Collection("collections"))
	purokRepo := repository.NewPurokRepository(db.Database.Collection("puroks"))
	notificationRepo := repository.NewNotificationRepository(
		db.Database.Collection("notifications"),
		db.Database.Collection("user_notifications"),
		db.Database.Collection("notification_outbox"),
	)
	feedbackRepo := repository.NewFeedbackRepository(db.Database.Collection("feedbacks"))
	userRepo := repository.NewUserRepository(db.Database.Collection("users"))
	announcementRepo := repository.NewAnnouncementRepository(db.Database.Collection("announcements"))

	// Realtime hub
	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	// Services
	notificationService := services.NewNotificationService(notificationRepo, hub, cfg.OutboxInterval, cfg.OutboxMaxAttempts, log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go notificationService.Start(workerCtx)
	defer stopWorker()

	directoryService := services.NewDirectoryService(userRepo, cfg.IdentityProviderURL, cfg.IdentityProviderKey, log)
	collectionService := services.NewCollectionService(collectionRepo, purokRepo, feedbackRepo, notificationService, directoryService, hub, log)
	purokService := services.NewPurokService(purokRepo, collectionRepo, hub, log)
	feedbackService := services.NewFeedbackService(feedbackRepo, collectionRepo, notificationService, directoryService, log)
	authService := services.NewAuthService(userRepo, jwtManager, log)
	userService := services.NewUserService(userRepo, collectionRepo, notificationService, directoryService, log)
	statsService := services.NewStatsService(collectionRepo, userRepo, feedbackRepo)
	announcementService := services.NewAnnouncementService(announcementRepo, notificationService, userRepo, hub, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	collectionHandler := handlers.NewCollectionHandler(collectionService)
	purokHandler := handlers.NewPurokHandler(purokService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	userHandler := handlers.NewUserHandler(userService, directoryService)
	statsHandler := handlers.NewStatsHandler(statsService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	wsHandler := handlers.NewWebSocketHandler(hub, jwtManager, log)

	router := setupRouter(cfg, log, jwtManager, authHandler, collectionHandler, purokHandler,
		notificationHandler, feedbackHandler, userHandler, statsHandler, announcementHandler, wsHandler)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced server shutdown")
	}
	log.Info("Server stopped")
}

func setupLogging(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func setupRouter(
	cfg *config.Config,
	log *logrus.Logger,
	jwtManager *auth.JWTManager,
	authHandler *handlers.AuthHandler,
	collectionHandler *handlers.CollectionHandler,
	purokHandler *handlers.PurokHandler,
	notificationHandler *handlers.NotificationHandler,
	feedbackHandler *handlers.FeedbackHandler,
	userHandler *handlers.UserHandler,
	statsHandler *handlers.StatsHandler,
	announcementHandler *handlers.AnnouncementHandler,
	wsHandler *handlers.WebSocketHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(10 << 20)) // 10 MB

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		router.Use(limiter.RateLimit())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": appVersion,
			"uptime":  time.Since(serverStartTime).String(),
		})
	})

	// Readiness and liveness checks for orchestrators.
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})
	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	api := router.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/garbage-types", collectionHandler.GarbageTypes)
	api.GET("/ws", wsHandler.Subscribe)

	// Authenticated routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		protected.GET("/auth/profile", authHandler.Profile)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.POST("/collections", collectionHandler.Create)
		protected.GET("/collections/mine", collectionHandler.ListMine)
		protected.GET("/collections/:id", collectionHandler.Get)
		protected.GET("/collections/:id/feedbacks", feedbackHandler.ListByCollection)

		protected.POST("/feedbacks", feedbackHandler.Create)
		protected.GET("/feedbacks/mine", feedbackHandler.ListMine)

		protected.GET("/announcements", announcementHandler.List)
		protected.GET("/announcements/:id", announcementHandler.Get)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PATCH("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)
		protected.DELETE("/notifications", notificationHandler.ClearAll)
	}

	// Collector routes
	collector := api.Group("")
	collector.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(models.RoleCollector))
	{
		collector.GET("/collections", collectionHandler.List)
		collector.PATCH("/collections/:id/status", collectionHandler.UpdateStatus)
		collector.GET("/stats/collector", statsHandler.CollectorStats)
	}

	// Staff routes (officials and admins)
	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireStaff())
	{
		staff.PUT("/collections/:id", collectionHandler.Update)
		staff.PATCH("/collections/:id/assign", collectionHandler.AssignCollector)

		staff.POST("/puroks", purokHandler.Create)
		staff.GET("/puroks", purokHandler.List)
		staff.GET("/puroks/:id", purokHandler.Get)
		staff.PUT("/puroks/:id", purokHandler.Update)
		staff.PATCH("/puroks/:id/status", purokHandler.SetStatus)
		staff.POST("/puroks/:id/link", purokHandler.LinkCollection)
		staff.DELETE("/puroks/:id", purokHandler.Delete)

		staff.POST("/announcements", announcementHandler.Create)
		staff.PUT("/announcements/:id", announcementHandler.Update)
		staff.DELETE("/announcements/:id", announcementHandler.Delete)

		staff.GET("/users/collectors", userHandler.Collectors)
		staff.GET("/stats/collector/:id", statsHandler.CollectorStats)
		staff.GET("/stats/reports", statsHandler.ReportAnalysis)
	}

	// Admin routes
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PATCH("/users/:id/role", userHandler.UpdateRole)
		admin.PATCH("/users/:id/block", userHandler.SetBlocked)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.DELETE("/collections/:id", collectionHandler.Delete)

		admin.GET("/feedbacks", feedbackHandler.List)
		admin.PATCH("/feedbacks/:id/status", feedbackHandler.UpdateStatus)
		admin.DELETE("/feedbacks/:id", feedbackHandler.Delete)

		admin.GET("/stats/dashboard", statsHandler.Dashboard)
		admin.GET("/ws/status", wsHandler.Status)
	}

	return router
}
