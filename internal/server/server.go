package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dayplan/internal/config"
	"dayplan/internal/handler"
	"dayplan/internal/middleware"
	"dayplan/internal/repository"
	"dayplan/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Config    *config.Config
	Scheduler *service.RolloverScheduler
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}
	log.Println("✅ Schema up to date")

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	blockRepo := repository.NewTimeBlockRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	rolloverLogRepo := repository.NewRolloverLogRepository(db)

	// Initialize services
	placementSvc := service.NewPlacementService(db, taskRepo)
	layoutSvc := service.NewLayoutService(db, blockRepo, cfg.SnapGridMins)
	rolloverSvc := service.NewRolloverService(db, userRepo, taskRepo, settingsRepo, rolloverLogRepo, placementSvc, cfg.RolloverWorkers)
	scheduler := service.NewRolloverScheduler(rolloverSvc, userRepo, cfg.RolloverTick)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, placementSvc)
	blockHandler := handler.NewTimeBlockHandler(layoutSvc)
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	rolloverHandler := handler.NewRolloverHandler(rolloverSvc, rolloverLogRepo)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)
		authorized.POST("/tasks/:id/complete", taskHandler.Complete)
		authorized.POST("/tasks/:id/reopen", taskHandler.Reopen)
		authorized.GET("/buckets/:bucket/tasks", taskHandler.GetBucket)
		authorized.POST("/buckets/:bucket/reorder", taskHandler.Reorder)

		// Time block routes
		authorized.POST("/time-blocks", blockHandler.Create)
		authorized.GET("/days/:date/time-blocks", blockHandler.GetDay)
		authorized.PUT("/time-blocks/:id/resize", blockHandler.Resize)
		authorized.POST("/time-blocks/:id/move", blockHandler.Move)
		authorized.DELETE("/time-blocks/:id", blockHandler.Delete)

		// Settings routes
		authorized.GET("/settings/rollover", settingsHandler.Get)
		authorized.PUT("/settings/rollover", settingsHandler.Update)

		// Admin rollover routes
		authorized.POST("/admin/rollover/:timezone/run", rolloverHandler.Run)
		authorized.GET("/admin/rollover-logs", rolloverHandler.ListLogs)
		authorized.DELETE("/admin/rollover-logs/:id", rolloverHandler.DeleteLog)
	}

	return &Server{
		Engine:    r,
		DB:        db,
		Config:    cfg,
		Scheduler: scheduler,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	if err := s.Scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start rollover scheduler: %s", err)
	}
	log.Printf("⏰ Rollover scheduler ticking every %s\n", s.Config.RolloverTick)

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	s.Scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
