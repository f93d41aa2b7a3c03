// @title IQ Test Service API
// @version 1.0
// @description Session, timer and result API for the IQ test application.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"iq-test-service/internal/adapter"
	"iq-test-service/internal/cache"
	"iq-test-service/internal/config"
	"iq-test-service/internal/database"
	"iq-test-service/internal/handler"
	"iq-test-service/internal/logger"
	"iq-test-service/internal/middleware"
	"iq-test-service/internal/repository"
	"iq-test-service/internal/service"
	"iq-test-service/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	questionRepository := repository.NewSQLXQuestionRepository(db)
	resultRepository := repository.NewSQLXResultRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)

	// Initialize Redis client and cache-backed stores
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("RedisCacheAdapter initialized")

	recordStore := service.NewSessionRecordStore(cacheAdapter, cfg.Test.SessionRecordTTL)
	pendingStore := service.NewPendingResultStore(cacheAdapter, cfg.Test.PendingResultTTL)

	// Initialize services
	sessionService := service.NewTestSessionService(
		questionRepository,
		resultRepository,
		service.NewScoringService(),
		recordStore,
		pendingStore,
		cfg.Test.TimeBudget,
	)
	defer sessionService.Shutdown()

	reconcileService := service.NewReconcileService(resultRepository, pendingStore, recordStore)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("AuthService initialized")

	// Initialize handlers
	validator := validation.NewValidator()
	sessionHandler := handler.NewSessionHandler(sessionService, validator)
	resultHandler := handler.NewResultHandler(reconcileService, validator)
	authHandler := handler.NewAuthHandler(authService, userRepository, cfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Get("/me", middleware.Protected(authService), authHandler.GetProfile)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// Test session routes. Guests take the test too, so auth is optional and
	// only changes where a submission lands.
	testGroup := apiGroup.Group("/tests", middleware.OptionalAuth(authService))
	testGroup.Post("/start", sessionHandler.StartTest)
	testGroup.Get("/session", sessionHandler.GetSession)
	testGroup.Put("/answers", sessionHandler.SetAnswer)
	testGroup.Post("/submit", sessionHandler.SubmitTest)
	testGroup.Post("/submit/guest", sessionHandler.SubmitTestGuest)
	testGroup.Post("/reset", sessionHandler.ResetTest)

	// Result routes (all protected)
	resultGroup := apiGroup.Group("/results", middleware.Protected(authService))
	resultGroup.Post("/resolve", resultHandler.ResolveResult)
	resultGroup.Get("/:id", resultHandler.GetResult)
	resultGroup.Get("/", resultHandler.ListResults)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
