package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusphere-api/internal/config"
	"github.com/noah-isme/edusphere-api/internal/database"
	"github.com/noah-isme/edusphere-api/internal/handler"
	"github.com/noah-isme/edusphere-api/internal/middleware"
	"github.com/noah-isme/edusphere-api/internal/repository"
	"github.com/noah-isme/edusphere-api/internal/router"
	"github.com/noah-isme/edusphere-api/internal/service"
	"github.com/noah-isme/edusphere-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	jobRepo := repository.NewMemoryGradingJobRepository()
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer closeWithLog(logger, "redis", redisClient.Close)
		jobRepo = repository.NewRedisGradingJobRepository(redisClient, cfg.GradingJobTTL)
	} else {
		logger.Warn().Msg("redis url not set, grading jobs are kept in memory")
	}

	var publisher service.GradingEventPublisher
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer closeWithLog(logger, "nats", conn.Drain)
		publisher = service.NewNATSGradingPublisher(conn, cfg.NATSSubject)
	}

	var completer ai.Completer
	if cfg.OpenAIAPIKey != "" {
		openaiCompleter, err := ai.NewOpenAICompleter(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.AIBaseURL,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai client: %v", err)
		}
		completer = openaiCompleter
	} else {
		logger.Warn().Msg("openai api key not set, ai grading is disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, courseRepo, publisher, validate, logger)
	aiService := service.NewAIGradingService(service.AIGradingConfig{
		Submissions: submissionRepo,
		Assignments: assignmentRepo,
		Jobs:        jobRepo,
		Completer:   completer,
		Publisher:   publisher,
		BulkDelay:   cfg.BulkGradingDelay,
		Logger:      logger,
	})
	seedService := service.NewSeedService(userRepo, courseRepo, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	aiLimiter := middleware.RateLimit("ai", cfg.AIRateLimit, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		AIGradingHandler:  handler.NewAIGradingHandler(aiService, aiLimiter, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		AIEnabled:         completer != nil,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, aiService, logger)
}

func waitForShutdown(app *fiber.App, aiService service.AIGradingService, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	// bulk jobs run detached from requests; let them finish their writes
	logger.Info().Msg("waiting for bulk grading jobs")
	aiService.Wait()

	logger.Info().Msg("server stopped")
}

// closeWithLog runs a deferred release and reports its failure instead of dropping it.
func closeWithLog(logger zerolog.Logger, name string, release func() error) {
	if err := release(); err != nil {
		logger.Warn().Err(err).Str("resource", name).Msg("failed to release connection")
	}
}
