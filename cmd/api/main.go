package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/config"
	"github.com/noah-isme/hackathon-go-api/internal/database"
	"github.com/noah-isme/hackathon-go-api/internal/handler"
	"github.com/noah-isme/hackathon-go-api/internal/middleware"
	"github.com/noah-isme/hackathon-go-api/internal/observability"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
	"github.com/noah-isme/hackathon-go-api/internal/router"
	"github.com/noah-isme/hackathon-go-api/internal/service"
	"github.com/noah-isme/hackathon-go-api/pkg/ai"
	cloud "github.com/noah-isme/hackathon-go-api/pkg/cloudinary"
	"github.com/noah-isme/hackathon-go-api/pkg/docker"
	"github.com/noah-isme/hackathon-go-api/pkg/judge"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, dashboard cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	observability.RegisterMetrics()
	validate := validator.New(validator.WithRequiredStructEnabled())

	codeJudge, closeJudge := buildJudge(cfg, logger)
	defer closeJudge()

	var images service.ImageUploader
	if cfg.CloudinaryEnabled() {
		store, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		images = store
	} else {
		logger.Warn().Msg("cloudinary credentials not set, question image uploads disabled")
	}

	// Keep the interface nil when no provider is configured.
	var reviewer ai.Reviewer
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openAI, err := ai.NewOpenAIReviewer(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create ai reviewer")
		}
		reviewer = openAI
	}

	policy, err := service.ParseCertificatePolicy(cfg.CertificateDedupPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid certificate policy")
	}

	teamRepo := repository.NewTeamRepository(db)
	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeder := service.NewSeedService(teamRepo, userRepo, settingsRepo, service.AdminAccount{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		TeamName: cfg.AdminTeam,
	}, logger)
	if err := seeder.Bootstrap(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap database")
	}

	events := service.NewCompetitionEvents(redisClient, natsConn, cfg.NATSChannelBase, logger)
	events.Start(ctx)

	activityService := service.NewActivityService(activityRepo, logger)
	dashboardService := service.NewDashboardService(teamRepo, submissionRepo, settingsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	authService := service.NewAuthService(teamRepo, userRepo, service.NewHMACPaymentVerifier(cfg.PaymentKeySecret), validate, service.AuthConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
	}, logger)
	testService := service.NewTestService(questionRepo, submissionRepo, teamRepo, settingsRepo, codeJudge, dashboardService, validate, logger)
	adminService := service.NewAdminService(teamRepo, submissionRepo, questionRepo, settingsRepo, certificateRepo,
		activityService, events, dashboardService, validate, service.AdminConfig{
			RegistrationFee:   cfg.RegistrationFee,
			CertificatePolicy: policy,
		}, logger)
	questionService := service.NewQuestionService(questionRepo, images, activityService, validate, logger)
	certificateService := service.NewCertificateService(certificateRepo, settingsRepo, logger)
	reviewService := service.NewReviewService(submissionRepo, questionRepo, codeJudge, reviewer, activityService, validate, logger)

	jwtMiddleware := middleware.JWTProtected(cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    8 << 20,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, jwtMiddleware, logger),
		DashboardHandler:     handler.NewDashboardHandler(dashboardService, logger),
		TestHandler:          handler.NewTestHandler(testService, middleware.RateLimit("submit", cfg.SubmitRateLimit, cfg.SubmitRateLimitWindow), logger),
		CertificateHandler:   handler.NewCertificateHandler(certificateService, logger),
		EventsHandler:        handler.NewEventsHandler(events, logger),
		AdminHandler:         handler.NewAdminHandler(adminService, reviewService, logger),
		QuestionHandler:      handler.NewQuestionHandler(questionService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, logger),
		JWTMiddleware:        jwtMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

// buildJudge selects the execution backend. The returned func releases it.
func buildJudge(cfg config.Config, logger zerolog.Logger) (*judge.Client, func()) {
	if cfg.JudgeBackend == config.JudgeBackendDocker {
		sandbox, err := docker.NewSandbox(docker.Config{
			Host:          cfg.DockerHost,
			Timeout:       cfg.ExecutionTimeout,
			MemoryLimitMB: int64(cfg.CodeRunMemoryMB),
			CPUShares:     int64(cfg.CodeRunCPUShares),
			Logger:        logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create docker sandbox")
		}
		return judge.NewClient(judge.NewDockerBackend(sandbox), logger), func() { _ = sandbox.Close() }
	}

	backend := judge.NewJudge0Backend(judge.Judge0Config{
		BaseURL:      cfg.JudgeBaseURL,
		Host:         cfg.JudgeHost,
		APIKey:       cfg.JudgeAPIKey,
		PollInterval: cfg.JudgePollInterval,
		MaxPolls:     cfg.JudgeMaxPolls,
		Timeout:      cfg.ExecutionTimeout,
		Logger:       logger,
	})
	return judge.NewClient(backend, logger), func() {}
}
