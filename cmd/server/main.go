package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexdraft-backend/agents"
	"lexdraft-backend/config"
	"lexdraft-backend/handlers"
	"lexdraft-backend/logger"
	"lexdraft-backend/metrics"
	"lexdraft-backend/middleware"
	"lexdraft-backend/pipeline"
	"lexdraft-backend/repository"
	"lexdraft-backend/service"
	"lexdraft-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	devJWTSecret    = "lexdraft-dev-secret"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, envLoaded := config.Load()

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !envLoaded {
		log.Warn("No .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}
	log.Info("Constitution loaded", "version", cfg.ConstitutionVersion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := initPostgres(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize Postgres", "error", err)
	}
	defer db.Close()

	// Initialize storage
	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize storage", "error", err)
	}
	log.Info("Storage initialized", "type", cfg.Storage.Type)

	// Initialize repositories
	caseRepo := repository.NewCaseRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	assertionRepo := repository.NewAssertionRepository(db)
	sourceRepo := repository.NewSourceRepository(db)
	renderingRepo := repository.NewRenderingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	audit := service.NewAuditService(
		service.AuditWithActivityRepository(activityRepo),
		service.AuditWithDocumentRepository(documentRepo),
		service.AuditWithLogger(log),
	)
	authService := service.NewAuthService(
		service.WithUserRepository(userRepo),
		service.WithTokenSecret(cfg.JWTSecret, cfg.JWTTTL),
		service.WithAuthLogger(log),
	)
	caseService := service.NewCaseService(
		service.WithCaseRepository(caseRepo),
		service.WithCaseAudit(audit),
		service.WithCaseLogger(log),
	)
	documentService := service.NewDocumentService(
		service.DocumentWithCaseRepository(caseRepo),
		service.DocumentWithDocumentRepository(documentRepo),
		service.DocumentWithAssertionRepository(assertionRepo),
		service.DocumentWithAudit(audit),
		service.DocumentWithLogger(log),
	)
	assertionService := service.NewAssertionService(
		service.AssertionWithAssertionRepository(assertionRepo),
		service.AssertionWithDocumentRepository(documentRepo),
		service.AssertionWithSourceRepository(sourceRepo),
		service.AssertionWithAudit(audit),
		service.AssertionWithLogger(log),
	)
	sourceService := service.NewSourceService(
		service.WithSourceRepository(sourceRepo),
		service.WithSourceAudit(audit),
		service.WithSourceLogger(log),
	)
	renderingService := service.NewRenderingService(
		service.RenderingWithRenderingRepository(renderingRepo),
		service.RenderingWithDocumentRepository(documentRepo),
		service.RenderingWithAssertionRepository(assertionRepo),
		service.RenderingWithStorage(fileStorage),
		service.RenderingWithAudit(audit),
		service.RenderingWithLogger(log),
	)
	attachmentService := service.NewAttachmentService(
		service.AttachmentWithAttachmentRepository(attachmentRepo),
		service.AttachmentWithCaseRepository(caseRepo),
		service.AttachmentWithStorage(fileStorage),
		service.AttachmentWithAudit(audit),
		service.AttachmentWithLogger(log),
	)

	// Initialize agents
	genericOpts := []agents.CivilGenericOption{agents.CivilGenericWithLogger(log)}
	if cfg.LLMEnabled() {
		geminiClient, err := initGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal("Failed to initialize Gemini", "error", err)
		}
		defer geminiClient.Close()
		genericOpts = append(genericOpts, agents.CivilGenericWithGenerator(
			agents.NewGeminiGenerator(geminiClient, agents.GeminiWithModel(cfg.GeminiModel), agents.GeminiWithLogger(log)),
		))
		log.Info("Gemini client initialized", "model", cfg.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, generic agent runs in template mode")
	}
	registry := agents.NewRegistry(
		agents.NewCivilGeneric(genericOpts...),
		agents.NewPeticaoInicialCivil(),
		agents.NewContestacaoCivil(),
	)

	cognitive := pipeline.New(
		pipeline.WithDocumentService(documentService),
		pipeline.WithAssertionService(assertionService),
		pipeline.WithSourceService(sourceService),
		pipeline.WithRegistry(registry),
		pipeline.WithLogger(log),
	)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.CORSOrigins))
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService, log),
		Agents:      handlers.NewAgentHandler(registry),
		Generation:  handlers.NewGenerationHandler(documentService, cognitive, log),
		Cases:       handlers.NewCaseHandler(caseService, log),
		Documents:   handlers.NewDocumentHandler(documentService, log),
		Assertions:  handlers.NewAssertionHandler(assertionService, log),
		Sources:     handlers.NewSourceHandler(sourceService, log),
		Renderings:  handlers.NewRenderingHandler(renderingService, log),
		Audit:       handlers.NewAuditHandler(audit, log),
		Attachments: handlers.NewAttachmentHandler(attachmentService, log),
	}, middleware.NewAuthMiddleware(log, authService))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func initPostgres(ctx context.Context, connString string, log *logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Postgres connection established")
	return pool, nil
}

func initGemini(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(apiKey))
}
