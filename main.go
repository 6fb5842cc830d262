package main

import (
	"context"
	"log"

	api "jobtrack-backend/cmd/api"
	authUsecase "jobtrack-backend/internal/auth/usecase"
	ingestdomain "jobtrack-backend/internal/ingest/domain"
	ingestRepo "jobtrack-backend/internal/ingest/repository"
	ingestUsecase "jobtrack-backend/internal/ingest/usecase"
	jobdomain "jobtrack-backend/internal/job/domain"
	jobRepo "jobtrack-backend/internal/job/repository"
	jobUsecasePkg "jobtrack-backend/internal/job/usecase"
	"jobtrack-backend/pkg/ai"
	"jobtrack-backend/pkg/config"
	"jobtrack-backend/pkg/crypto"
	"jobtrack-backend/pkg/database"
	"jobtrack-backend/pkg/gmail"
	"jobtrack-backend/pkg/imapmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&ingestdomain.Integration{},
		&ingestdomain.Message{},
		&ingestdomain.SyncRun{},
		&jobdomain.JobApplication{},
		&jobdomain.StageEvent{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Credential encryption
	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize credential encryption:", err)
	}

	// Initialize repositories (dependency injection)
	integrationRepo := ingestRepo.NewIntegrationRepository(db)
	messageRepo := ingestRepo.NewMessageRepository(db)
	runRepo := ingestRepo.NewSyncRunRepository(db)
	jobRepository := jobRepo.NewGormJobRepository(db)

	// Mail providers, keyed by the integration's provider name
	providers := map[string]ingestdomain.MailProvider{
		ingestdomain.ProviderGmail: gmail.NewService(),
	}
	if cfg.IMAPAddr != "" {
		providers[ingestdomain.ProviderIMAP] = imapmail.NewService(cfg.IMAPAddr, cfg.IMAPUsername)
	}

	// AI classifier
	classifier, err := ai.NewEmailClassifier(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
		Timeout:       cfg.HTTPTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI classifier:", err)
	}
	log.Printf("AI classifier initialized with provider: %s", cfg.AIProvider)

	// Initialize use cases (dependency injection)
	jobUsecaseInstance := jobUsecasePkg.NewJobUsecase(jobRepository)
	resolver := ingestUsecase.NewTokenResolver(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.HTTPTimeout)
	syncUsecaseInstance := ingestUsecase.NewSyncUsecase(
		integrationRepo, messageRepo, runRepo,
		resolver, providers, classifier, jobUsecaseInstance, encryptor,
		cfg.SyncWorkers, cfg.SyncSearchDays, cfg.SyncMaxMessages,
		cfg.HTTPTimeout,
	)
	integrationUsecaseInstance := ingestUsecase.NewIntegrationUsecase(integrationRepo, encryptor, nil)
	reviewUsecaseInstance := ingestUsecase.NewReviewUsecase(messageRepo, jobUsecaseInstance)
	authUsecaseInstance := authUsecase.NewAuthUsecase(cfg)

	// Optional scheduled sync
	scheduler := ingestUsecase.NewScheduler(syncUsecaseInstance, cfg.SyncInterval)
	go scheduler.Start(context.Background())

	// Initialize HTTP handler
	handler := api.NewHandler(
		authUsecaseInstance,
		integrationUsecaseInstance,
		syncUsecaseInstance,
		reviewUsecaseInstance,
		jobUsecaseInstance,
		runRepo,
		cfg,
	)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
