package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	inquiryservice "veritas/contexts/challenge-resolution/inquiry-service"
	inquirypostgres "veritas/contexts/challenge-resolution/inquiry-service/adapters/postgres"
	promotionengine "veritas/contexts/knowledge-curation/promotion-engine"
	promotionpostgres "veritas/contexts/knowledge-curation/promotion-engine/adapters/postgres"
	"veritas/contexts/knowledge-curation/promotion-engine/adapters/ttlcache"
	reputationservice "veritas/contexts/knowledge-curation/reputation-service"
	reputationpostgres "veritas/contexts/knowledge-curation/reputation-service/adapters/postgres"
	"veritas/internal/platform/config"
	"veritas/internal/platform/db"
	"veritas/internal/platform/httpserver"
	"veritas/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	eligibilityCache := ttlcache.New(cfg.EligibilityCacheTTL)

	reputationRepo := reputationpostgres.NewRepository(pg.DB, logger)
	reputationModule := reputationservice.NewModule(reputationservice.Dependencies{
		Inputs: reputationRepo,
		Clock:  reputationpostgres.SystemClock{},
		Logger: logger,
	})

	promotionRepo := promotionpostgres.NewRepository(pg.DB, logger)
	promotionModule := promotionengine.NewModule(promotionengine.Dependencies{
		Graphs:      promotionRepo,
		Votes:       promotionRepo,
		Methodology: promotionRepo,
		Events:      promotionRepo,
		Evidence:    promotionRepo,
		Challenges:  promotionRepo,
		Reputation:  reputationModule.Service,
		Idempotency: promotionRepo,
		Tx:          promotionRepo,
		Cache:       eligibilityCache,
		Publisher:   bus,
		Clock:       promotionpostgres.SystemClock{},
		IDGen:       promotionpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	inquiryRepo := inquirypostgres.NewRepository(pg.DB, logger)
	inquiryModule := inquiryservice.NewModule(inquiryservice.Dependencies{
		Inquiries:   inquiryRepo,
		Votes:       inquiryRepo,
		Credibility: inquiryRepo,
		Tx:          inquiryRepo,
		Eligibility: eligibilityCache,
		Publisher:   bus,
		Clock:       inquirypostgres.SystemClock{},
		IDGen:       inquirypostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(promotionModule, inquiryModule, reputationModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
