package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/authgate"
	"invoiceflow/internal/caching"
	"invoiceflow/internal/common"
	"invoiceflow/internal/config"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/jobs"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/middleware"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/services"
	"invoiceflow/internal/workspace"
	"invoiceflow/pkg/database"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/random"
	"github.com/redis/go-redis/v9"
)

// app holds every long-lived dependency shared by the serve and CLI commands.
type app struct {
	cfg   *config.Config
	pool  *pgxpool.Pool
	redis *redis.Client
	queue *asynq.Client

	cache   caching.CacheService
	minio   services.MinioService
	metrics *middleware.Metrics
	policy  *authgate.Policy

	state     services.StateService
	inventory services.InventoryService
	sales     services.SaleService
	invoices  services.InvoiceService
	settings  services.SettingsService
	backups   services.BackupService
	shortcuts services.ShortcutService
	auth      services.AuthService
	reports   analytics.ReportService
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     caching.RedisAddr(cfg.RedisAddr),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.WithComponent("app")
	loc := cfg.Location()

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = random.String(32)
		log.Warn().Msg("JWT_SECRET not set, using a generated secret; sessions end on restart")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.Options{MaxConnLifetime: time.Hour})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	a := &app{cfg: cfg, pool: pool}
	a.redis = caching.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	a.cache = caching.NewRedisCacheService(a.redis)
	a.queue = asynq.NewClient(redisOpt(cfg))

	a.minio, err = services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioRegion, cfg.MinioUseSSL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("minio: %w", err)
	}
	for _, bucket := range []string{cfg.InvoiceBucket, cfg.BackupBucket} {
		if err := a.minio.EnsureBucketExists(ctx, bucket); err != nil {
			log.Warn().Err(err).Str("bucket", bucket).Msg("bucket unavailable; PDFs and backups will fail until storage is reachable")
		}
	}

	inventoryRepo := repositories.NewInventoryRepo(pool)
	settingsRepo := repositories.NewSettingsRepo(pool)
	buyerRepo := repositories.NewBuyerProfileRepo(pool)
	salesRepo := repositories.NewSalesRecordRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	directSaleRepo := repositories.NewDirectSaleRepo(pool)
	finalizeRepo := repositories.NewFinalizeRepo(pool)
	userRepo := repositories.NewUserRepo(pool)

	ws := workspace.New(workspace.WithLocation(loc))
	a.state = services.NewStateService(ws, a.cache, inventoryRepo, settingsRepo)
	if err := a.state.Bootstrap(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("bootstrap state: %w", err)
	}

	guard := common.NewInflightGuard()
	a.metrics = middleware.NewMetrics()
	generator := enrichment.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)

	pdf := services.NewPDFService(services.SellerInfo{
		Name:    cfg.SellerName,
		Address: cfg.SellerAddress,
		GSTIN:   cfg.SellerGSTIN,
	})
	a.reports = analytics.NewReportService(salesRepo, inventoryRepo, a.cache, loc)
	a.invoices = services.NewInvoiceService(invoiceRepo, directSaleRepo, pdf, a.minio, cfg.InvoiceBucket)
	a.inventory = services.NewInventoryService(a.state, inventoryRepo, generator, guard)
	a.sales = services.NewSaleService(a.state, finalizeRepo, settingsRepo, a.invoices, a.reports, guard,
		services.NewSaleMetrics(a.metrics.Registerer()), loc)
	a.settings = services.NewSettingsService(a.state, settingsRepo, buyerRepo)
	a.backups = services.NewBackupService(a.state, inventoryRepo, settingsRepo, a.minio, cfg.BackupBucket, loc)
	a.shortcuts = services.NewShortcutService(a.sales)

	var verifier services.IDTokenVerifier
	if cfg.OAuthJWKSURL != "" {
		verifier, err = services.NewJWKSVerifier(ctx, cfg.OAuthJWKSURL, cfg.OAuthAudience, cfg.OAuthIssuer)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("oauth verifier: %w", err)
		}
	}
	a.policy = authgate.NewPolicy(cfg.AdminList())
	a.auth = services.NewAuthService(userRepo, a.cache, verifier, jobs.NewMailQueue(a.queue), a.policy, services.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		ResetURLBase: cfg.ResetURLBase,
	})

	log.Info().Int("admins", a.policy.Len()).Str("time_zone", loc.String()).Msg("application wired")
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	if a.queue != nil {
		_ = a.queue.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	database.ClosePool(a.pool)
}
