package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "invoiceflow/docs"
	"invoiceflow/internal/common"
	"invoiceflow/internal/handlers"
	"invoiceflow/internal/jobs"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func newServeCmd() *cobra.Command {
	var withScheduler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(ctx, a, withScheduler)
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "scheduler", true, "run low stock checks, report warming and daily backups in this process")
	return cmd
}

func serve(ctx context.Context, a *app, withScheduler bool) error {
	log := logger.WithComponent("server")

	if withScheduler {
		scheduler, err := jobs.NewJobScheduler(ctx, jobs.SchedulerConfig{
			Location:   a.cfg.Location(),
			BackupCron: a.cfg.BackupCron,
		}, jobs.NewInventoryAlertService(a.inventory), jobs.NewReportRefreshService(a.reports), a.backups)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { _ = scheduler.Stop() }()
	}

	e := newEcho(a)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.Port)
		log.Info().Str("addr", addr).Str("version", middleware.Version).Str("env", a.cfg.AppEnv).Msg("invoiceflow server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	a.state.SaveSnapshot(context.Background())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = common.NewValidator()

	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.SecureHeaders(a.cfg.IsProduction()))
	e.Use(a.metrics.Middleware())

	health := handlers.NewHealthHandlers(a.pool, a.cache, handlers.PingFunc(func(ctx context.Context) error {
		return a.minio.EnsureBucketExists(ctx, a.cfg.InvoiceBucket)
	}))
	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/health/live", health.LivenessCheck)
	e.GET("/metrics", a.metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	tracker := a.cache.AccessDeniedTracker()

	v1 := e.Group("/v1")
	v1.Use(middleware.VersionHeader("v1"))
	v1.Use(middleware.RateLimit(a.cfg.RateLimitPerMinute))
	v1.Use(middleware.SessionMiddleware(a.auth, a.cache))

	authHandlers := handlers.NewAuthHandlers(a.auth, a.cache, a.policy, tracker)
	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/oauth", authHandlers.LoginOAuth)
	auth.POST("/logout", authHandlers.Logout)
	auth.POST("/password-reset", authHandlers.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandlers.ConfirmPasswordReset)
	auth.GET("/session", authHandlers.Session)
	auth.GET("/session/stream", authHandlers.SessionStream)

	admin := v1.Group("")
	admin.Use(middleware.AdminGate(a.policy, tracker))

	inventory := handlers.NewInventoryHandlers(a.inventory)
	admin.GET("/inventory", inventory.ListItems)
	admin.POST("/inventory", inventory.CreateItem)
	admin.GET("/inventory/search", inventory.SearchItems)
	admin.POST("/inventory/describe", inventory.DescribeItem)
	admin.GET("/inventory/:id", inventory.GetItem)
	admin.PUT("/inventory/:id", inventory.UpdateItem)
	admin.POST("/inventory/:id/adjust", inventory.AdjustStock)
	admin.DELETE("/inventory/:id", inventory.DeleteItem)

	sales := handlers.NewSalesHandlers(a.sales)
	admin.GET("/sales/:kind", sales.GetPending)
	admin.DELETE("/sales/:kind", sales.ClearSale)
	admin.POST("/sales/:kind/lines", sales.AddLine)
	admin.DELETE("/sales/:kind/lines/:lineId", sales.RemoveLine)
	admin.POST("/sales/:kind/finalize", sales.Finalize)
	admin.POST("/sales/invoice/new", sales.NewInvoice)
	admin.PUT("/sales/invoice/buyer", sales.SetBuyer)
	admin.PUT("/sales/direct-sale/sale-date", sales.SetSaleDate)

	invoices := handlers.NewInvoiceHandlers(a.invoices)
	admin.GET("/invoices", invoices.GetInvoices)
	admin.GET("/invoices/:number", invoices.GetInvoice)
	admin.PUT("/invoices/:number/payment", invoices.RecordPayment)
	admin.GET("/invoices/:number/pdf", invoices.GetInvoicePDF)
	admin.GET("/direct-sales", invoices.GetDirectSales)
	admin.GET("/direct-sales/:number", invoices.GetDirectSale)

	reports := handlers.NewReportHandlers(a.reports)
	admin.GET("/reports/profit-loss", reports.ProfitLoss)
	admin.GET("/reports/inventory", reports.InventoryOverview)

	settings := handlers.NewSettingsHandlers(a.settings)
	admin.GET("/settings", settings.GetSettings)
	admin.PUT("/settings/buyer-address", settings.UpdateBuyerAddress)
	admin.GET("/buyers", settings.ListBuyers)
	admin.GET("/buyers/:gstin", settings.GetBuyer)

	backup := handlers.NewBackupHandlers(a.backups, a.cfg.Location())
	admin.GET("/backup/export", backup.Export)
	admin.POST("/backup/import", backup.Import)

	shortcuts := handlers.NewShortcutHandlers(a.shortcuts)
	admin.POST("/shortcuts", shortcuts.Dispatch)

	return e
}
