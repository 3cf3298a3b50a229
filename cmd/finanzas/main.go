package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	apphttp "finanzas/internal/http"
	"finanzas/internal/live"
	"finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	collector := metrics.NewCollector()
	deps := services.Deps{Store: res.Store, Metrics: collector, Logger: logger}
	if res.AMQP != nil {
		deps.Publisher = res.AMQP
	}

	view := live.New(store.NewRepositories(res.Store), collector, logger)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:          services.NewLedgerService(deps),
		Accounts:        services.NewAccountService(deps),
		Registry:        services.NewRegistryService(deps),
		Budgets:         services.NewBudgetService(deps),
		View:            view,
		Metrics:         collector,
		Logger:          logger,
		Ping:            res.Ping,
		Upcoming:        cfg.UpcomingDeadlines,
		WritesPerMinute: cfg.WritesPerMinute,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return view.Run(ctx) })
	g.Go(func() error {
		logger.Info("Starting finanzas server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", res.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server", "timeout", cfg.ShutdownTimeout)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
