package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/app"
	"github.com/cmlabs-hris/agro-payroll/internal/config"
	appHTTP "github.com/cmlabs-hris/agro-payroll/internal/handler/http"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	logger.Setup(cfg.App)

	if err := run(cfg); err != nil {
		slog.Error("Server: exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewPayslipJobs(a.PayslipService, cfg.Batch.PayslipRetryInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{App: cfg.App, FilesBasePath: cfg.Storage.BasePath},
		JWTService,
		appHTTP.NewPayrollHandler(a.PayrollService, a.PayslipService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server: listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
