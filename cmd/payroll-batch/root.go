package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/agro-payroll/internal/app"
	"github.com/cmlabs-hris/agro-payroll/internal/config"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "payroll-batch",
		Short:        "Run payroll calculation and payslip jobs",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newCalculateCmd(),
		newPayslipsCmd(),
		newValidateCatalogCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return cmd
}

// signalContext cancels on SIGINT/SIGTERM so a running job stops between
// chunks and can be resumed.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.App)
	return cfg, nil
}

func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
