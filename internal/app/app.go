package app

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/config"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/document"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/storage"
	"github.com/cmlabs-hris/agro-payroll/internal/repository/postgresql"
	calendarService "github.com/cmlabs-hris/agro-payroll/internal/service/calendar"
	payrollService "github.com/cmlabs-hris/agro-payroll/internal/service/payroll"
	payslipService "github.com/cmlabs-hris/agro-payroll/internal/service/payslip"
)

// App holds the wired services shared by the API server and the batch CLI.
type App struct {
	Config         *config.Config
	DB             *database.DB
	Builder        *payrollService.ContextBuilder
	PayrollService payroll.PayrollService
	PayslipService payroll.PayslipService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,

		ApplicationName: "agro-payroll",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	// Repositories
	transactor := postgresql.NewTransactor(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	detailRepo := postgresql.NewDetailRepository(db)
	conceptRepo := postgresql.NewConceptRepository(db)
	calendarRepo := postgresql.NewCalendarRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	timeEntryRepo := postgresql.NewTimeEntryRepository(db)
	execRepo := postgresql.NewJobExecutionRepository(db)

	// Services
	calendarSvc := calendarService.NewCalendarService(calendarRepo)
	processor := payrollService.NewProcessor(nil)
	builder := payrollService.NewContextBuilder(payrollRepo, conceptRepo, calendarSvc, processor.Rules())
	job := payrollService.NewCalculationJob(
		builder,
		processor,
		payrollRepo,
		detailRepo,
		employeeRepo,
		timeEntryRepo,
		execRepo,
		transactor,
		payrollService.JobOptions{ChunkSize: cfg.Batch.ChunkSize, Workers: cfg.Batch.Workers},
	)
	payslips := payslipService.NewPayslipService(
		payrollRepo,
		detailRepo,
		employeeRepo,
		execRepo,
		calendarSvc,
		document.NewPayslipRenderer(cfg.Batch.Currency),
		fileStorage,
		cfg.Batch.Workers,
	)

	return &App{
		Config:         cfg,
		DB:             db,
		Builder:        builder,
		PayrollService: payrollService.NewPayrollService(job, execRepo),
		PayslipService: payslips,
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}
