package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
)

type PayslipJobs struct {
	payslipSvc payroll.PayslipService
	interval   time.Duration
}

func NewPayslipJobs(payslipSvc payroll.PayslipService, interval time.Duration) *PayslipJobs {
	return &PayslipJobs{payslipSvc: payslipSvc, interval: interval}
}

func (j *PayslipJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("payslip_retry", j.interval, j.RetryPendingPayslips)
}

// RetryPendingPayslips generates the payslips that earlier runs could not.
func (j *PayslipJobs) RetryPendingPayslips(ctx context.Context) error {
	slog.Info("Cron: Starting pending payslip retry job")
	return j.payslipSvc.GeneratePending(ctx)
}
