package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
)

// TotalsAggregator recomputes payroll totals from the persisted details and
// marks the payroll calculated. Running it twice yields the same totals.
type TotalsAggregator struct {
	payrollRepo payroll.PayrollRepository
	detailRepo  payroll.DetailRepository
	tx          database.Transactor
}

func NewTotalsAggregator(payrollRepo payroll.PayrollRepository, detailRepo payroll.DetailRepository, tx database.Transactor) *TotalsAggregator {
	return &TotalsAggregator{payrollRepo: payrollRepo, detailRepo: detailRepo, tx: tx}
}

// Aggregate first drops the details executionID did not write: employees that
// left the eligible set since an earlier run. Only then are totals computed.
func (a *TotalsAggregator) Aggregate(ctx context.Context, payrollID string, executionID string) (payroll.Totals, error) {
	var totals payroll.Totals
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		pruned, err := a.detailRepo.DeleteStale(ctx, payrollID, executionID)
		if err != nil {
			return fmt.Errorf("failed to prune payroll details: %w", err)
		}
		if pruned > 0 {
			slog.Info("Batch: Removed details of employees no longer eligible",
				"payroll_id", payrollID,
				"execution_id", executionID,
				"removed", pruned)
		}

		totals, err = a.payrollRepo.AggregateDetails(ctx, payrollID)
		if err != nil {
			return fmt.Errorf("failed to aggregate payroll details: %w", err)
		}
		if err := a.payrollRepo.MarkCalculated(ctx, payrollID, totals); err != nil {
			return fmt.Errorf("failed to store payroll totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.Totals{}, err
	}
	return totals, nil
}
