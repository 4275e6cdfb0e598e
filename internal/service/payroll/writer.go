package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
)

// DetailWriter persists processed details. Writing the same employee twice
// replaces the earlier row, so a retried chunk never duplicates.
type DetailWriter struct {
	detailRepo payroll.DetailRepository
}

func NewDetailWriter(detailRepo payroll.DetailRepository) *DetailWriter {
	return &DetailWriter{detailRepo: detailRepo}
}

func (w *DetailWriter) Write(ctx context.Context, details []payroll.PayrollDetail) (int, error) {
	if len(details) == 0 {
		return 0, nil
	}
	n, err := w.detailRepo.UpsertBatch(ctx, details)
	if err != nil {
		return 0, fmt.Errorf("failed to write payroll details: %w", err)
	}
	return n, nil
}
