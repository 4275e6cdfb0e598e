package main

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

func newPayslipsCmd() *cobra.Command {
	var (
		payrollID string
		pending   bool
	)

	cmd := &cobra.Command{
		Use:   "payslips",
		Short: "Generate missing payslips for a calculated payroll",
		RunE: func(cmd *cobra.Command, args []string) error {
			if payrollID == "" && !pending {
				return errors.New("either --payroll or --pending is required")
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			var result any
			if pending {
				if err := a.PayslipService.GeneratePending(ctx); err != nil {
					return err
				}
				result = "pending payslips processed"
			} else {
				res, err := a.PayslipService.Generate(ctx, payroll.RunPayrollRequest{PayrollID: payrollID})
				if err != nil {
					return err
				}
				result = res
			}

			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "payslips",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     result,
			})
		},
	}

	cmd.Flags().StringVar(&payrollID, "payroll", "", "Payroll UUID")
	cmd.Flags().BoolVar(&pending, "pending", false, "Retry every calculated payroll with missing payslips")
	return cmd
}
