package main

import (
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/fixtures"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/agro-payroll/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the payroll tables that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolOptions{MaxConns: 1, ApplicationName: "agro-payroll-migrate"})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := postgresql.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")

			if seed {
				added, err := postgresql.SeedCatalog(cmd.Context(), db, fixtures.GetDefaultConcepts(), fixtures.GetDefaultCompanySettings())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d concepts\n", added)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Insert the default concept catalog and company settings when missing")
	return cmd
}
