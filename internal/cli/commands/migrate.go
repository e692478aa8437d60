package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/labbench/testbench/internal/cli/ui"
	"github.com/labbench/testbench/internal/orm/migrate"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long: `Apply and inspect the schema migrations embedded in the binary.

Applied versions are tracked in the schema_migrations table.

Available subcommands:
  up       - Apply all pending migrations
  down     - Roll back the last applied migration
  status   - Show migration status`,
	}

	cmd.AddCommand(newMigrateUpCommand(a))
	cmd.AddCommand(newMigrateDownCommand(a))
	cmd.AddCommand(newMigrateStatusCommand(a))

	return cmd
}

func newMigrateUpCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations, err := migrate.Embedded()
			if err != nil {
				return err
			}
			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := migrate.NewRunner(db, a.logger).MigrateUp(cmd.Context(), migrations)
			if err != nil {
				return err
			}
			if n == 0 {
				ui.Info(cmd.OutOrStdout(), a.noColor, "Database is up to date")
				return nil
			}
			ui.Success(cmd.OutOrStdout(), a.noColor, "Applied %d migration(s)", n)
			return nil
		},
	}
}

func newMigrateDownCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := a.deps.Confirm("Roll back the last applied migration? Data in dropped tables is lost.")
				if err != nil {
					return err
				}
				if !ok {
					ui.Warning(cmd.OutOrStdout(), a.noColor, "Rollback cancelled")
					return nil
				}
			}

			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := migrate.NewRunner(db, a.logger).MigrateDown(cmd.Context())
			if errors.Is(err, migrate.ErrNothingToRollback) {
				ui.Warning(cmd.OutOrStdout(), a.noColor, "No migrations to roll back")
				return nil
			}
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), a.noColor, "Rolled back %04d_%s", m.Version, m.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func newMigrateStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations, err := migrate.Embedded()
			if err != nil {
				return err
			}
			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			status, err := migrate.NewRunner(db, a.logger).Status(cmd.Context(), migrations)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable(out, a.noColor, "VERSION", "NAME", "STATUS", "APPLIED AT")
			table.ColorColumn(2, statusColor)
			for _, m := range status.All {
				state, at := "pending", "-"
				if m.Applied {
					state, at = "applied", m.AppliedAt.UTC().Format("2006-01-02 15:04:05")
				}
				table.AddRow(fmt.Sprintf("%04d", m.Version), m.Name, state, at)
			}
			table.Render()
			fmt.Fprintln(out)
			fmt.Fprintln(out, status.Summary())
			return nil
		},
	}
}

func statusColor(state string) *color.Color {
	if state == "applied" {
		return color.New(color.FgGreen)
	}
	return color.New(color.FgYellow)
}
