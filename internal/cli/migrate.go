package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rrens/property-mcp/migrations"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the SQL schema",
		Long:  "Runs the embedded migrations for the postgres and mysql drivers. The sqlite and mongo drivers create their schema when opened.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  runMigrate(migrations.Up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE:  runMigrate(migrations.Down),
		},
	)

	RootCmd.AddCommand(cmd)
}

func runMigrate(direction migrations.Direction) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if !migrations.Supported(cfg.Database.Driver) {
			printf("Driver %s manages its own schema, nothing to migrate\n", cfg.Database.Driver)
			return nil
		}

		if err := migrations.Run(cfg.Database.Driver, cfg.Database.URL, direction); err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		printf("Migrations %s applied for %s\n", direction, cfg.Database.Driver)
		return nil
	}
}
