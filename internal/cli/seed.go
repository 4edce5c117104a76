package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rrens/property-mcp/internal/app"
	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository/seed"
)

var seedFile string

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample property catalog",
		Long:  "Inserts sample properties whose id is not stored yet. Running it twice changes nothing.",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	cmd.Flags().StringVar(&seedFile, "file", "", "YAML catalog to load instead of the built-in sample")

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	properties, err := loadCatalog(seedFile, time.Now())
	if err != nil {
		return err
	}

	store, err := app.OpenStore(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	inserted, err := store.UpsertProperties(cmd.Context(), properties)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	printf("Seeded %d of %d properties\n", inserted, len(properties))
	return nil
}

func loadCatalog(path string, now time.Time) ([]domain.Property, error) {
	if path == "" {
		return seed.Sample(now)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return seed.Parse(data, now)
}
