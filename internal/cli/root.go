// Package cli implements the admin commands: migrations, seed data and tokens.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rrens/property-mcp/internal/config"
	"github.com/Rrens/property-mcp/internal/logger"
)

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Administer the real-estate MCP server",
	Long:         "Schema migrations, sample data and signed bearer tokens for the real-estate MCP server.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or ./configs/config.yaml)")
}

// loadConfig reads configuration and sets up console logging
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logging := cfg.Logging
	logging.File = ""
	logging.Format = "console"
	if _, err := logger.Setup(logging, false, cfg.App.Debug); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}
