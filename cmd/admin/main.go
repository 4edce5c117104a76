package main

import (
	"os"

	"github.com/Rrens/property-mcp/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
