package cli

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/property-mcp/internal/repository/redis"
	"github.com/Rrens/property-mcp/internal/service"
)

var flushProperty string

func init() {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered content cache",
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Delete cached listing content",
		Long:  "Deletes rendered listing content from Redis, for one property or for all of them.",
		Args:  cobra.NoArgs,
		RunE:  runCacheFlush,
	}
	flush.Flags().StringVar(&flushProperty, "property", "", "Only flush content of this property id")

	cmd.AddCommand(flush)
	RootCmd.AddCommand(cmd)
}

func runCacheFlush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled {
		return errors.New("redis is disabled, there is no content cache to flush")
	}

	var propertyID string
	if flushProperty != "" {
		id, err := service.ParsePropertyID(flushProperty)
		if err != nil {
			return err
		}
		propertyID = id.String()
	}

	client, err := redis.NewClient(cmd.Context(), cfg.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	removed, err := redis.NewContentCache(client, cfg.Redis.CacheTTL).Flush(cmd.Context(), propertyID)
	if err != nil {
		return err
	}

	log.Info().Int64("removed", removed).Str("property_id", propertyID).Msg("Content cache flushed")
	printf("removed %d cached entries\n", removed)
	return nil
}
