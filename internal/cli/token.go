package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rrens/property-mcp/internal/app"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage signed bearer tokens",
	}

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed bearer token",
		Long:  "Issues an HS256 token signed with the bearer secret. The server accepts it when auth.jwt.enabled is set.",
		Args:  cobra.NoArgs,
		RunE:  runTokenIssue,
	}
	issue.Flags().StringVar(&tokenSubject, "subject", "", "Principal label carried by the token")
	issue.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: auth.jwt.ttl)")
	_ = issue.MarkFlagRequired("subject")

	cmd.AddCommand(issue)
	RootCmd.AddCommand(cmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	auth := cfg.Auth
	auth.JWT.Enabled = true
	tokens, err := app.TokenManager(auth)
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl == 0 {
		ttl = cfg.Auth.JWT.TTL
	}
	if ttl <= 0 {
		return errors.New("token ttl must be positive")
	}

	token, err := tokens.Issue(tokenSubject, ttl)
	if err != nil {
		return err
	}

	if !cfg.Auth.JWT.Enabled {
		printf("# auth.jwt.enabled is false; the server will reject this token until it is enabled\n")
	}
	printf("%s\n", token)
	return nil
}
