package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tablegate/tablegate/internal/config"
	"github.com/tablegate/tablegate/internal/server/middleware"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a Bearer token signed with the configured auth secret",
		Long: `Mints a JWT for subject, signed with server.auth_secret from the config
file. Only useful once that secret is set; an empty secret means the
server runs without authentication.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if f.Server.AuthSecret == "" {
				return fmt.Errorf("server.auth_secret is not set in %s", cfgFile)
			}
			tok, err := middleware.IssueToken(f.Server.AuthSecret, subject, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Println(tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("subject")

	return cmd
}
