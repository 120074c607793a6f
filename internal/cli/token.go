package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/snippet-activity/internal/auth"
	"github.com/sakif/snippet-activity/internal/model"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		userID int64
		caps   []string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a token the way the host platform would",
		Long: `Issue a signed token for a user, for testing the HTTP API without the
host platform. Capabilities default to mod/snippet:view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user is required")
			}
			tokens, err := auth.NewTokenService(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateWithDuration(userID, caps, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id")
	cmd.Flags().StringSliceVar(&caps, "cap", []string{model.CapabilityView}, "capability to grant (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")

	return cmd
}
