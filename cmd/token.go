package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"civicsense/internal/bootstrap"
	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/errs"
	"civicsense/internal/infrastructure/auth"
	"civicsense/internal/ports"
	"civicsense/internal/usecase/lifecycle"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	RunE: withAuthApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *lifecycle.Service, authn *auth.JWTAuthenticator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		subject, _ := cmd.Flags().GetString("subject")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		token, err := authn.IssueToken(ports.Principal{
			Subject: subject,
			Name:    name,
			Role:    role,
		})
		if err != nil {
			return errs.Wrap(err, "issue token")
		}

		logging.Info(ctx, "token issued", slog.String("role", role))
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), token); err != nil {
			return errs.Wrap(err, "write token output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "", "Reporter email or admin username")
	tokenCmd.Flags().String("name", "", "Display name recorded as the history actor")
	tokenCmd.Flags().String("role", ports.RoleReporter, "Role (admin|reporter)")
	_ = tokenCmd.MarkFlagRequired("subject")
}
