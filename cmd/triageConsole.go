package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"civicsense/internal/bootstrap"
	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/errs"
	"civicsense/internal/usecase/lifecycle"
	"civicsense/internal/usecase/triage"
)

var consoleTriageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Start the admin triage console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		actor, _ := cmd.Flags().GetString("actor")
		status, _ := cmd.Flags().GetString("status")
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := triage.NewTriageModel(ctx, svc, triage.Options{
			Actor:           actor,
			StatusFilter:    status,
			CategoryFilter:  category,
			Limit:           limit,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run triage console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleTriageCmd)
	consoleTriageCmd.Flags().String("actor", "", "Admin name recorded on status changes")
	_ = consoleTriageCmd.MarkFlagRequired("actor")
	consoleTriageCmd.Flags().String("status", "", "Optional status filter")
	consoleTriageCmd.Flags().String("category", "", "Optional category filter")
	consoleTriageCmd.Flags().Int("limit", 50, "Maximum issues loaded per refresh")
	consoleTriageCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
