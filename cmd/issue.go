package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"civicsense/internal/bootstrap"
	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/usecase/lifecycle"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Create, transition, inspect and delete civic issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a new issue",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		sub, err := submissionFromFlags(cmd)
		if err != nil {
			return err
		}

		created, err := svc.CreateIssue(ctx, sub)
		if err != nil {
			logging.Error(ctx, "create issue failed", slog.String("kind", issue.Classify(err)), slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create issue")
		}

		return writeOutput(cmd, created, func() string {
			return fmt.Sprintf("created issue: %s status=%s\n", created.PublicID, created.Status)
		})
	}),
}

var issueStatusCmd = &cobra.Command{
	Use:   "status <public-id> <status>",
	Short: "Change an issue's status and record it in the history",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		args := cmd.Flags().Args()
		actor, _ := cmd.Flags().GetString("actor")
		notes, _ := cmd.Flags().GetString("notes")

		entry, err := svc.ChangeStatus(ctx, lifecycle.ChangeStatusInput{
			PublicID: args[0],
			Status:   args[1],
			Notes:    notes,
			Actor:    actor,
		})
		if err != nil {
			logging.Error(ctx, "change issue status failed", slog.String("kind", issue.Classify(err)), slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "change issue status")
		}

		return writeOutput(cmd, entry, func() string {
			return fmt.Sprintf("issue %s is now %s (%s)\n", strings.ToUpper(strings.TrimSpace(args[0])), entry.Status, entry.Notes)
		})
	}),
}

var issueDeleteCmd = &cobra.Command{
	Use:   "delete <public-id>",
	Short: "Delete an issue and its history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		publicID := cmd.Flags().Arg(0)
		if err := svc.DeleteIssue(ctx, publicID); err != nil {
			logging.Error(ctx, "delete issue failed", slog.String("kind", issue.Classify(err)), slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete issue")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted issue: %s\n", strings.ToUpper(strings.TrimSpace(publicID))); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

var issueShowCmd = &cobra.Command{
	Use:   "show <public-id>",
	Short: "Show an issue with its full status history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		detail, err := svc.GetIssueWithHistory(ctx, cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "show issue")
		}

		return writeOutput(cmd, detail, func() string {
			return renderIssueDetail(detail, svc.FormatTimestamp)
		})
	}),
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		reporter, _ := cmd.Flags().GetString("reporter")
		status, _ := cmd.Flags().GetString("status")
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		var (
			items []lifecycle.IssueSummary
			err   error
		)
		if strings.TrimSpace(reporter) != "" {
			items, err = svc.ListIssuesForReporter(ctx, reporter)
		} else {
			items, err = svc.ListIssues(ctx, lifecycle.ListIssuesInput{
				Status:   status,
				Category: category,
				Limit:    limit,
				Offset:   offset,
			})
		}
		if err != nil {
			return errs.Wrap(err, "list issues")
		}

		return writeOutput(cmd, items, func() string {
			return renderIssueList(items, svc.FormatTimestamp)
		})
	}),
}

var issueSummaryCmd = &cobra.Command{
	Use:   "summary <reporter-email>",
	Short: "Count a reporter's issues by status",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *lifecycle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		summary, err := svc.Summarize(ctx, cmd.Flags().Arg(0))
		if err != nil {
			return errs.Wrap(err, "summarize issues")
		}

		return writeOutput(cmd, summary, func() string {
			return renderSummary(summary)
		})
	}),
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text|json|yaml)")

	issueCmd.AddCommand(issueCreateCmd)
	issueCreateCmd.Flags().String("name", "", "Reporter full name")
	issueCreateCmd.Flags().String("email", "", "Reporter email (contact key)")
	issueCreateCmd.Flags().String("mobile", "", "Reporter mobile number")
	issueCreateCmd.Flags().Int("age", -1, "Reporter age (omit when unknown)")
	issueCreateCmd.Flags().String("gender", "", "Reporter gender")
	issueCreateCmd.Flags().String("pincode", "", "Pincode")
	issueCreateCmd.Flags().String("city", "", "City")
	issueCreateCmd.Flags().String("district", "", "District")
	issueCreateCmd.Flags().String("state", "", "State")
	issueCreateCmd.Flags().String("country", "", "Country")
	issueCreateCmd.Flags().String("residential-address", "", "Residential address")
	issueCreateCmd.Flags().String("work-address", "", "Work address")
	issueCreateCmd.Flags().String("category", "", "Issue category")
	issueCreateCmd.Flags().String("custom-type", "", "Custom issue type when category is Other")
	issueCreateCmd.Flags().String("description", "", "Issue description")
	issueCreateCmd.Flags().Float64("lat", 0, "Latitude")
	issueCreateCmd.Flags().Float64("long", 0, "Longitude")
	issueCreateCmd.Flags().String("location", "", "Location address")
	issueCreateCmd.Flags().String("priority", "Medium", "Priority (Low|Medium|High|Critical)")
	issueCreateCmd.Flags().String("image", "", "Stored image filename")

	issueCmd.AddCommand(issueStatusCmd)
	issueStatusCmd.Flags().String("actor", "", "Actor recorded on the history entry")
	issueStatusCmd.Flags().String("notes", "", "History notes (defaults to a generated message)")
	_ = issueStatusCmd.MarkFlagRequired("actor")

	issueCmd.AddCommand(issueDeleteCmd)
	issueCmd.AddCommand(issueShowCmd)

	issueCmd.AddCommand(issueListCmd)
	issueListCmd.Flags().String("reporter", "", "Only issues submitted by this reporter email")
	issueListCmd.Flags().String("status", "", "Status filter")
	issueListCmd.Flags().String("category", "", "Category filter")
	issueListCmd.Flags().Int("limit", 50, "Maximum rows (capped at 200)")
	issueListCmd.Flags().Int("offset", 0, "Rows to skip")

	issueCmd.AddCommand(issueSummaryCmd)
}

func submissionFromFlags(cmd *cobra.Command) (issue.Submission, error) {
	flags := cmd.Flags()
	str := func(name string) string {
		value, _ := flags.GetString(name)
		return value
	}

	sub := issue.Submission{
		ReporterName:       str("name"),
		ReporterEmail:      str("email"),
		Mobile:             str("mobile"),
		Gender:             str("gender"),
		Pincode:            str("pincode"),
		City:               str("city"),
		District:           str("district"),
		State:              str("state"),
		Country:            str("country"),
		ResidentialAddress: str("residential-address"),
		WorkAddress:        str("work-address"),
		Category:           str("category"),
		CustomIssueType:    str("custom-type"),
		Description:        str("description"),
		LocationAddress:    str("location"),
		Priority:           str("priority"),
		ImageFilename:      str("image"),
	}

	if age, _ := flags.GetInt("age"); age >= 0 {
		sub.Age = &age
	}
	if flags.Changed("lat") != flags.Changed("long") {
		return issue.Submission{}, fmt.Errorf("%w: --lat and --long must be given together", issue.ErrValidation)
	}
	if flags.Changed("lat") {
		lat, _ := flags.GetFloat64("lat")
		long, _ := flags.GetFloat64("long")
		sub.Latitude = &lat
		sub.Longitude = &long
	}
	return sub, nil
}
