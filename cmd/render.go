package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"civicsense/internal/errs"
	"civicsense/internal/usecase/lifecycle"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "text"
	}
	switch format {
	case "text", "json", "yaml":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output %q (expected: text, json or yaml)", format)
	}
}

// writeOutput prints value as json or yaml, or the text rendering otherwise.
func writeOutput(cmd *cobra.Command, value any, text func() string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	payload, err := marshalOutput(value, format, text)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(payload); err != nil {
		return errs.Wrap(err, "write command output")
	}
	return nil
}

func marshalOutput(value any, format string, text func() string) ([]byte, error) {
	switch format {
	case "json":
		payload, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, errs.Wrap(err, "marshal json output")
		}
		return append(payload, '\n'), nil
	case "yaml":
		payload, err := yaml.Marshal(value)
		if err != nil {
			return nil, errs.Wrap(err, "marshal yaml output")
		}
		return payload, nil
	default:
		return []byte(text()), nil
	}
}

func renderIssueDetail(detail lifecycle.IssueDetail, format func(time.Time) string) string {
	item := detail.Issue
	var b strings.Builder

	b.WriteString(headingStyle.Render(fmt.Sprintf("%s  [%s]", item.PublicID, item.Status)))
	b.WriteString("\n")

	category := item.Category
	if item.CustomIssueType != "" {
		category = fmt.Sprintf("%s (%s)", item.Category, item.CustomIssueType)
	}
	fields := []struct {
		label string
		value string
	}{
		{"reporter", fmt.Sprintf("%s <%s>", item.ReporterName, item.ReporterEmail)},
		{"category", category},
		{"priority", item.Priority},
		{"location", item.LocationAddress},
		{"submitted", format(item.SubmittedAt)},
		{"updated", format(item.UpdatedAt)},
		{"description", item.Description},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", field.label)), field.value)
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("history"))
	b.WriteString("\n")
	var table bytes.Buffer
	w := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	for _, entry := range detail.History {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", format(entry.CreatedAt), entry.Status, entry.UpdatedBy, entry.Notes)
	}
	_ = w.Flush()
	b.Write(table.Bytes())
	return b.String()
}

func renderIssueList(items []lifecycle.IssueSummary, format func(time.Time) string) string {
	if len(items) == 0 {
		return "no issues\n"
	}

	var table bytes.Buffer
	w := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "issue_id\tstatus\tpriority\tcategory\temail\tsubmitted")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.PublicID, item.Status, item.Priority, item.Category, item.ReporterEmail, format(item.SubmittedAt))
	}
	_ = w.Flush()
	return table.String()
}

func renderSummary(summary lifecycle.ReporterSummary) string {
	var table bytes.Buffer
	w := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "metric\tcount")
	fmt.Fprintf(w, "total\t%d\n", summary.Total)
	fmt.Fprintf(w, "submitted\t%d\n", summary.Submitted)
	fmt.Fprintf(w, "in_progress\t%d\n", summary.InProgress)
	fmt.Fprintf(w, "resolved\t%d\n", summary.ResolvedLike)
	fmt.Fprintf(w, "rejected\t%d\n", summary.Rejected)
	_ = w.Flush()
	return table.String()
}
