package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"civicsense/internal/domain/issue"
	"civicsense/internal/usecase/lifecycle"
)

func utcFormat(t time.Time) string { return t.UTC().Format(lifecycle.DisplayLayout) }

func TestMarshalOutputFormats(t *testing.T) {
	t.Parallel()

	summary := lifecycle.ReporterSummary{Total: 3, Submitted: 1, InProgress: 1, ResolvedLike: 1}

	payload, err := marshalOutput(summary, "json", nil)
	if err != nil {
		t.Fatalf("marshalOutput(json) error = %v", err)
	}
	var decoded map[string]int64
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded["resolved"] != 1 || decoded["inProgress"] != 1 || decoded["total"] != 3 {
		t.Fatalf("json payload = %s", payload)
	}

	payload, err = marshalOutput(summary, "yaml", nil)
	if err != nil {
		t.Fatalf("marshalOutput(yaml) error = %v", err)
	}
	var fromYAML map[string]int64
	if err := yaml.Unmarshal(payload, &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if fromYAML["in_progress"] != 1 || fromYAML["rejected"] != 0 {
		t.Fatalf("yaml payload = %s", payload)
	}

	payload, err = marshalOutput(summary, "text", func() string { return "plain\n" })
	if err != nil {
		t.Fatalf("marshalOutput(text) error = %v", err)
	}
	if string(payload) != "plain\n" {
		t.Fatalf("text payload = %q", payload)
	}
}

func TestOutputFormatRejectsUnknown(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "probe"}
	cmd.Flags().String("output", "text", "")

	if got, err := outputFormat(cmd); err != nil || got != "text" {
		t.Fatalf("outputFormat(default) = %q, %v", got, err)
	}
	if err := cmd.Flags().Set("output", " YAML "); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := outputFormat(cmd); err != nil || got != "yaml" {
		t.Fatalf("outputFormat(YAML) = %q, %v", got, err)
	}
	if err := cmd.Flags().Set("output", "xml"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := outputFormat(cmd); err == nil {
		t.Fatalf("outputFormat(xml) error = nil, want unsupported output")
	}
}

func TestRenderIssueDetail(t *testing.T) {
	t.Parallel()

	submitted := time.Date(2026, 10, 18, 9, 34, 0, 0, time.UTC)
	detail := lifecycle.IssueDetail{
		Issue: lifecycle.Issue{
			PublicID:        "CS-20261018-ABCDEF12",
			ReporterName:    "Asha Rao",
			ReporterEmail:   "asha@example.com",
			Category:        "Other",
			CustomIssueType: "Broken bench",
			Priority:        "High",
			Status:          issue.StatusInProgress,
			SubmittedAt:     submitted,
			UpdatedAt:       submitted.Add(time.Hour),
			Description:     "Bench in the park is broken",
		},
		History: []lifecycle.HistoryEntry{
			{Status: issue.StatusSubmitted, Notes: lifecycle.InitialHistoryNotes, UpdatedBy: lifecycle.SystemActor, CreatedAt: submitted},
			{Status: issue.StatusInProgress, Notes: "crew assigned", UpdatedBy: "Admin", CreatedAt: submitted.Add(time.Hour)},
		},
	}

	out := renderIssueDetail(detail, utcFormat)
	for _, want := range []string{
		"CS-20261018-ABCDEF12",
		"Other (Broken bench)",
		"Asha Rao <asha@example.com>",
		"18 Oct 2026, 09:34 AM",
		"crew assigned",
		lifecycle.InitialHistoryNotes,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("renderIssueDetail() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, lifecycle.InitialHistoryNotes) > strings.Index(out, "crew assigned") {
		t.Fatalf("history must render oldest first:\n%s", out)
	}
}

func TestRenderIssueListAndSummary(t *testing.T) {
	t.Parallel()

	if got := renderIssueList(nil, utcFormat); got != "no issues\n" {
		t.Fatalf("renderIssueList(nil) = %q", got)
	}

	out := renderIssueList([]lifecycle.IssueSummary{{
		PublicID:      "CS-20261018-ABCDEF12",
		ReporterEmail: "asha@example.com",
		Category:      "Pothole",
		Priority:      "Medium",
		Status:        issue.StatusSubmitted,
		SubmittedAt:   time.Date(2026, 10, 18, 9, 34, 0, 0, time.UTC),
	}}, utcFormat)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "issue_id") || !strings.Contains(lines[1], "Pothole") {
		t.Fatalf("renderIssueList() = %q", out)
	}

	summary := renderSummary(lifecycle.ReporterSummary{Total: 2, Rejected: 2})
	if !strings.Contains(summary, "rejected") || !strings.Contains(summary, "total") {
		t.Fatalf("renderSummary() = %q", summary)
	}
}
