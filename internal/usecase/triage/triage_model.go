package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/usecase/lifecycle"
)

const maxShownHistory = 5
const maxAuditLines = 8

// Service is the lifecycle surface the console drives.
type Service interface {
	ListIssues(ctx context.Context, input lifecycle.ListIssuesInput) ([]lifecycle.IssueSummary, error)
	GetIssueWithHistory(ctx context.Context, publicID string) (lifecycle.IssueDetail, error)
	ChangeStatus(ctx context.Context, input lifecycle.ChangeStatusInput) (lifecycle.HistoryEntry, error)
	FormatTimestamp(t time.Time) string
}

type Options struct {
	Actor           string
	StatusFilter    string
	CategoryFilter  string
	Limit           int
	RefreshInterval time.Duration
}

// statusKeys maps console keys to the status they apply.
var statusKeys = map[string]issue.Status{
	"p": issue.StatusInProgress,
	"v": issue.StatusResolved,
	"c": issue.StatusCompleted,
	"x": issue.StatusRejected,
	"u": issue.StatusSubmitted,
}

type triageModel struct {
	ctx             context.Context
	service         Service
	actor           string
	statusFilter    string
	categoryFilter  string
	limit           int
	refreshInterval time.Duration

	issues        []lifecycle.IssueSummary
	selectedIndex int
	detail        lifecycle.IssueDetail
	hasDetail     bool
	status        string
	auditLogs     []string
}

type issuesLoadedMsg struct {
	items []lifecycle.IssueSummary
	err   error
}

type issueDetailLoadedMsg struct {
	publicID string
	detail   lifecycle.IssueDetail
	err      error
}

type tickMsg struct{}

type actionDoneMsg struct {
	publicID string
	target   issue.Status
	entry    lifecycle.HistoryEntry
	err      error
}

func NewTriageModel(ctx context.Context, service Service, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &triageModel{
		ctx:             ctx,
		service:         service,
		actor:           firstNonEmpty(strings.TrimSpace(options.Actor), "admin"),
		statusFilter:    strings.TrimSpace(options.StatusFilter),
		categoryFilter:  strings.TrimSpace(options.CategoryFilter),
		limit:           options.Limit,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *triageModel) Init() tea.Cmd {
	return tea.Batch(m.loadIssuesCmd(), m.tickCmd())
}

func (m *triageModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadIssuesCmd(), m.tickCmd())
	case issuesLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.issues = msg.items
		if len(m.issues) == 0 {
			m.selectedIndex = 0
			m.hasDetail = false
			m.status = "queue is empty"
			return m, nil
		}
		if m.selectedIndex >= len(m.issues) {
			m.selectedIndex = len(m.issues) - 1
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		m.status = fmt.Sprintf("refreshed, %d issues", len(m.issues))
		return m, m.loadSelectedIssueDetailCmd()
	case issueDetailLoadedMsg:
		if !m.isCurrentSelectedIssue(msg.publicID) {
			return m, nil
		}
		if msg.err != nil {
			m.hasDetail = false
			m.status = "detail failed: " + msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		m.hasDetail = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("set %s failed: %v", msg.target, msg.err)
		} else {
			m.status = fmt.Sprintf("%s is now %s", msg.publicID, msg.target)
		}
		m.appendAuditLog(msg.publicID, msg.target, msg.err)
		return m, m.loadIssuesCmd()
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadIssuesCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				return m, m.loadSelectedIssueDetailCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.issues)-1 {
				m.selectedIndex++
				return m, m.loadSelectedIssueDetailCmd()
			}
			return m, nil
		}
		if target, ok := statusKeys[key]; ok {
			return m, m.changeStatusCmd(target)
		}
	}
	return m, nil
}

func (m *triageModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("CivicSense Triage"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"actor=%s status=%s category=%s refresh=%s",
		m.actor,
		firstNonEmpty(m.statusFilter, "all"),
		firstNonEmpty(m.categoryFilter, "all"),
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Queue"))
	builder.WriteString("\n")
	if len(m.issues) == 0 {
		builder.WriteString(dimStyle.Render("- no issues"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.issues {
			line := fmt.Sprintf(
				"%s [%s] %s priority=%s submitted=%s",
				item.PublicID,
				item.Status,
				item.Category,
				item.Priority,
				m.service.FormatTimestamp(item.SubmittedAt),
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if !m.hasDetail {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	} else {
		current := m.detail.Issue
		builder.WriteString(fmt.Sprintf("Issue: %s\n", current.PublicID))
		builder.WriteString(fmt.Sprintf("Status: %s\n", current.Status))
		builder.WriteString(fmt.Sprintf("Category: %s\n", firstNonEmpty(current.CustomIssueType, current.Category)))
		builder.WriteString(fmt.Sprintf("Reporter: %s <%s>\n", firstNonEmpty(current.ReporterName, "-"), current.ReporterEmail))
		builder.WriteString(fmt.Sprintf("Location: %s\n", firstNonEmpty(current.LocationAddress, current.City, "-")))
		builder.WriteString(fmt.Sprintf("Description: %s\n", firstNonEmptyLine(current.Description)))
		builder.WriteString("\nHistory:\n")
		history := m.detail.History
		start := len(history) - maxShownHistory
		if start < 0 {
			start = 0
		}
		for _, entry := range history[start:] {
			builder.WriteString(fmt.Sprintf("- %s %s by %s: %s\n",
				m.service.FormatTimestamp(entry.CreatedAt),
				entry.Status,
				entry.UpdatedBy,
				firstNonEmptyLine(entry.Notes),
			))
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  p in progress  v resolved  c completed  x rejected  u submitted  q quit"))
	return builder.String()
}

func (m *triageModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *triageModel) loadIssuesCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.service.ListIssues(m.ctx, lifecycle.ListIssuesInput{
			Status:   m.statusFilter,
			Category: m.categoryFilter,
			Limit:    m.limit,
		})
		if err != nil {
			return issuesLoadedMsg{err: err}
		}
		return issuesLoadedMsg{items: items}
	}
}

func (m *triageModel) loadSelectedIssueDetailCmd() tea.Cmd {
	selected, ok := m.selectedIssue()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		detail, err := m.service.GetIssueWithHistory(m.ctx, selected.PublicID)
		return issueDetailLoadedMsg{publicID: selected.PublicID, detail: detail, err: err}
	}
}

func (m *triageModel) changeStatusCmd(target issue.Status) tea.Cmd {
	selected, ok := m.selectedIssue()
	if !ok {
		m.status = "no issue selected"
		return nil
	}
	if selected.Status == target {
		m.status = fmt.Sprintf("%s is already %s", selected.PublicID, target)
		return nil
	}
	m.status = fmt.Sprintf("setting %s to %s...", selected.PublicID, target)

	return func() tea.Msg {
		entry, err := m.service.ChangeStatus(m.ctx, lifecycle.ChangeStatusInput{
			PublicID: selected.PublicID,
			Status:   target.String(),
			Actor:    m.actor,
		})
		return actionDoneMsg{publicID: selected.PublicID, target: target, entry: entry, err: err}
	}
}

func (m *triageModel) selectedIssue() (lifecycle.IssueSummary, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.issues) {
		return lifecycle.IssueSummary{}, false
	}
	return m.issues[m.selectedIndex], true
}

func (m *triageModel) isCurrentSelectedIssue(publicID string) bool {
	selected, ok := m.selectedIssue()
	return ok && selected.PublicID == publicID
}

func (m *triageModel) appendAuditLog(publicID string, target issue.Status, opErr error) {
	outcome := "ok"
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s actor=%s issue=%s status=%s result=%s", timestamp, m.actor, publicID, target, outcome)
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	logging.Info(m.ctx, "triage console action",
		slog.String("actor", m.actor),
		slog.String("public_id", publicID),
		slog.String("status", target.String()),
		slog.String("result", outcome),
	)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstNonEmptyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "-"
}
