package triage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"civicsense/internal/domain/issue"
	"civicsense/internal/usecase/lifecycle"
)

type stubService struct {
	items   []lifecycle.IssueSummary
	details map[string]lifecycle.IssueDetail
	changes []lifecycle.ChangeStatusInput
	listIn  lifecycle.ListIssuesInput
	err     error
}

func (s *stubService) ListIssues(_ context.Context, input lifecycle.ListIssuesInput) ([]lifecycle.IssueSummary, error) {
	s.listIn = input
	return s.items, nil
}

func (s *stubService) GetIssueWithHistory(_ context.Context, publicID string) (lifecycle.IssueDetail, error) {
	detail, ok := s.details[publicID]
	if !ok {
		return lifecycle.IssueDetail{}, issue.ErrNotFound
	}
	return detail, nil
}

func (s *stubService) ChangeStatus(_ context.Context, input lifecycle.ChangeStatusInput) (lifecycle.HistoryEntry, error) {
	s.changes = append(s.changes, input)
	if s.err != nil {
		return lifecycle.HistoryEntry{}, s.err
	}
	return lifecycle.HistoryEntry{Status: issue.Status(input.Status), UpdatedBy: input.Actor}, nil
}

func (s *stubService) FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func newStub() *stubService {
	submitted := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return &stubService{
		items: []lifecycle.IssueSummary{
			{PublicID: "CS-20261018-0000000A", Category: "Pothole", Priority: "High", Status: issue.StatusSubmitted, SubmittedAt: submitted},
			{PublicID: "CS-20261018-0000000B", Category: "Streetlight", Priority: "Low", Status: issue.StatusInProgress, SubmittedAt: submitted},
		},
		details: map[string]lifecycle.IssueDetail{
			"CS-20261018-0000000A": {
				Issue: lifecycle.Issue{PublicID: "CS-20261018-0000000A", Category: "Pothole", ReporterEmail: "asha@example.com", Status: issue.StatusSubmitted},
				History: []lifecycle.HistoryEntry{
					{Status: issue.StatusSubmitted, Notes: "Issue has been successfully submitted by the user.", UpdatedBy: "System", CreatedAt: submitted},
				},
			},
			"CS-20261018-0000000B": {
				Issue: lifecycle.Issue{PublicID: "CS-20261018-0000000B", Category: "Streetlight", Status: issue.StatusInProgress},
			},
		},
	}
}

// run executes cmd and feeds the resulting message back into the model.
func run(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	if cmd == nil {
		return model
	}
	msg := cmd()
	next, _ := model.Update(msg)
	return next
}

func key(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestTriageLoadsQueueAndDetail(t *testing.T) {
	svc := newStub()
	model := NewTriageModel(context.Background(), svc, Options{Actor: "admin1", StatusFilter: "Submitted", Limit: 20})
	m := model.(*triageModel)

	next, cmd := m.Update(m.loadIssuesCmd()())
	next = run(t, next, cmd)

	if svc.listIn.Status != "Submitted" || svc.listIn.Limit != 20 {
		t.Fatalf("ListIssues() input = %+v", svc.listIn)
	}

	view := next.View()
	for _, want := range []string{"CS-20261018-0000000A", "[Submitted]", "Streetlight", "asha@example.com", "Submitted by System"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestTriageChangeStatusUsesActor(t *testing.T) {
	svc := newStub()
	model := NewTriageModel(context.Background(), svc, Options{Actor: "admin1"})
	m := model.(*triageModel)
	m.Update(m.loadIssuesCmd()())

	_, cmd := m.Update(key("p"))
	if cmd == nil {
		t.Fatalf("Update(p) returned no command")
	}
	m.Update(cmd())

	if len(svc.changes) != 1 {
		t.Fatalf("ChangeStatus calls = %d, want 1", len(svc.changes))
	}
	got := svc.changes[0]
	if got.PublicID != "CS-20261018-0000000A" || got.Status != "In Progress" || got.Actor != "admin1" {
		t.Fatalf("ChangeStatus() input = %+v", got)
	}
	if !strings.Contains(m.status, "is now In Progress") {
		t.Fatalf("status = %q", m.status)
	}
	if len(m.auditLogs) != 1 || !strings.Contains(m.auditLogs[0], "result=ok") {
		t.Fatalf("audit logs = %v", m.auditLogs)
	}
}

func TestTriageSkipsNoopAndReportsFailure(t *testing.T) {
	svc := newStub()
	svc.err = issue.ErrTransitionNotAllowed
	model := NewTriageModel(context.Background(), svc, Options{Actor: "admin1"})
	m := model.(*triageModel)
	m.Update(m.loadIssuesCmd()())

	if _, cmd := m.Update(key("u")); cmd != nil {
		t.Fatalf("Update(u) on a Submitted issue should not change status")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", m.selectedIndex)
	}
	_, cmd := m.Update(key("x"))
	m.Update(cmd())

	if !strings.Contains(m.status, "failed") {
		t.Fatalf("status = %q, want failure", m.status)
	}
	if !errors.Is(svc.err, issue.ErrValidation) || !strings.Contains(m.auditLogs[0], "error:") {
		t.Fatalf("audit logs = %v", m.auditLogs)
	}
}
