package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicsense/internal/domain/issue"
	"civicsense/internal/ports"
)

// GetIssueWithHistory returns the issue and its history ordered oldest first.
func (s *Service) GetIssueWithHistory(ctx context.Context, publicID string) (IssueDetail, error) {
	if err := s.ready(ctx); err != nil {
		return IssueDetail{}, err
	}

	normalized, err := normalizePublicID(publicID)
	if err != nil {
		return IssueDetail{}, err
	}
	return s.loadDetail(ctx, normalized)
}

// GetIssueForReporter is GetIssueWithHistory limited to issues the reporter submitted.
// Another reporter's issue is reported as not found.
func (s *Service) GetIssueForReporter(ctx context.Context, publicID string, contactKey string) (IssueDetail, error) {
	if err := s.ready(ctx); err != nil {
		return IssueDetail{}, err
	}

	key, err := normalizeContactKey(contactKey)
	if err != nil {
		return IssueDetail{}, err
	}
	normalized, err := normalizePublicID(publicID)
	if err != nil {
		return IssueDetail{}, err
	}

	detail, err := s.loadDetail(ctx, normalized)
	if err != nil {
		return IssueDetail{}, err
	}
	if detail.Issue.ReporterEmail != key {
		return IssueDetail{}, notFound(normalized)
	}
	return detail, nil
}

// loadDetail reads the issue and its history in one transaction so the
// issue status always matches the last history entry.
func (s *Service) loadDetail(ctx context.Context, publicID string) (IssueDetail, error) {
	var detail IssueDetail
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		row, err := s.repo.GetIssue(txCtx, publicID)
		if err != nil {
			if errors.Is(err, ports.ErrIssueNotFound) {
				return notFound(publicID)
			}
			return classifyErr(err, "get issue")
		}

		history, err := s.repo.ListStatusHistory(txCtx, publicID)
		if err != nil {
			return classifyErr(err, "list status history")
		}

		detail = IssueDetail{
			Issue:   toIssue(row),
			History: toHistory(history),
		}
		return nil
	})
	if err != nil {
		return IssueDetail{}, classifyErr(err, "read issue detail")
	}
	return detail, nil
}

// ListIssuesForReporter returns every issue the reporter submitted, newest first.
func (s *Service) ListIssuesForReporter(ctx context.Context, contactKey string) ([]IssueSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	key, err := normalizeContactKey(contactKey)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListIssues(ctx, ports.IssueFilter{ReporterEmail: key})
	if err != nil {
		return nil, classifyErr(err, "list reporter issues")
	}
	return toSummaries(rows), nil
}

// ListIssues is the admin queue: optional status and category filters, newest first.
func (s *Service) ListIssues(ctx context.Context, input ListIssuesInput) ([]IssueSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if input.Limit < 0 || input.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", issue.ErrValidation)
	}

	filter := ports.IssueFilter{
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if input.Status != "" {
		status, err := issue.ParseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status.String()
	}
	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	rows, err := s.repo.ListIssues(ctx, filter)
	if err != nil {
		return nil, classifyErr(err, "list issues")
	}
	return toSummaries(rows), nil
}

// CheckStatus is the public lookup by id. It exposes no reporter details.
func (s *Service) CheckStatus(ctx context.Context, publicID string) (StatusCheck, error) {
	detail, err := s.GetIssueWithHistory(ctx, publicID)
	if err != nil {
		return StatusCheck{}, err
	}

	return StatusCheck{
		PublicID:        detail.Issue.PublicID,
		Category:        detail.Issue.Category,
		LocationAddress: detail.Issue.LocationAddress,
		Priority:        detail.Issue.Priority,
		Status:          detail.Issue.Status,
		SubmittedAt:     detail.Issue.SubmittedAt,
		History:         detail.History,
	}, nil
}

// Summarize counts the reporter's issues by status. Resolved and Completed are counted together.
func (s *Service) Summarize(ctx context.Context, contactKey string) (ReporterSummary, error) {
	if err := s.ready(ctx); err != nil {
		return ReporterSummary{}, err
	}

	key, err := normalizeContactKey(contactKey)
	if err != nil {
		return ReporterSummary{}, err
	}

	counts, err := s.repo.CountIssuesByStatus(ctx, key)
	if err != nil {
		return ReporterSummary{}, classifyErr(err, "count reporter issues")
	}

	var summary ReporterSummary
	for raw, count := range counts {
		summary.Total += count
		status := issue.Status(raw)
		switch {
		case status == issue.StatusSubmitted:
			summary.Submitted += count
		case status == issue.StatusInProgress:
			summary.InProgress += count
		case status.IsResolvedLike():
			summary.ResolvedLike += count
		case status == issue.StatusRejected:
			summary.Rejected += count
		}
	}
	return summary, nil
}

// FormatTimestamp renders t in the configured display timezone.
func (s *Service) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.location).Format(DisplayLayout)
}

// Policy reports the active transition policy.
func (s *Service) Policy() issue.TransitionPolicy {
	return s.policy
}

func toSummaries(rows []ports.Issue) []IssueSummary {
	items := make([]IssueSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSummary(row))
	}
	return items
}
