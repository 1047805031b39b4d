package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/ports"
)

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("issue repository is required")
	}
	if s.uow == nil {
		return errors.New("issue unit of work is required")
	}
	return nil
}

// classifyErr maps a repository failure onto the lifecycle taxonomy.
// Anything unrecognised is a storage failure.
func classifyErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, issue.ErrNotFound), errors.Is(err, issue.ErrValidation):
		return err
	case errors.Is(err, ports.ErrIssueNotFound):
		return errs.Mark(errs.Wrap(err, msg), issue.ErrNotFound)
	case errors.Is(err, ports.ErrDuplicatePublicID):
		return errs.Mark(errs.Wrap(err, msg), issue.ErrDuplicateIdentifier)
	case errors.Is(err, issue.ErrStorage):
		return errs.Wrap(err, msg)
	default:
		return errs.Mark(errs.Wrap(errs.WithStack(err), msg), issue.ErrStorage)
	}
}

// normalizePublicID accepts ids in any case. A malformed id cannot name an
// issue, so it is reported as not found.
func normalizePublicID(raw string) (string, error) {
	publicID, err := issue.ParsePublicID(raw)
	if err != nil {
		return "", notFound(raw)
	}
	return publicID, nil
}

func notFound(publicID string) error {
	return fmt.Errorf("%w: %s", issue.ErrNotFound, strings.TrimSpace(publicID))
}

func normalizeContactKey(raw string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", fmt.Errorf("%w: reporter contact", issue.ErrMissingField)
	}
	return key, nil
}

func toIssue(row ports.Issue) Issue {
	return Issue{
		ID:                 row.ID,
		PublicID:           row.PublicID,
		ReporterName:       row.ReporterName,
		ReporterEmail:      row.ReporterEmail,
		Mobile:             row.Mobile,
		Age:                row.Age,
		Gender:             row.Gender,
		Pincode:            row.Pincode,
		City:               row.City,
		District:           row.District,
		State:              row.State,
		Country:            row.Country,
		ResidentialAddress: row.ResidentialAddress,
		WorkAddress:        row.WorkAddress,
		Category:           row.Category,
		CustomIssueType:    row.CustomIssueType,
		Description:        row.Description,
		Latitude:           row.Latitude,
		Longitude:          row.Longitude,
		LocationAddress:    row.LocationAddress,
		Priority:           row.Priority,
		ImageFilename:      row.ImageFilename,
		Status:             issue.Status(row.Status),
		SubmittedAt:        row.SubmittedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func toSummary(row ports.Issue) IssueSummary {
	return IssueSummary{
		PublicID:        row.PublicID,
		ReporterEmail:   row.ReporterEmail,
		Category:        row.Category,
		Priority:        row.Priority,
		Status:          issue.Status(row.Status),
		LocationAddress: row.LocationAddress,
		SubmittedAt:     row.SubmittedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func toHistory(rows []ports.StatusHistoryEntry) []HistoryEntry {
	items := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, HistoryEntry{
			Status:    issue.Status(row.Status),
			Notes:     row.Notes,
			UpdatedBy: row.UpdatedBy,
			CreatedAt: row.CreatedAt,
		})
	}
	return items
}

func fromSubmission(sub issue.Submission, publicID string) ports.Issue {
	return ports.Issue{
		PublicID:           publicID,
		ReporterName:       sub.ReporterName,
		ReporterEmail:      sub.ReporterEmail,
		Mobile:             sub.Mobile,
		Age:                sub.Age,
		Gender:             sub.Gender,
		Pincode:            sub.Pincode,
		City:               sub.City,
		District:           sub.District,
		State:              sub.State,
		Country:            sub.Country,
		ResidentialAddress: sub.ResidentialAddress,
		WorkAddress:        sub.WorkAddress,
		Category:           sub.Category,
		CustomIssueType:    sub.CustomIssueType,
		Description:        sub.Description,
		Latitude:           sub.Latitude,
		Longitude:          sub.Longitude,
		LocationAddress:    sub.LocationAddress,
		Priority:           sub.Priority,
		ImageFilename:      sub.ImageFilename,
	}
}
