package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/ports"
)

// CreateIssue validates the submission, assigns a fresh public id and stores the
// issue together with its initial Submitted history entry in one transaction.
// A public id collision is retried with a new id up to the configured attempt count.
func (s *Service) CreateIssue(ctx context.Context, input issue.Submission) (Issue, error) {
	if err := s.ready(ctx); err != nil {
		return Issue{}, err
	}
	if s.ids == nil {
		return Issue{}, errors.New("issue id generator is required")
	}

	sub, err := input.Normalize()
	if err != nil {
		return Issue{}, err
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.lifecycle"), slog.String("op", "create_issue"))

	var lastErr error
	for attempt := 1; attempt <= s.maxIDAttempts; attempt++ {
		now := s.now().UTC()
		publicID, err := s.ids.NewPublicID(now)
		if err != nil {
			return Issue{}, errs.Mark(errs.Wrap(err, "generate public id"), issue.ErrStorage)
		}

		row := fromSubmission(sub, publicID)
		row.Status = issue.StatusSubmitted.String()
		row.SubmittedAt = now
		row.UpdatedAt = now

		var created ports.Issue
		err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
			var err error
			created, err = s.repo.CreateIssue(txCtx, row)
			if err != nil {
				return err
			}
			_, err = s.repo.AppendStatusHistory(txCtx, ports.StatusHistoryCreate{
				IssuePublicID: publicID,
				Status:        issue.StatusSubmitted.String(),
				Notes:         InitialHistoryNotes,
				UpdatedBy:     SystemActor,
				CreatedAt:     now,
			})
			return err
		})
		if err == nil {
			logging.Info(logCtx, "issue created",
				slog.String("public_id", created.PublicID),
				slog.String("category", created.Category),
				slog.String("priority", created.Priority),
			)
			return toIssue(created), nil
		}
		if !errors.Is(err, ports.ErrDuplicatePublicID) {
			return Issue{}, classifyErr(err, "create issue")
		}

		lastErr = err
		logging.Warn(logCtx, "public id collision, retrying",
			slog.String("public_id", publicID),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.maxIDAttempts),
		)
	}

	exhausted := fmt.Errorf("create issue: no unique public id after %d attempts: %w", s.maxIDAttempts, lastErr)
	return Issue{}, errs.Mark(errs.Mark(exhausted, issue.ErrDuplicateIdentifier), issue.ErrStorage)
}
