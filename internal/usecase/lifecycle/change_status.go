package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/ports"
)

// ChangeStatus moves an issue to a new status and appends the matching history
// entry in one transaction. Concurrent changes to the same issue each keep their
// history entry; the issue's status reflects whichever committed last.
func (s *Service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (HistoryEntry, error) {
	if err := s.ready(ctx); err != nil {
		return HistoryEntry{}, err
	}

	publicID, err := normalizePublicID(input.PublicID)
	if err != nil {
		return HistoryEntry{}, err
	}

	next, err := issue.ParseStatus(input.Status)
	if err != nil {
		return HistoryEntry{}, err
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return HistoryEntry{}, fmt.Errorf("%w: actor", issue.ErrMissingField)
	}

	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		notes = fmt.Sprintf("Status updated to %s by %s", next, actor)
	}

	var (
		previous issue.Status
		entry    ports.StatusHistoryEntry
	)
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetIssue(txCtx, publicID)
		if err != nil {
			return err
		}
		previous = issue.Status(current.Status)

		if err := s.policy.Check(previous, next); err != nil {
			return err
		}

		// Taken inside the transaction so this entry sorts after the one it supersedes.
		now := s.now().UTC()
		if now.Before(current.UpdatedAt) {
			now = current.UpdatedAt
		}

		if err := s.repo.UpdateIssueStatus(txCtx, publicID, next.String(), now); err != nil {
			return err
		}
		entry, err = s.repo.AppendStatusHistory(txCtx, ports.StatusHistoryCreate{
			IssuePublicID: publicID,
			Status:        next.String(),
			Notes:         notes,
			UpdatedBy:     actor,
			CreatedAt:     now,
		})
		return err
	})
	if err != nil {
		err = classifyErr(err, "change issue status")
		if issue.Classify(err) == "storage" {
			logging.Error(
				logging.WithAttrs(ctx, slog.String("component", "usecase.lifecycle")),
				"change issue status failed",
				slog.String("public_id", publicID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
		return HistoryEntry{}, err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.lifecycle"), slog.String("op", "change_status")),
		"issue status changed",
		slog.String("public_id", publicID),
		slog.String("from", previous.String()),
		slog.String("to", next.String()),
		slog.String("actor", actor),
	)

	return toHistory([]ports.StatusHistoryEntry{entry})[0], nil
}
