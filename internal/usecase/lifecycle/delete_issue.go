package lifecycle

import (
	"context"
	"log/slog"

	"civicsense/internal/bootstrap/logging"
)

// DeleteIssue removes an issue and all of its history. The public id is never reissued.
func (s *Service) DeleteIssue(ctx context.Context, publicID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	normalized, err := normalizePublicID(publicID)
	if err != nil {
		return err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteIssue(txCtx, normalized)
	}); err != nil {
		return classifyErr(err, "delete issue")
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.lifecycle"), slog.String("op", "delete_issue")),
		"issue deleted",
		slog.String("public_id", normalized),
	)
	return nil
}
