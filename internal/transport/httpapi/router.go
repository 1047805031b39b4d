package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/ports"
	"civicsense/internal/usecase/lifecycle"
)

// IssueService is the lifecycle surface the API depends on.
type IssueService interface {
	CreateIssue(ctx context.Context, input issue.Submission) (lifecycle.Issue, error)
	ChangeStatus(ctx context.Context, input lifecycle.ChangeStatusInput) (lifecycle.HistoryEntry, error)
	DeleteIssue(ctx context.Context, publicID string) error
	GetIssueWithHistory(ctx context.Context, publicID string) (lifecycle.IssueDetail, error)
	GetIssueForReporter(ctx context.Context, publicID string, contactKey string) (lifecycle.IssueDetail, error)
	ListIssuesForReporter(ctx context.Context, contactKey string) ([]lifecycle.IssueSummary, error)
	ListIssues(ctx context.Context, input lifecycle.ListIssuesInput) ([]lifecycle.IssueSummary, error)
	CheckStatus(ctx context.Context, publicID string) (lifecycle.StatusCheck, error)
	Summarize(ctx context.Context, contactKey string) (lifecycle.ReporterSummary, error)
}

type handler struct {
	svc  IssueService
	auth ports.Authenticator
}

// NewRouter mounts the public, reporter and admin JSON endpoints.
func NewRouter(svc IssueService, auth ports.Authenticator) http.Handler {
	h := &handler{svc: svc, auth: auth}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/api/check-status", h.checkStatus)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Post("/api/issues", h.createIssue)
		r.Get("/api/my-submissions", h.listMySubmissions)
		r.Get("/api/my-submissions/{publicID}", h.getMySubmission)
		r.Get("/api/my-summary", h.mySummary)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Use(requireRole(ports.RoleAdmin))

		r.Get("/issues", h.adminListIssues)
		r.Get("/issues/{publicID}", h.adminGetIssue)
		r.Put("/issues/{publicID}/status", h.adminChangeStatus)
		r.Delete("/issues/{publicID}", h.adminDeleteIssue)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithAttrs(r.Context(), slog.String("component", "transport.httpapi"))
		ctx = logging.WithRequestID(ctx, middleware.GetReqID(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.Info(ctx, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
