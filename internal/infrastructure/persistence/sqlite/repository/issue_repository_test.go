package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"civicsense/internal/bootstrap/config"
	"civicsense/internal/bootstrap/database"
	"civicsense/internal/infrastructure/persistence/sqlite/model"
	"civicsense/internal/ports"
)

func setupIssueRepository(t *testing.T) (*IssueRepository, *gorm.DB) {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "civicsense.sqlite"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewIssueRepository(db), db
}

func newTestIssue(publicID string, email string, submittedAt time.Time) ports.Issue {
	return ports.Issue{
		PublicID:      publicID,
		ReporterName:  "Asha Rao",
		ReporterEmail: email,
		Mobile:        "9876543210",
		Category:      "Pothole",
		Description:   "Deep pothole",
		Priority:      "High",
		Status:        "Submitted",
		SubmittedAt:   submittedAt,
		UpdatedAt:     submittedAt,
	}
}

func TestCreateIssueAndGetIssue(t *testing.T) {
	repo, _ := setupIssueRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 30, 0, 123456789, time.UTC)

	in := newTestIssue("CS-20261018-0000000A", "asha@example.com", now)
	in.ImageFilename = "pothole.jpg"
	lat := 12.97
	in.Latitude = &lat

	created, err := repo.CreateIssue(ctx, in)
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("CreateIssue() id = 0")
	}

	got, err := repo.GetIssue(ctx, in.PublicID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if got.ImageFilename != "pothole.jpg" || got.Latitude == nil || *got.Latitude != lat {
		t.Fatalf("GetIssue() optional fields = %q, %v", got.ImageFilename, got.Latitude)
	}
	if !got.SubmittedAt.Equal(now) {
		t.Fatalf("GetIssue() submitted_at = %v, want %v", got.SubmittedAt, now)
	}

	if _, err := repo.GetIssue(ctx, "CS-20261018-FFFFFFFF"); !errors.Is(err, ports.ErrIssueNotFound) {
		t.Fatalf("GetIssue(missing) error = %v, want ErrIssueNotFound", err)
	}
}

func TestCreateIssueRejectsReusedPublicIDAfterDelete(t *testing.T) {
	repo, _ := setupIssueRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issue := newTestIssue("CS-20261018-0000000B", "asha@example.com", now)
	if _, err := repo.CreateIssue(ctx, issue); err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if _, err := repo.CreateIssue(ctx, issue); !errors.Is(err, ports.ErrDuplicatePublicID) {
		t.Fatalf("CreateIssue(duplicate) error = %v, want ErrDuplicatePublicID", err)
	}

	if err := repo.DeleteIssue(ctx, issue.PublicID); err != nil {
		t.Fatalf("DeleteIssue() error = %v", err)
	}
	if _, err := repo.CreateIssue(ctx, issue); !errors.Is(err, ports.ErrDuplicatePublicID) {
		t.Fatalf("CreateIssue(after delete) error = %v, want ErrDuplicatePublicID", err)
	}
}

func TestStatusHistoryOrderedByCreatedAt(t *testing.T) {
	repo, _ := setupIssueRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	issue := newTestIssue("CS-20261018-0000000C", "asha@example.com", base)
	if _, err := repo.CreateIssue(ctx, issue); err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	// Inserted out of order; 9 ns vs 10 ns checks fixed-width ordering.
	entries := []ports.StatusHistoryCreate{
		{IssuePublicID: issue.PublicID, Status: "Resolved", UpdatedBy: "admin1", CreatedAt: base.Add(10 * time.Nanosecond)},
		{IssuePublicID: issue.PublicID, Status: "Submitted", UpdatedBy: "System", CreatedAt: base},
		{IssuePublicID: issue.PublicID, Status: "In Progress", UpdatedBy: "admin1", CreatedAt: base.Add(9 * time.Nanosecond)},
	}
	for _, entry := range entries {
		if _, err := repo.AppendStatusHistory(ctx, entry); err != nil {
			t.Fatalf("AppendStatusHistory(%s) error = %v", entry.Status, err)
		}
	}

	history, err := repo.ListStatusHistory(ctx, issue.PublicID)
	if err != nil {
		t.Fatalf("ListStatusHistory() error = %v", err)
	}
	want := []string{"Submitted", "In Progress", "Resolved"}
	if len(history) != len(want) {
		t.Fatalf("ListStatusHistory() len = %d", len(history))
	}
	for i, status := range want {
		if history[i].Status != status {
			t.Fatalf("history[%d].Status = %q, want %q", i, history[i].Status, status)
		}
	}
}

func TestAppendStatusHistoryRequiresParentIssue(t *testing.T) {
	repo, _ := setupIssueRepository(t)

	_, err := repo.AppendStatusHistory(context.Background(), ports.StatusHistoryCreate{
		IssuePublicID: "CS-20261018-DEADBEEF",
		Status:        "In Progress",
		UpdatedBy:     "admin1",
		CreatedAt:     time.Now(),
	})
	if !errors.Is(err, ports.ErrIssueNotFound) {
		t.Fatalf("AppendStatusHistory(orphan) error = %v, want ErrIssueNotFound", err)
	}
}

func TestUpdateIssueStatusMissingIssue(t *testing.T) {
	repo, _ := setupIssueRepository(t)

	err := repo.UpdateIssueStatus(context.Background(), "CS-20261018-DEADBEEF", "Resolved", time.Now())
	if !errors.Is(err, ports.ErrIssueNotFound) {
		t.Fatalf("UpdateIssueStatus(missing) error = %v, want ErrIssueNotFound", err)
	}
}

func TestDeleteIssueRemovesHistory(t *testing.T) {
	repo, db := setupIssueRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issue := newTestIssue("CS-20261018-0000000D", "asha@example.com", now)
	if _, err := repo.CreateIssue(ctx, issue); err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if _, err := repo.AppendStatusHistory(ctx, ports.StatusHistoryCreate{
		IssuePublicID: issue.PublicID,
		Status:        "Submitted",
		UpdatedBy:     "System",
		CreatedAt:     now,
	}); err != nil {
		t.Fatalf("AppendStatusHistory() error = %v", err)
	}

	if err := repo.DeleteIssue(ctx, issue.PublicID); err != nil {
		t.Fatalf("DeleteIssue() error = %v", err)
	}

	var remaining int64
	if err := db.Model(&model.StatusHistory{}).Where("issue_id_ref = ?", issue.PublicID).Count(&remaining).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("history rows after delete = %d, want 0", remaining)
	}

	if err := repo.DeleteIssue(ctx, issue.PublicID); !errors.Is(err, ports.ErrIssueNotFound) {
		t.Fatalf("DeleteIssue(again) error = %v, want ErrIssueNotFound", err)
	}
}

func TestListIssuesFiltersAndOrders(t *testing.T) {
	repo, _ := setupIssueRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	fixtures := []struct {
		id     string
		email  string
		status string
		offset time.Duration
	}{
		{id: "CS-20261018-00000001", email: "asha@example.com", status: "Submitted", offset: 0},
		{id: "CS-20261018-00000002", email: "ravi@example.com", status: "Resolved", offset: time.Minute},
		{id: "CS-20261018-00000003", email: "asha@example.com", status: "Resolved", offset: 2 * time.Minute},
	}
	for _, fixture := range fixtures {
		issue := newTestIssue(fixture.id, fixture.email, base.Add(fixture.offset))
		issue.Status = fixture.status
		if _, err := repo.CreateIssue(ctx, issue); err != nil {
			t.Fatalf("CreateIssue(%s) error = %v", fixture.id, err)
		}
	}

	mine, err := repo.ListIssues(ctx, ports.IssueFilter{ReporterEmail: "asha@example.com"})
	if err != nil {
		t.Fatalf("ListIssues(reporter) error = %v", err)
	}
	if len(mine) != 2 || mine[0].PublicID != "CS-20261018-00000003" || mine[1].PublicID != "CS-20261018-00000001" {
		t.Fatalf("ListIssues(reporter) = %+v", mine)
	}

	resolved, err := repo.ListIssues(ctx, ports.IssueFilter{Status: "Resolved", Limit: 1})
	if err != nil {
		t.Fatalf("ListIssues(status) error = %v", err)
	}
	if len(resolved) != 1 || resolved[0].PublicID != "CS-20261018-00000003" {
		t.Fatalf("ListIssues(status, limit) = %+v", resolved)
	}

	page, err := repo.ListIssues(ctx, ports.IssueFilter{Offset: 2})
	if err != nil {
		t.Fatalf("ListIssues(offset) error = %v", err)
	}
	if len(page) != 1 || page[0].PublicID != "CS-20261018-00000001" {
		t.Fatalf("ListIssues(offset) = %+v", page)
	}

	counts, err := repo.CountIssuesByStatus(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("CountIssuesByStatus() error = %v", err)
	}
	if counts["Submitted"] != 1 || counts["Resolved"] != 1 || len(counts) != 2 {
		t.Fatalf("CountIssuesByStatus() = %v", counts)
	}
}
