package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civicsense/internal/errs"
	"civicsense/internal/infrastructure/persistence/sqlite/model"
	"civicsense/internal/ports"
)

// timestampLayout is fixed width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const maxListLimit = 200

type IssueRepository struct {
	db *gorm.DB
}

var _ ports.IssueRepository = (*IssueRepository)(nil)

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *IssueRepository) GetIssue(ctx context.Context, publicID string) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	var row model.Issue
	if err := db.Where("issue_id = ?", publicID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Issue{}, ports.ErrIssueNotFound
		}
		return ports.Issue{}, errs.Wrap(err, "query issue")
	}
	return mapIssue(row), nil
}

func (r *IssueRepository) ListStatusHistory(ctx context.Context, publicID string) ([]ports.StatusHistoryEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.StatusHistory
	if err := db.
		Where("issue_id_ref = ?", publicID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query status history")
	}

	items := make([]ports.StatusHistoryEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapHistory(row))
	}
	return items, nil
}

func (r *IssueRepository) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Issue{})
	if email := strings.TrimSpace(filter.ReporterEmail); email != "" {
		query = query.Where("email = ?", email)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("issue_category = ?", category)
	}
	if filter.Limit > 0 {
		limit := filter.Limit
		if limit > maxListLimit {
			limit = maxListLimit
		}
		query = query.Limit(limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Issue
	if err := query.Order("submitted_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issues")
	}

	items := make([]ports.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row))
	}
	return items, nil
}

func (r *IssueRepository) CountIssuesByStatus(ctx context.Context, reporterEmail string) (map[string]int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Issue{}).Select("status, count(*) AS total").Group("status")
	if email := strings.TrimSpace(reporterEmail); email != "" {
		query = query.Where("email = ?", email)
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "count issues by status")
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *IssueRepository) CreateIssue(ctx context.Context, issue ports.Issue) (ports.Issue, error) {
	if !ports.InTx(ctx) {
		var created ports.Issue
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, err = r.CreateIssue(ports.WithTxContext(ctx, tx), issue)
			return err
		})
		return created, err
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	registry := model.IssuedPublicID{
		PublicID: issue.PublicID,
		IssuedAt: formatTimestamp(issue.SubmittedAt),
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&registry)
	if result.Error != nil {
		return ports.Issue{}, errs.Wrap(result.Error, "register public id")
	}
	if result.RowsAffected == 0 {
		return ports.Issue{}, fmt.Errorf("%w: %s", ports.ErrDuplicatePublicID, issue.PublicID)
	}

	row := toIssueRow(issue)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.Issue{}, fmt.Errorf("%w: %s", ports.ErrDuplicatePublicID, issue.PublicID)
		}
		return ports.Issue{}, errs.Wrap(err, "insert issue")
	}
	return mapIssue(row), nil
}

func (r *IssueRepository) UpdateIssueStatus(ctx context.Context, publicID string, status string, updatedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Issue{}).
		Where("issue_id = ?", publicID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": formatTimestamp(updatedAt),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue status")
	}
	if result.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) AppendStatusHistory(ctx context.Context, input ports.StatusHistoryCreate) (ports.StatusHistoryEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.StatusHistoryEntry{}, err
	}

	row := model.StatusHistory{
		IssueIDRef: input.IssuePublicID,
		Status:     input.Status,
		Notes:      input.Notes,
		UpdatedBy:  input.UpdatedBy,
		CreatedAt:  formatTimestamp(input.CreatedAt),
	}
	if err := db.Create(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return ports.StatusHistoryEntry{}, ports.ErrIssueNotFound
		}
		return ports.StatusHistoryEntry{}, errs.Wrap(err, "insert status history")
	}
	return mapHistory(row), nil
}

func (r *IssueRepository) DeleteIssue(ctx context.Context, publicID string) error {
	if !ports.InTx(ctx) {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return r.DeleteIssue(ports.WithTxContext(ctx, tx), publicID)
		})
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("issue_id_ref = ?", publicID).Delete(&model.StatusHistory{}).Error; err != nil {
		return errs.Wrap(err, "delete status history")
	}

	result := db.Where("issue_id = ?", publicID).Delete(&model.Issue{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete issue")
	}
	if result.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "constraint failed: unique")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(raw string) time.Time {
	parsed, err := time.Parse(timestampLayout, raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return time.Time{}
		}
	}
	return parsed.UTC()
}

func toIssueRow(issue ports.Issue) model.Issue {
	var image *string
	if issue.ImageFilename != "" {
		name := issue.ImageFilename
		image = &name
	}

	return model.Issue{
		IssueID:            issue.PublicID,
		FullName:           issue.ReporterName,
		Email:              issue.ReporterEmail,
		Mobile:             issue.Mobile,
		Age:                issue.Age,
		Gender:             issue.Gender,
		Pincode:            issue.Pincode,
		City:               issue.City,
		District:           issue.District,
		State:              issue.State,
		Country:            issue.Country,
		ResidentialAddress: issue.ResidentialAddress,
		WorkAddress:        issue.WorkAddress,
		IssueCategory:      issue.Category,
		CustomIssueType:    issue.CustomIssueType,
		IssueDescription:   issue.Description,
		Latitude:           issue.Latitude,
		Longitude:          issue.Longitude,
		LocationAddress:    issue.LocationAddress,
		Priority:           issue.Priority,
		ImageFilename:      image,
		Status:             issue.Status,
		SubmittedAt:        formatTimestamp(issue.SubmittedAt),
		UpdatedAt:          formatTimestamp(issue.UpdatedAt),
	}
}

func mapIssue(row model.Issue) ports.Issue {
	image := ""
	if row.ImageFilename != nil {
		image = *row.ImageFilename
	}

	return ports.Issue{
		ID:                 row.ID,
		PublicID:           row.IssueID,
		ReporterName:       row.FullName,
		ReporterEmail:      row.Email,
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
		Category:           row.IssueCategory,
		CustomIssueType:    row.CustomIssueType,
		Description:        row.IssueDescription,
		Latitude:           row.Latitude,
		Longitude:          row.Longitude,
		LocationAddress:    row.LocationAddress,
		Priority:           row.Priority,
		ImageFilename:      image,
		Status:             row.Status,
		SubmittedAt:        parseTimestamp(row.SubmittedAt),
		UpdatedAt:          parseTimestamp(row.UpdatedAt),
	}
}

func mapHistory(row model.StatusHistory) ports.StatusHistoryEntry {
	return ports.StatusHistoryEntry{
		ID:            row.ID,
		IssuePublicID: row.IssueIDRef,
		Status:        row.Status,
		Notes:         row.Notes,
		UpdatedBy:     row.UpdatedBy,
		CreatedAt:     parseTimestamp(row.CreatedAt),
	}
}
