package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrIssueNotFound     = errors.New("issue not found")
	ErrDuplicatePublicID = errors.New("issue public id already issued")
)

// Issue is the persisted issue row.
type Issue struct {
	ID                 uint64
	PublicID           string
	ReporterName       string
	ReporterEmail      string
	Mobile             string
	Age                *int
	Gender             string
	Pincode            string
	City               string
	District           string
	State              string
	Country            string
	ResidentialAddress string
	WorkAddress        string
	Category           string
	CustomIssueType    string
	Description        string
	Latitude           *float64
	Longitude          *float64
	LocationAddress    string
	Priority           string
	ImageFilename      string
	Status             string
	SubmittedAt        time.Time
	UpdatedAt          time.Time
}

type StatusHistoryEntry struct {
	ID            uint64
	IssuePublicID string
	Status        string
	Notes         string
	UpdatedBy     string
	CreatedAt     time.Time
}

type StatusHistoryCreate struct {
	IssuePublicID string
	Status        string
	Notes         string
	UpdatedBy     string
	CreatedAt     time.Time
}

type IssueFilter struct {
	ReporterEmail string
	Status        string
	Category      string
	Limit         int
	Offset        int
}

type IssueReadRepository interface {
	GetIssue(ctx context.Context, publicID string) (Issue, error)
	ListStatusHistory(ctx context.Context, publicID string) ([]StatusHistoryEntry, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]Issue, error)
	CountIssuesByStatus(ctx context.Context, reporterEmail string) (map[string]int64, error)
}

// IssueRepository is the only writer of issues, status history and the public id registry.
type IssueRepository interface {
	IssueReadRepository
	// CreateIssue registers issue.PublicID and inserts the issue row.
	// A reused public id fails with ErrDuplicatePublicID.
	CreateIssue(ctx context.Context, issue Issue) (Issue, error)
	UpdateIssueStatus(ctx context.Context, publicID string, status string, updatedAt time.Time) error
	AppendStatusHistory(ctx context.Context, input StatusHistoryCreate) (StatusHistoryEntry, error)
	// DeleteIssue removes the history rows and then the issue row.
	// The public id stays registered.
	DeleteIssue(ctx context.Context, publicID string) error
}
