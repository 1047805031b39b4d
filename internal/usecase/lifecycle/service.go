package lifecycle

import (
	"time"

	"civicsense/internal/domain/issue"
	"civicsense/internal/ports"
)

const (
	SystemActor         = "System"
	InitialHistoryNotes = "Issue has been successfully submitted by the user."

	defaultMaxIDAttempts = 3
	defaultListLimit     = 50
	maxListLimit         = 200

	// DisplayLayout renders timestamps for people, e.g. "18 Oct 2026, 03:04 PM".
	DisplayLayout = "02 Jan 2006, 03:04 PM"
)

// Settings carries the configured lifecycle behaviour.
type Settings struct {
	Policy        issue.TransitionPolicy
	MaxIDAttempts int
	Location      *time.Location
}

type Option func(*Service)

// WithClock replaces the wall clock used for submission and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(ids issue.IDGenerator) Option {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// Service is the only entry point that creates, transitions, deletes and reads issues.
type Service struct {
	repo          ports.IssueRepository
	uow           ports.UnitOfWork
	ids           issue.IDGenerator
	policy        issue.TransitionPolicy
	maxIDAttempts int
	location      *time.Location
	now           func() time.Time
}

func NewService(repo ports.IssueRepository, uow ports.UnitOfWork, settings Settings, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		uow:           uow,
		ids:           issue.UUIDGenerator{},
		policy:        settings.Policy,
		maxIDAttempts: settings.MaxIDAttempts,
		location:      settings.Location,
		now:           time.Now,
	}
	if s.maxIDAttempts < 1 {
		s.maxIDAttempts = defaultMaxIDAttempts
	}
	if s.location == nil {
		s.location = time.UTC
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ChangeStatusInput struct {
	PublicID string
	Status   string
	// Notes defaults to "Status updated to <status> by <actor>".
	Notes string
	Actor string
}

type ListIssuesInput struct {
	Status   string
	Category string
	Limit    int
	Offset   int
}

// Issue is the full projection of a stored issue.
type Issue struct {
	ID                 uint64       `json:"-" yaml:"-"`
	PublicID           string       `json:"issueId" yaml:"issue_id"`
	ReporterName       string       `json:"fullName" yaml:"full_name"`
	ReporterEmail      string       `json:"email" yaml:"email"`
	Mobile             string       `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	Age                *int         `json:"age,omitempty" yaml:"age,omitempty"`
	Gender             string       `json:"gender,omitempty" yaml:"gender,omitempty"`
	Pincode            string       `json:"pincode,omitempty" yaml:"pincode,omitempty"`
	City               string       `json:"city,omitempty" yaml:"city,omitempty"`
	District           string       `json:"district,omitempty" yaml:"district,omitempty"`
	State              string       `json:"state,omitempty" yaml:"state,omitempty"`
	Country            string       `json:"country,omitempty" yaml:"country,omitempty"`
	ResidentialAddress string       `json:"residentialAddress,omitempty" yaml:"residential_address,omitempty"`
	WorkAddress        string       `json:"workAddress,omitempty" yaml:"work_address,omitempty"`
	Category           string       `json:"issueCategory" yaml:"issue_category"`
	CustomIssueType    string       `json:"customIssueType,omitempty" yaml:"custom_issue_type,omitempty"`
	Description        string       `json:"issueDescription" yaml:"issue_description"`
	Latitude           *float64     `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude          *float64     `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	LocationAddress    string       `json:"locationAddress,omitempty" yaml:"location_address,omitempty"`
	Priority           string       `json:"priority" yaml:"priority"`
	ImageFilename      string       `json:"imageFilename,omitempty" yaml:"image_filename,omitempty"`
	Status             issue.Status `json:"status" yaml:"status"`
	SubmittedAt        time.Time    `json:"submittedAt" yaml:"submitted_at"`
	UpdatedAt          time.Time    `json:"updatedAt" yaml:"updated_at"`
}

type HistoryEntry struct {
	Status    issue.Status `json:"status" yaml:"status"`
	Notes     string       `json:"notes" yaml:"notes"`
	UpdatedBy string       `json:"updatedBy" yaml:"updated_by"`
	CreatedAt time.Time    `json:"createdAt" yaml:"created_at"`
}

type IssueDetail struct {
	Issue   Issue          `json:"issue" yaml:"issue"`
	History []HistoryEntry `json:"history" yaml:"history"`
}

// IssueSummary is one row of a queue or a reporter's submission list.
type IssueSummary struct {
	PublicID        string       `json:"issueId" yaml:"issue_id"`
	ReporterEmail   string       `json:"email" yaml:"email"`
	Category        string       `json:"issueCategory" yaml:"issue_category"`
	Priority        string       `json:"priority" yaml:"priority"`
	Status          issue.Status `json:"status" yaml:"status"`
	LocationAddress string       `json:"locationAddress,omitempty" yaml:"location_address,omitempty"`
	SubmittedAt     time.Time    `json:"submittedAt" yaml:"submitted_at"`
	UpdatedAt       time.Time    `json:"updatedAt" yaml:"updated_at"`
}

// StatusCheck is the public status view. It carries no reporter identity.
type StatusCheck struct {
	PublicID        string         `json:"issueId" yaml:"issue_id"`
	Category        string         `json:"issueCategory" yaml:"issue_category"`
	LocationAddress string         `json:"locationAddress,omitempty" yaml:"location_address,omitempty"`
	Priority        string         `json:"priority" yaml:"priority"`
	Status          issue.Status   `json:"status" yaml:"status"`
	SubmittedAt     time.Time      `json:"submittedAt" yaml:"submitted_at"`
	History         []HistoryEntry `json:"history" yaml:"history"`
}

type ReporterSummary struct {
	Total        int64 `json:"total" yaml:"total"`
	Submitted    int64 `json:"submitted" yaml:"submitted"`
	InProgress   int64 `json:"inProgress" yaml:"in_progress"`
	ResolvedLike int64 `json:"resolved" yaml:"resolved"`
	Rejected     int64 `json:"rejected" yaml:"rejected"`
}
