package issue

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusSubmitted  Status = "Submitted"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusCompleted  Status = "Completed"
	StatusRejected   Status = "Rejected"
)

var allStatuses = []Status{
	StatusSubmitted,
	StatusInProgress,
	StatusResolved,
	StatusCompleted,
	StatusRejected,
}

// Statuses returns the fixed status enumeration in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus accepts a status case-insensitively, with '_' or '-' standing in for spaces.
func ParseStatus(raw string) (Status, error) {
	key := statusKey(raw)
	if key == "" {
		return "", fmt.Errorf("%w: status is required", ErrInvalidStatus)
	}
	for _, status := range allStatuses {
		if statusKey(string(status)) == key {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func (s Status) String() string { return string(s) }

// Valid reports whether s is exactly one of the canonical statuses.
func (s Status) Valid() bool {
	for _, status := range allStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsResolvedLike reports whether reporting treats the status as resolved.
func (s Status) IsResolvedLike() bool {
	return s == StatusResolved || s == StatusCompleted
}

func (s Status) IsTerminal() bool {
	return s.IsResolvedLike() || s == StatusRejected
}

func statusKey(raw string) string {
	replacer := strings.NewReplacer("_", " ", "-", " ")
	fields := strings.Fields(strings.ToLower(replacer.Replace(raw)))
	return strings.Join(fields, " ")
}
