package ports

import (
	"context"
	"errors"
)

const (
	RoleAdmin    = "admin"
	RoleReporter = "reporter"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Principal is the authenticated caller. Subject is the reporter contact key (email)
// and Name is the actor label recorded on status history.
type Principal struct {
	Subject string
	Name    string
	Role    string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// ActorLabel is the label written to StatusHistoryEntry.UpdatedBy.
func (p Principal) ActorLabel() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Subject
}

// Authenticator verifies a bearer credential.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}
