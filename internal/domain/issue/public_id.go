package issue

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PublicIDPrefix = "CS"
	publicIDDate   = "20060102"
)

var publicIDPattern = regexp.MustCompile(`^CS-\d{8}-[0-9A-F]{8}$`)

// IDGenerator produces candidate public ids. Uniqueness is enforced by the store.
type IDGenerator interface {
	NewPublicID(now time.Time) (string, error)
}

// UUIDGenerator draws the random token from the first group of a version 4 UUID,
// which is 32 fully random bits.
type UUIDGenerator struct {
	// Rand overrides the entropy source; nil means crypto/rand.
	Rand io.Reader
}

func (g UUIDGenerator) NewPublicID(now time.Time) (string, error) {
	var (
		id  uuid.UUID
		err error
	)
	if g.Rand != nil {
		id, err = uuid.NewRandomFromReader(g.Rand)
	} else {
		id, err = uuid.NewRandom()
	}
	if err != nil {
		return "", fmt.Errorf("draw public id token: %w", err)
	}

	token := strings.ToUpper(strings.SplitN(id.String(), "-", 2)[0])
	return FormatPublicID(now, token), nil
}

// FormatPublicID renders CS-<YYYYMMDD>-<token> using the UTC calendar date of now.
func FormatPublicID(now time.Time, token string) string {
	return fmt.Sprintf("%s-%s-%s", PublicIDPrefix, now.UTC().Format(publicIDDate), token)
}

// ParsePublicID trims and upper-cases raw and checks the fixed shape.
func ParsePublicID(raw string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", fmt.Errorf("%w: issue id", ErrMissingField)
	}
	if !publicIDPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPublicID, raw)
	}
	if _, err := time.Parse(publicIDDate, trimmed[3:11]); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPublicID, raw)
	}
	return trimmed, nil
}

func IsPublicID(raw string) bool {
	return publicIDPattern.MatchString(raw)
}
