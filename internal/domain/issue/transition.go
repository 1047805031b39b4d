package issue

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type TransitionMode string

const (
	TransitionPermissive TransitionMode = "permissive"
	TransitionStrict     TransitionMode = "strict"
)

func ParseTransitionMode(raw string) (TransitionMode, error) {
	switch TransitionMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TransitionPermissive:
		return TransitionPermissive, nil
	case TransitionStrict:
		return TransitionStrict, nil
	default:
		return "", fmt.Errorf("unknown transition mode %q", raw)
	}
}

// TransitionPolicy decides whether a status change is accepted.
// The zero value is permissive.
type TransitionPolicy struct {
	Mode    TransitionMode
	Allowed map[Status][]Status
}

func DefaultTransitionTable() map[Status][]Status {
	return map[Status][]Status{
		StatusSubmitted:  {StatusInProgress, StatusRejected},
		StatusInProgress: {StatusResolved, StatusCompleted, StatusRejected},
		StatusResolved:   {StatusCompleted},
	}
}

func PermissivePolicy() TransitionPolicy {
	return TransitionPolicy{Mode: TransitionPermissive}
}

func StrictPolicy(table map[Status][]Status) TransitionPolicy {
	if table == nil {
		table = DefaultTransitionTable()
	}
	return TransitionPolicy{Mode: TransitionStrict, Allowed: table}
}

func (p TransitionPolicy) Check(from Status, to Status) error {
	if p.Mode != TransitionStrict {
		return nil
	}
	for _, next := range p.Allowed[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
}

type transitionFile struct {
	Transitions map[string][]string `toml:"transitions"`
}

// LoadTransitionTable reads a TOML table of the form
//
//	[transitions]
//	"Submitted" = ["In Progress", "Rejected"]
func LoadTransitionTable(path string) (map[Status][]Status, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("transitions file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transitions file %q: %w", path, err)
	}

	var file transitionFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode transitions file %q: %w", path, err)
	}
	if len(file.Transitions) == 0 {
		return nil, fmt.Errorf("transitions file %q defines no transitions", path)
	}

	table := make(map[Status][]Status, len(file.Transitions))
	for fromRaw, targets := range file.Transitions {
		from, err := ParseStatus(fromRaw)
		if err != nil {
			return nil, fmt.Errorf("transitions file %q: %w", path, err)
		}
		for _, toRaw := range targets {
			to, err := ParseStatus(toRaw)
			if err != nil {
				return nil, fmt.Errorf("transitions file %q: %w", path, err)
			}
			table[from] = append(table[from], to)
		}
	}
	return table, nil
}
