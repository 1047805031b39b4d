package issue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPermissivePolicyAllowsAnything(t *testing.T) {
	policy := PermissivePolicy()
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			if err := policy.Check(from, to); err != nil {
				t.Fatalf("Check(%s, %s) error = %v", from, to, err)
			}
		}
	}

	var zero TransitionPolicy
	if err := zero.Check(StatusResolved, StatusSubmitted); err != nil {
		t.Fatalf("zero policy Check() error = %v", err)
	}
}

func TestStrictPolicyDefaultTable(t *testing.T) {
	policy := StrictPolicy(nil)

	if err := policy.Check(StatusSubmitted, StatusInProgress); err != nil {
		t.Fatalf("Submitted -> In Progress error = %v", err)
	}
	if err := policy.Check(StatusInProgress, StatusResolved); err != nil {
		t.Fatalf("In Progress -> Resolved error = %v", err)
	}

	err := policy.Check(StatusResolved, StatusSubmitted)
	if !errors.Is(err, ErrTransitionNotAllowed) || !errors.Is(err, ErrValidation) {
		t.Fatalf("Resolved -> Submitted error = %v, want ErrTransitionNotAllowed", err)
	}
	if err := policy.Check(StatusRejected, StatusInProgress); err == nil {
		t.Fatalf("Rejected -> In Progress expected error")
	}
}

func TestParseTransitionMode(t *testing.T) {
	if mode, err := ParseTransitionMode(""); err != nil || mode != TransitionPermissive {
		t.Fatalf("ParseTransitionMode(\"\") = %q, %v", mode, err)
	}
	if mode, err := ParseTransitionMode(" Strict "); err != nil || mode != TransitionStrict {
		t.Fatalf("ParseTransitionMode(Strict) = %q, %v", mode, err)
	}
	if _, err := ParseTransitionMode("lenient"); err == nil {
		t.Fatalf("ParseTransitionMode(lenient) expected error")
	}
}

func TestLoadTransitionTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitions.toml")
	content := "[transitions]\n\"Submitted\" = [\"in_progress\"]\n\"In Progress\" = [\"Resolved\", \"Submitted\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write transitions file: %v", err)
	}

	table, err := LoadTransitionTable(path)
	if err != nil {
		t.Fatalf("LoadTransitionTable() error = %v", err)
	}

	policy := StrictPolicy(table)
	if err := policy.Check(StatusInProgress, StatusSubmitted); err != nil {
		t.Fatalf("In Progress -> Submitted error = %v", err)
	}
	if err := policy.Check(StatusSubmitted, StatusRejected); err == nil {
		t.Fatalf("Submitted -> Rejected expected rejection with custom table")
	}
}

func TestLoadTransitionTableRejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitions.toml")
	if err := os.WriteFile(path, []byte("[transitions]\n\"Submitted\" = [\"Archived\"]\n"), 0o644); err != nil {
		t.Fatalf("write transitions file: %v", err)
	}
	if _, err := LoadTransitionTable(path); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("LoadTransitionTable() error = %v, want ErrInvalidStatus", err)
	}
}
