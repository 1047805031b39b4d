package database

import (
	"context"
	"path/filepath"
	"testing"

	"civicsense/internal/bootstrap/config"
)

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "plain path",
			dsn:  "data/cs.sqlite",
			want: "data/cs.sqlite?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name: "existing query",
			dsn:  "file:data/cs.sqlite?cache=shared",
			want: "file:data/cs.sqlite?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name: "pragma already set",
			dsn:  "cs.sqlite?_pragma=foreign_keys(1)",
			want: "cs.sqlite?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withPragmas(tt.dsn); got != tt.want {
				t.Fatalf("withPragmas(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "cs.sqlite")
	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	defer sqlDB.Close()

	var enabled int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "postgres", DSN: "x"}); err == nil {
		t.Fatalf("Open(postgres) expected error")
	}
}
