package migration

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		files         fstest.MapFS
		expectedOrder []string
		expectedErr   error
		errorContains string
	}{
		{
			name: "orders files by numeric version",
			files: fstest.MapFS{
				"migrations/010_add_reports.sql":    {Data: []byte("CREATE TABLE reports (id TEXT PRIMARY KEY);")},
				"migrations/002_add_jobs.sql":       {Data: []byte("CREATE TABLE jobs (id TEXT PRIMARY KEY);")},
				"migrations/001_initial_schema.sql": {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
			},
			expectedOrder: []string{"001", "002", "010"},
		},
		{
			name: "ignores non sql files",
			files: fstest.MapFS{
				"migrations/001_initial_schema.sql": {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
				"migrations/README.md":              {Data: []byte("# notes")},
			},
			expectedOrder: []string{"001"},
		},
		{
			name: "rejects malformed names",
			files: fstest.MapFS{
				"migrations/initial.sql": {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
			},
			expectedErr: ErrInvalidMigrationFile,
		},
		{
			name: "rejects duplicate versions",
			files: fstest.MapFS{
				"migrations/001_users.sql": {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
				"migrations/001_jobs.sql":  {Data: []byte("CREATE TABLE jobs (id TEXT PRIMARY KEY);")},
			},
			expectedErr: ErrDuplicateVersion,
		},
		{
			name: "rejects comment only files",
			files: fstest.MapFS{
				"migrations/001_empty.sql": {Data: []byte("-- nothing here\n")},
			},
			expectedErr: ErrInvalidMigrationFile,
		},
		{
			name:          "reports missing directory",
			files:         fstest.MapFS{},
			errorContains: "does not exist",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			migrations, err := NewFileScanner(tt.files).ScanMigrations("migrations")
			if tt.expectedErr != nil || tt.errorContains != "" {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScanMigrations returned error: %v", err)
			}
			if len(migrations) != len(tt.expectedOrder) {
				t.Fatalf("expected %d migrations, got %d", len(tt.expectedOrder), len(migrations))
			}
			for i, version := range tt.expectedOrder {
				if migrations[i].Version != version {
					t.Fatalf("expected version %s at %d, got %s", version, i, migrations[i].Version)
				}
				if migrations[i].Checksum == "" {
					t.Fatalf("expected checksum for %s", version)
				}
			}
		})
	}
}

func TestFileScanner_Description(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"001_initial_schema.sql": {Data: []byte("-- Description: Placement tables\nCREATE TABLE users (id TEXT);")},
		"002_add_indexes.sql":    {Data: []byte("CREATE INDEX idx ON users(id);")},
	}

	migrations, err := NewFileScanner(files).ScanMigrations(".")
	if err != nil {
		t.Fatalf("ScanMigrations returned error: %v", err)
	}
	if migrations[0].Description != "Placement tables" {
		t.Fatalf("expected description from comment, got %q", migrations[0].Description)
	}
	if migrations[1].Description != "add indexes" {
		t.Fatalf("expected description from filename, got %q", migrations[1].Description)
	}
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	sql := `-- header
CREATE TABLE a (id TEXT);

-- second
CREATE INDEX idx_a ON a(id);
`
	statements := SplitStatements(sql)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(statements), statements)
	}
	if statements[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Fatalf("unexpected statement %q", statements[1])
	}
}
