package migration

import (
	"context"
	"time"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version     string // Version identifier (e.g., "001", "002")
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// MigrationStatus summarises what has been applied and what is pending.
type MigrationStatus struct {
	CurrentVersion    string
	PendingCount      int
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// MigrationManager orchestrates the migration process.
type MigrationManager interface {
	// RunMigrations executes all pending migrations in sequential order.
	RunMigrations(ctx context.Context) error
	GetPendingMigrations(ctx context.Context) ([]Migration, error)
	GetMigrationStatus(ctx context.Context) (*MigrationStatus, error)
}

// FileScanner discovers migration files.
type FileScanner interface {
	ScanMigrations(dir string) ([]Migration, error)
	ValidateFileName(filename string) error
}

// Executor runs migrations against the database.
type Executor interface {
	// ExecuteMigration runs a single migration within a transaction.
	ExecuteMigration(ctx context.Context, migration Migration) error
	InitializeVersionTable(ctx context.Context) error
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
