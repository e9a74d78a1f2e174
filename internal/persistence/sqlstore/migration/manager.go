package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

type migrationManager struct {
	scanner  FileScanner
	executor Executor
	dir      string
	logger   *slog.Logger
}

// NewMigrationManager wires a scanner and executor. A nil logger discards output.
func NewMigrationManager(scanner FileScanner, executor Executor, dir string, logger *slog.Logger) MigrationManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &migrationManager{
		scanner:  scanner,
		executor: executor,
		dir:      dir,
		logger:   logger.With("component", "migration"),
	}
}

// RunMigrations executes all pending migrations in sequential order.
func (m *migrationManager) RunMigrations(ctx context.Context) error {
	started := time.Now()

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to initialize schema_migrations table", "error", err)
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to resolve pending migrations", "error", err)
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}
	if len(pending) == 0 {
		m.logger.InfoContext(ctx, "database schema up to date")
		return nil
	}

	for i, migration := range pending {
		logger := m.logger.With("version", migration.Version, "file", migration.FilePath)
		logger.InfoContext(ctx, "applying migration",
			"description", migration.Description,
			"position", i+1,
			"total", len(pending),
		)

		migrationStarted := time.Now()
		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStarted)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			logger.ErrorContext(ctx, "failed to record migration", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "record migration", err)
		}
		logger.InfoContext(ctx, "migration applied", "duration", elapsed)
	}

	m.logger.InfoContext(ctx, "migrations complete", "applied", len(pending), "duration", time.Since(started))
	return nil
}

// GetPendingMigrations returns migrations that have not been applied yet.
func (m *migrationManager) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	available, err := m.scanner.ScanMigrations(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	if err := validateSequence(available, applied); err != nil {
		return nil, fmt.Errorf("migration sequence validation failed: %w", err)
	}

	appliedSet := make(map[string]struct{}, len(applied))
	for _, record := range applied {
		appliedSet[record.Version] = struct{}{}
	}

	var pending []Migration
	for _, migration := range available {
		if _, ok := appliedSet[migration.Version]; ok {
			continue
		}
		pending = append(pending, migration)
	}
	sortByVersion(pending)
	return pending, nil
}

// GetMigrationStatus returns status information about migrations.
func (m *migrationManager) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	current := ""
	highest := -1
	for _, record := range applied {
		if version, err := strconv.Atoi(record.Version); err == nil && version > highest {
			highest = version
			current = record.Version
		}
	}

	return &MigrationStatus{
		CurrentVersion:    current,
		PendingCount:      len(pending),
		AppliedMigrations: applied,
		PendingMigrations: pending,
	}, nil
}

// validateSequence rejects gaps, unknown applied versions and edited files.
func validateSequence(available []Migration, applied []AppliedMigration) error {
	byVersion := make(map[int]Migration, len(available))
	minVersion, maxVersion := 0, 0
	for i, migration := range available {
		version, err := strconv.Atoi(migration.Version)
		if err != nil {
			return NewMigrationError(migration.Version, migration.FilePath, "validate sequence",
				fmt.Errorf("%w: version '%s' is not numeric", ErrInvalidVersion, migration.Version))
		}
		byVersion[version] = migration
		if i == 0 || version < minVersion {
			minVersion = version
		}
		if version > maxVersion {
			maxVersion = version
		}
	}

	if len(available) > 0 {
		for version := minVersion; version <= maxVersion; version++ {
			if _, ok := byVersion[version]; !ok {
				return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, version)
			}
		}
	}

	for _, record := range applied {
		version, err := strconv.Atoi(record.Version)
		if err != nil {
			return fmt.Errorf("%w: applied version '%s' is not numeric", ErrInvalidVersion, record.Version)
		}
		migration, ok := byVersion[version]
		if !ok {
			return fmt.Errorf("%w: applied migration %03d not found in available migrations", ErrVersionConflict, version)
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			return NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return nil
}
