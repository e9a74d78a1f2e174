package migration

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubScanner struct {
	migrations []Migration
	err        error
}

func (s *stubScanner) ScanMigrations(string) ([]Migration, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.migrations, nil
}

func (s *stubScanner) ValidateFileName(string) error { return nil }

type stubExecutor struct {
	applied   []AppliedMigration
	executed  []string
	recorded  []string
	execErr   error
	recordErr error
	initErr   error
}

func (e *stubExecutor) ExecuteMigration(_ context.Context, migration Migration) error {
	e.executed = append(e.executed, migration.Version)
	return e.execErr
}

func (e *stubExecutor) InitializeVersionTable(context.Context) error { return e.initErr }

func (e *stubExecutor) RecordMigration(_ context.Context, migration Migration, _ time.Duration) error {
	if e.recordErr != nil {
		return e.recordErr
	}
	e.recorded = append(e.recorded, migration.Version)
	e.applied = append(e.applied, AppliedMigration{Version: migration.Version, Checksum: migration.Checksum})
	return nil
}

func (e *stubExecutor) GetAppliedVersions(context.Context) ([]AppliedMigration, error) {
	return e.applied, nil
}

func TestMigrationManager_RunMigrations(t *testing.T) {
	t.Parallel()

	available := []Migration{
		{Version: "001", SQL: "CREATE TABLE users (id TEXT);", FilePath: "001_users.sql", Checksum: "a"},
		{Version: "002", SQL: "CREATE TABLE jobs (id TEXT);", FilePath: "002_jobs.sql", Checksum: "b"},
	}

	t.Run("applies only pending migrations", func(t *testing.T) {
		t.Parallel()

		executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "a"}}}
		manager := NewMigrationManager(&stubScanner{migrations: available}, executor, ".", nil)

		if err := manager.RunMigrations(context.Background()); err != nil {
			t.Fatalf("RunMigrations returned error: %v", err)
		}
		if len(executor.executed) != 1 || executor.executed[0] != "002" {
			t.Fatalf("expected only 002 to run, got %v", executor.executed)
		}
		if len(executor.recorded) != 1 {
			t.Fatalf("expected migration to be recorded, got %v", executor.recorded)
		}
	})

	t.Run("wraps execution failures", func(t *testing.T) {
		t.Parallel()

		executor := &stubExecutor{execErr: errors.New("boom")}
		manager := NewMigrationManager(&stubScanner{migrations: available}, executor, ".", nil)

		err := manager.RunMigrations(context.Background())
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}
		var migrationErr *MigrationError
		if !errors.As(err, &migrationErr) || migrationErr.Version != "001" {
			t.Fatalf("expected MigrationError for 001, got %v", err)
		}
		if len(executor.recorded) != 0 {
			t.Fatalf("expected nothing recorded after failure")
		}
	})

	t.Run("detects gaps in the sequence", func(t *testing.T) {
		t.Parallel()

		gapped := []Migration{available[0], {Version: "003", SQL: "SELECT 1;", FilePath: "003_x.sql"}}
		manager := NewMigrationManager(&stubScanner{migrations: gapped}, &stubExecutor{}, ".", nil)

		if err := manager.RunMigrations(context.Background()); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("detects edited migrations", func(t *testing.T) {
		t.Parallel()

		executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "changed"}}}
		manager := NewMigrationManager(&stubScanner{migrations: available}, executor, ".", nil)

		if err := manager.RunMigrations(context.Background()); !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})
}

func TestMigrationManager_GetMigrationStatus(t *testing.T) {
	t.Parallel()

	available := []Migration{
		{Version: "001", SQL: "SELECT 1;"},
		{Version: "002", SQL: "SELECT 1;"},
	}
	executor := &stubExecutor{applied: []AppliedMigration{{Version: "001"}}}
	manager := NewMigrationManager(&stubScanner{migrations: available}, executor, ".", nil)

	status, err := manager.GetMigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationStatus returned error: %v", err)
	}
	if status.CurrentVersion != "001" || status.PendingCount != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}
