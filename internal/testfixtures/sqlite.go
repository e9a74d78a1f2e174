package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/placement-portal/internal/persistence/sqlstore"
)

// SQLiteHarness exposes every repository over a temporary, migrated SQLite
// database.
type SQLiteHarness struct {
	Pool         *sqlstore.ConnectionPool
	Users        *sqlstore.UserRepository
	Companies    *sqlstore.CompanyRepository
	Students     *sqlstore.StudentRepository
	Drives       *sqlstore.DriveRepository
	Jobs         *sqlstore.JobRepository
	Applications *sqlstore.ApplicationRepository
	Interviews   *sqlstore.InterviewRepository
	Reports      *sqlstore.ReportRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a database file under tb.TempDir and applies the
// embedded migrations. Close is registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(tb.TempDir(), "placement.db")

	pool, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := pool.Migrate(ctx, nil); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:         pool,
		Users:        sqlstore.NewUserRepository(pool),
		Companies:    sqlstore.NewCompanyRepository(pool),
		Students:     sqlstore.NewStudentRepository(pool),
		Drives:       sqlstore.NewDriveRepository(pool),
		Jobs:         sqlstore.NewJobRepository(pool),
		Applications: sqlstore.NewApplicationRepository(pool),
		Interviews:   sqlstore.NewInterviewRepository(pool),
		Reports:      sqlstore.NewReportRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
