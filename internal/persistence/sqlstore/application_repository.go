package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

const applicationColumns = `id, job_id, candidate_id, company_id, resume, cover_letter, status, notes,
	updated_by, applied_at, created_at, updated_at`

// ApplicationRepository implements persistence.ApplicationRepository.
type ApplicationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(pool *ConnectionPool) *ApplicationRepository {
	return &ApplicationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateApplication inserts a new application. A second application by the
// same candidate for the same job fails with persistence.ErrDuplicate.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, application persistence.Application) error {
	if application.ID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&application.CreatedAt, &application.UpdatedAt)
	if application.AppliedAt.IsZero() {
		application.AppliedAt = application.CreatedAt
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		application.ID,
		application.JobID,
		application.CandidateID,
		application.CompanyID,
		application.Resume,
		application.CoverLetter,
		application.Status,
		application.Notes,
		nullableString(application.UpdatedBy),
		formatTime(application.AppliedAt),
		formatTime(application.CreatedAt),
		formatTime(application.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateApplication replaces the reviewable columns of an application.
func (r *ApplicationRepository) UpdateApplication(ctx context.Context, application persistence.Application) error {
	if application.UpdatedAt.IsZero() {
		application.UpdatedAt = time.Now().UTC()
	}
	result, err := r.helper.Exec(ctx, `
		UPDATE applications
		SET resume = ?, cover_letter = ?, status = ?, notes = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`,
		application.Resume,
		application.CoverLetter,
		application.Status,
		application.Notes,
		nullableString(application.UpdatedBy),
		formatTime(application.UpdatedAt),
		application.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetApplication retrieves an application by ID.
func (r *ApplicationRepository) GetApplication(ctx context.Context, id string) (persistence.Application, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	application, err := scanApplication(row)
	if err != nil {
		return persistence.Application{}, r.mapper.MapError(err)
	}
	return application, nil
}

// ListApplications returns applications newest first.
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter persistence.ApplicationFilter) ([]persistence.Application, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.CandidateID != "" {
		conditions = append(conditions, "candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.JobID != "" {
		conditions = append(conditions, "job_id = ?")
		args = append(args, filter.JobID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	rows, err := r.helper.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications`+whereClause(conditions)+` ORDER BY applied_at DESC, id ASC`,
		args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	applications := make([]persistence.Application, 0)
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, application)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return applications, nil
}

// DeleteApplication removes an application by ID.
func (r *ApplicationRepository) DeleteApplication(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func scanApplication(row rowScanner) (persistence.Application, error) {
	var (
		application                     persistence.Application
		updatedBy                       sql.NullString
		appliedAt, createdAt, updatedAt string
	)
	if err := row.Scan(
		&application.ID,
		&application.JobID,
		&application.CandidateID,
		&application.CompanyID,
		&application.Resume,
		&application.CoverLetter,
		&application.Status,
		&application.Notes,
		&updatedBy,
		&appliedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Application{}, err
	}

	var err error
	application.UpdatedBy = stringPtr(updatedBy)
	if application.AppliedAt, err = parseTime("applied_at", appliedAt); err != nil {
		return persistence.Application{}, err
	}
	if application.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Application{}, err
	}
	if application.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Application{}, err
	}
	return application, nil
}
