package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

const jobColumns = `id, placement_drive_id, company_id, title, description, location, salary,
	skills_required, openings, posted_date, application_deadline, created_at, updated_at`

// JobRepository implements persistence.JobRepository.
type JobRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewJobRepository creates a new job repository.
func NewJobRepository(pool *ConnectionPool) *JobRepository {
	return &JobRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateJob inserts a new job. The drive and company must exist.
func (r *JobRepository) CreateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&job.CreatedAt, &job.UpdatedAt)

	skills, err := encodeJSON("skills_required", job.SkillsRequired)
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.PlacementDriveID,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Location,
		job.Salary,
		skills,
		job.Openings,
		formatTime(job.PostedDate),
		nullableTime(job.ApplicationDeadline),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateJob replaces the mutable columns of a job.
func (r *JobRepository) UpdateJob(ctx context.Context, job persistence.Job) error {
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	skills, err := encodeJSON("skills_required", job.SkillsRequired)
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE jobs
		SET placement_drive_id = ?, company_id = ?, title = ?, description = ?, location = ?, salary = ?,
			skills_required = ?, openings = ?, posted_date = ?, application_deadline = ?, updated_at = ?
		WHERE id = ?`,
		job.PlacementDriveID,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Location,
		job.Salary,
		skills,
		job.Openings,
		formatTime(job.PostedDate),
		nullableTime(job.ApplicationDeadline),
		formatTime(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetJob retrieves a job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err != nil {
		return persistence.Job{}, r.mapper.MapError(err)
	}
	return job, nil
}

// ListJobs returns jobs newest first, restricted to companyID when set.
func (r *JobRepository) ListJobs(ctx context.Context, companyID string) ([]persistence.Job, error) {
	var (
		conditions []string
		args       []any
	)
	if companyID != "" {
		conditions = append(conditions, "company_id = ?")
		args = append(args, companyID)
	}

	rows, err := r.helper.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs`+whereClause(conditions)+` ORDER BY posted_date DESC, id ASC`,
		args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	jobs := make([]persistence.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return jobs, nil
}

// DeleteJob removes a job. Applications or interviews referencing it block the delete.
func (r *JobRepository) DeleteJob(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func scanJob(row rowScanner) (persistence.Job, error) {
	var (
		job                  persistence.Job
		skills, postedDate   string
		deadline             sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&job.ID,
		&job.PlacementDriveID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		&job.Location,
		&job.Salary,
		&skills,
		&job.Openings,
		&postedDate,
		&deadline,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Job{}, err
	}

	if err := decodeJSON("skills_required", skills, &job.SkillsRequired); err != nil {
		return persistence.Job{}, err
	}

	var err error
	if job.PostedDate, err = parseTime("posted_date", postedDate); err != nil {
		return persistence.Job{}, err
	}
	if job.ApplicationDeadline, err = parseNullableTime("application_deadline", deadline); err != nil {
		return persistence.Job{}, err
	}
	if job.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Job{}, err
	}
	if job.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Job{}, err
	}
	return job, nil
}
