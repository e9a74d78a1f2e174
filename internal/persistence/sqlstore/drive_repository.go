package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

const driveColumns = `id, title, company_name, location, start_date, end_date, eligibility_criteria,
	job_description, package_offered, contact_person, created_at, updated_at`

// DriveRepository implements persistence.DriveRepository.
type DriveRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDriveRepository creates a new placement drive repository.
func NewDriveRepository(pool *ConnectionPool) *DriveRepository {
	return &DriveRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateDrive inserts a new placement drive.
func (r *DriveRepository) CreateDrive(ctx context.Context, drive persistence.PlacementDrive) error {
	if drive.ID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&drive.CreatedAt, &drive.UpdatedAt)

	_, err := r.helper.Exec(ctx, `
		INSERT INTO placement_drives (`+driveColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		drive.ID,
		drive.Title,
		drive.CompanyName,
		drive.Location,
		formatTime(drive.StartDate),
		nullableTime(drive.EndDate),
		drive.EligibilityCriteria,
		drive.JobDescription,
		drive.PackageOffered,
		drive.ContactPerson,
		formatTime(drive.CreatedAt),
		formatTime(drive.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateDrive replaces the mutable columns of a drive.
func (r *DriveRepository) UpdateDrive(ctx context.Context, drive persistence.PlacementDrive) error {
	if drive.UpdatedAt.IsZero() {
		drive.UpdatedAt = time.Now().UTC()
	}
	result, err := r.helper.Exec(ctx, `
		UPDATE placement_drives
		SET title = ?, company_name = ?, location = ?, start_date = ?, end_date = ?,
			eligibility_criteria = ?, job_description = ?, package_offered = ?, contact_person = ?, updated_at = ?
		WHERE id = ?`,
		drive.Title,
		drive.CompanyName,
		drive.Location,
		formatTime(drive.StartDate),
		nullableTime(drive.EndDate),
		drive.EligibilityCriteria,
		drive.JobDescription,
		drive.PackageOffered,
		drive.ContactPerson,
		formatTime(drive.UpdatedAt),
		drive.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetDrive retrieves a drive by ID.
func (r *DriveRepository) GetDrive(ctx context.Context, id string) (persistence.PlacementDrive, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+driveColumns+` FROM placement_drives WHERE id = ?`, id)
	drive, err := scanDrive(row)
	if err != nil {
		return persistence.PlacementDrive{}, r.mapper.MapError(err)
	}
	return drive, nil
}

// ListDrives returns drives ordered by start date.
func (r *DriveRepository) ListDrives(ctx context.Context) ([]persistence.PlacementDrive, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+driveColumns+` FROM placement_drives ORDER BY start_date ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	drives := make([]persistence.PlacementDrive, 0)
	for rows.Next() {
		drive, err := scanDrive(rows)
		if err != nil {
			return nil, err
		}
		drives = append(drives, drive)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return drives, nil
}

// DeleteDrive removes a drive. Jobs or a report referencing it block the delete.
func (r *DriveRepository) DeleteDrive(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM placement_drives WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// DriveStats aggregates applicants, interviews, offers and placements across
// the drive's jobs.
func (r *DriveRepository) DriveStats(ctx context.Context, driveID string) (persistence.DriveStats, error) {
	var stats persistence.DriveStats
	err := r.helper.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT a.candidate_id) FROM applications a
				JOIN jobs j ON j.id = a.job_id WHERE j.placement_drive_id = ?),
			(SELECT COUNT(*) FROM interviews i
				JOIN jobs j ON j.id = i.job_id WHERE j.placement_drive_id = ?),
			(SELECT COUNT(*) FROM interviews i
				JOIN jobs j ON j.id = i.job_id WHERE j.placement_drive_id = ? AND i.result = 'Selected'),
			(SELECT COUNT(DISTINCT a.candidate_id) FROM applications a
				JOIN jobs j ON j.id = a.job_id WHERE j.placement_drive_id = ? AND a.status = 'Hired')`,
		driveID, driveID, driveID, driveID,
	).Scan(&stats.Participants, &stats.Interviews, &stats.OffersMade, &stats.StudentsPlaced)
	if err != nil {
		return persistence.DriveStats{}, r.mapper.MapError(err)
	}
	return stats, nil
}

func scanDrive(row rowScanner) (persistence.PlacementDrive, error) {
	var (
		drive                persistence.PlacementDrive
		startDate            string
		endDate              sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&drive.ID,
		&drive.Title,
		&drive.CompanyName,
		&drive.Location,
		&startDate,
		&endDate,
		&drive.EligibilityCriteria,
		&drive.JobDescription,
		&drive.PackageOffered,
		&drive.ContactPerson,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.PlacementDrive{}, err
	}

	var err error
	if drive.StartDate, err = parseTime("start_date", startDate); err != nil {
		return persistence.PlacementDrive{}, err
	}
	if drive.EndDate, err = parseNullableTime("end_date", endDate); err != nil {
		return persistence.PlacementDrive{}, err
	}
	if drive.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.PlacementDrive{}, err
	}
	if drive.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.PlacementDrive{}, err
	}
	return drive, nil
}
