package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

const reportColumns = `id, placement_drive_id, participant_count, interview_count, offers_made, students_placed,
	start_date, end_date, summary, created_at, updated_at`

// ReportRepository implements persistence.ReportRepository.
type ReportRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReportRepository creates a new report repository.
func NewReportRepository(pool *ConnectionPool) *ReportRepository {
	return &ReportRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateReport inserts a report. One report per drive is enforced by a unique index.
func (r *ReportRepository) CreateReport(ctx context.Context, report persistence.Report) error {
	if report.ID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&report.CreatedAt, &report.UpdatedAt)

	_, err := r.helper.Exec(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.PlacementDriveID,
		report.ParticipantCount,
		report.InterviewCount,
		report.OffersMade,
		report.StudentsPlaced,
		formatTime(report.StartDate),
		nullableTime(report.EndDate),
		report.Summary,
		formatTime(report.CreatedAt),
		formatTime(report.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateReport replaces the counts, dates and summary of a report.
func (r *ReportRepository) UpdateReport(ctx context.Context, report persistence.Report) error {
	if report.UpdatedAt.IsZero() {
		report.UpdatedAt = time.Now().UTC()
	}
	result, err := r.helper.Exec(ctx, `
		UPDATE reports
		SET placement_drive_id = ?, participant_count = ?, interview_count = ?, offers_made = ?, students_placed = ?,
			start_date = ?, end_date = ?, summary = ?, updated_at = ?
		WHERE id = ?`,
		report.PlacementDriveID,
		report.ParticipantCount,
		report.InterviewCount,
		report.OffersMade,
		report.StudentsPlaced,
		formatTime(report.StartDate),
		nullableTime(report.EndDate),
		report.Summary,
		formatTime(report.UpdatedAt),
		report.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetReport retrieves a report by ID.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (persistence.Report, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if err != nil {
		return persistence.Report{}, r.mapper.MapError(err)
	}
	return report, nil
}

// ListReports returns reports newest first.
func (r *ReportRepository) ListReports(ctx context.Context) ([]persistence.Report, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	reports := make([]persistence.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reports, nil
}

// DeleteReport removes a report by ID.
func (r *ReportRepository) DeleteReport(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func scanReport(row rowScanner) (persistence.Report, error) {
	var (
		report               persistence.Report
		startDate            string
		endDate              sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&report.ID,
		&report.PlacementDriveID,
		&report.ParticipantCount,
		&report.InterviewCount,
		&report.OffersMade,
		&report.StudentsPlaced,
		&startDate,
		&endDate,
		&report.Summary,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Report{}, err
	}

	var err error
	if report.StartDate, err = parseTime("start_date", startDate); err != nil {
		return persistence.Report{}, err
	}
	if report.EndDate, err = parseNullableTime("end_date", endDate); err != nil {
		return persistence.Report{}, err
	}
	if report.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Report{}, err
	}
	if report.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Report{}, err
	}
	return report, nil
}
