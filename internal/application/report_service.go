package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var reportRepoErrors = repoErrors{
	duplicate:        "placement drive already has a report",
	referenceField:   "placementDrive",
	referenceMessage: "placement drive does not exist",
}

// ReportExport pairs a report with the drive it summarises.
type ReportExport struct {
	Report Report
	Drive  PlacementDrive
}

// ReportService maintains one stored summary per placement drive. Counts are
// computed from storage whenever a report is written.
type ReportService struct {
	reports     ReportRepository
	drives      DriveStatistics
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewReportService constructs a report service with the provided dependencies.
func NewReportService(reports ReportRepository, drives DriveStatistics, idGenerator func() string, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(reports, drives, idGenerator, now, nil)
}

// NewReportServiceWithLogger constructs a report service with a specified logger.
func NewReportServiceWithLogger(reports ReportRepository, drives DriveStatistics, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReportService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReportService{reports: reports, drives: drives, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// CreateReport computes and stores the report of a drive.
func (s *ReportService) CreateReport(ctx context.Context, params CreateReportParams) (report Report, err error) {
	if s == nil || s.reports == nil || s.drives == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReport",
		"principal_id", params.Principal.UserID,
		"drive_id", params.Input.PlacementDriveID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("report_id", report.ID).InfoContext(ctx, "report created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	now := s.now()
	report = Report{ID: s.idGenerator(), CreatedAt: now, UpdatedAt: now}
	if report, err = s.compute(ctx, report, params.Input); err != nil {
		return
	}

	report, err = s.reports.CreateReport(ctx, report)
	err = reportRepoErrors.mapError(err)
	return
}

// UpdateReport recomputes the counts of a report and replaces its dates and
// summary.
func (s *ReportService) UpdateReport(ctx context.Context, params UpdateReportParams) (report Report, err error) {
	if s == nil || s.reports == nil || s.drives == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateReport",
		"principal_id", params.Principal.UserID,
		"report_id", params.ReportID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "report updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing Report
	existing, err = s.reports.GetReport(ctx, params.ReportID)
	if err != nil {
		err = reportRepoErrors.mapError(err)
		return
	}

	input := params.Input
	if strings.TrimSpace(input.PlacementDriveID) == "" {
		input.PlacementDriveID = existing.PlacementDriveID
	}

	existing.UpdatedAt = s.now()
	if report, err = s.compute(ctx, existing, input); err != nil {
		return
	}

	report, err = s.reports.UpdateReport(ctx, report)
	err = reportRepoErrors.mapError(err)
	return
}

// compute fills report from input and the drive's current statistics.
func (s *ReportService) compute(ctx context.Context, report Report, input ReportInput) (Report, error) {
	driveID := strings.TrimSpace(input.PlacementDriveID)
	if driveID == "" {
		return Report{}, singleFieldError("placementDrive", "placement drive is required")
	}

	drive, err := s.drives.GetDrive(ctx, driveID)
	if err != nil {
		if err = plainRepoErrors.mapError(err); errors.Is(err, ErrNotFound) {
			return Report{}, singleFieldError("placementDrive", "placement drive does not exist")
		}
		return Report{}, err
	}

	report.PlacementDriveID = drive.ID
	report.Summary = strings.TrimSpace(input.Summary)
	report.StartDate = drive.StartDate
	if input.StartDate != nil {
		report.StartDate = *input.StartDate
	}
	report.EndDate = drive.EndDate
	if input.EndDate != nil {
		end := *input.EndDate
		report.EndDate = &end
	}
	if report.EndDate != nil && report.EndDate.Before(report.StartDate) {
		return Report{}, singleFieldError("endDate", "end date must not be before start date")
	}

	stats, err := s.drives.DriveStats(ctx, drive.ID)
	if err != nil {
		return Report{}, plainRepoErrors.mapError(err)
	}
	report.ParticipantCount = stats.Participants
	report.InterviewCount = stats.Interviews
	report.OffersMade = stats.OffersMade
	report.StudentsPlaced = stats.StudentsPlaced
	return report, nil
}

// GetReport returns a single report to administrators.
func (s *ReportService) GetReport(ctx context.Context, principal Principal, reportID string) (report Report, err error) {
	if s == nil || s.reports == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	report, err = s.reports.GetReport(ctx, reportID)
	if err != nil {
		err = reportRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetReport", "principal_id", principal.UserID, "report_id", reportID).
			ErrorContext(ctx, "failed to load report", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListReports returns every report to administrators.
func (s *ReportService) ListReports(ctx context.Context, principal Principal) (reports []Report, err error) {
	if s == nil || s.reports == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListReports", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reports", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reports)).InfoContext(ctx, "reports listed")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	reports, err = s.reports.ListReports(ctx)
	return
}

// DeleteReport removes a report for administrators.
func (s *ReportService) DeleteReport(ctx context.Context, principal Principal, reportID string) error {
	if s == nil || s.reports == nil {
		return fmt.Errorf("report repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteReport",
		"principal_id", principal.UserID,
		"report_id", reportID,
	)

	if err := s.reports.DeleteReport(ctx, reportID); err != nil {
		err = reportRepoErrors.mapError(err)
		logger.ErrorContext(ctx, "failed to delete report", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "report deleted")
	return nil
}

// ExportReports resolves reports with their drives for export. An empty
// reportID selects every report.
func (s *ReportService) ExportReports(ctx context.Context, principal Principal, reportID string) (exports []ReportExport, err error) {
	if s == nil || s.reports == nil || s.drives == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ExportReports", "principal_id", principal.UserID, "report_id", reportID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export reports", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(exports)).InfoContext(ctx, "reports exported")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var reports []Report
	if reportID != "" {
		var report Report
		if report, err = s.reports.GetReport(ctx, reportID); err != nil {
			err = reportRepoErrors.mapError(err)
			return
		}
		reports = []Report{report}
	} else if reports, err = s.reports.ListReports(ctx); err != nil {
		return
	}

	exports = make([]ReportExport, 0, len(reports))
	for _, report := range reports {
		drive, driveErr := s.drives.GetDrive(ctx, report.PlacementDriveID)
		if driveErr != nil {
			err = plainRepoErrors.mapError(driveErr)
			return
		}
		exports = append(exports, ReportExport{Report: report, Drive: drive})
	}
	return
}
