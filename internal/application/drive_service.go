package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

var driveRepoErrors = repoErrors{blocked: "placement drive has jobs or a report"}

// DriveService orchestrates validation, authorization, and persistence for placement drives.
type DriveService struct {
	drives      DriveRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDriveService constructs a drive service with the provided dependencies.
func NewDriveService(drives DriveRepository, idGenerator func() string, now func() time.Time) *DriveService {
	return NewDriveServiceWithLogger(drives, idGenerator, now, nil)
}

// NewDriveServiceWithLogger constructs a drive service with a specified logger.
func NewDriveServiceWithLogger(drives DriveRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DriveService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DriveService{drives: drives, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *DriveService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DriveService", operation, attrs...)
}

// CreateDrive validates input and persists a new drive for administrators.
func (s *DriveService) CreateDrive(ctx context.Context, params CreateDriveParams) (drive PlacementDrive, err error) {
	if s == nil || s.drives == nil {
		err = fmt.Errorf("drive repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateDrive", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create placement drive", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("drive_id", drive.ID).InfoContext(ctx, "placement drive created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input := normalizeDriveInput(params.Input)
	if vErr := validateDriveInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	drive = driveFromInput(PlacementDrive{ID: s.idGenerator(), CreatedAt: now}, input)
	drive.UpdatedAt = now

	drive, err = s.drives.CreateDrive(ctx, drive)
	err = driveRepoErrors.mapError(err)
	return
}

// GetDrive returns a single drive.
func (s *DriveService) GetDrive(ctx context.Context, principal Principal, driveID string) (drive PlacementDrive, err error) {
	if s == nil || s.drives == nil {
		err = fmt.Errorf("drive repository not configured")
		return
	}

	drive, err = s.drives.GetDrive(ctx, driveID)
	if err != nil {
		err = driveRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetDrive", "principal_id", principal.UserID, "drive_id", driveID).
			ErrorContext(ctx, "failed to load placement drive", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListDrives returns all drives, earliest start first.
func (s *DriveService) ListDrives(ctx context.Context, principal Principal) (drives []PlacementDrive, err error) {
	if s == nil || s.drives == nil {
		err = fmt.Errorf("drive repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListDrives", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list placement drives", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(drives)).InfoContext(ctx, "placement drives listed")
	}()

	drives, err = s.drives.ListDrives(ctx)
	if err != nil {
		return
	}
	sort.SliceStable(drives, func(i, j int) bool {
		return drives[i].StartDate.Before(drives[j].StartDate)
	})
	return
}

// UpdateDrive replaces the fields of an existing drive for administrators.
func (s *DriveService) UpdateDrive(ctx context.Context, params UpdateDriveParams) (drive PlacementDrive, err error) {
	if s == nil || s.drives == nil {
		err = fmt.Errorf("drive repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDrive",
		"principal_id", params.Principal.UserID,
		"drive_id", params.DriveID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update placement drive", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "placement drive updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing PlacementDrive
	existing, err = s.drives.GetDrive(ctx, params.DriveID)
	if err != nil {
		err = driveRepoErrors.mapError(err)
		return
	}

	input := normalizeDriveInput(params.Input)
	if vErr := validateDriveInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := driveFromInput(existing, input)
	updated.UpdatedAt = s.now()

	drive, err = s.drives.UpdateDrive(ctx, updated)
	err = driveRepoErrors.mapError(err)
	return
}

// DeleteDrive removes a drive that has no jobs and no report.
func (s *DriveService) DeleteDrive(ctx context.Context, principal Principal, driveID string) error {
	if s == nil || s.drives == nil {
		return fmt.Errorf("drive repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteDrive",
		"principal_id", principal.UserID,
		"drive_id", driveID,
	)

	if err := s.drives.DeleteDrive(ctx, driveID); err != nil {
		err = driveRepoErrors.mapError(err)
		logger.ErrorContext(ctx, "failed to delete placement drive", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "placement drive deleted")
	return nil
}

func normalizeDriveInput(input DriveInput) DriveInput {
	input.Title = strings.TrimSpace(input.Title)
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.Location = strings.TrimSpace(input.Location)
	input.EligibilityCriteria = strings.TrimSpace(input.EligibilityCriteria)
	input.JobDescription = strings.TrimSpace(input.JobDescription)
	input.PackageOffered = strings.TrimSpace(input.PackageOffered)
	input.ContactPerson = strings.TrimSpace(input.ContactPerson)
	return input
}

func validateDriveInput(input DriveInput) *ValidationError {
	vErr := &ValidationError{}

	if input.CompanyName == "" {
		vErr.add("companyName", "company name is required")
	}
	if input.StartDate.IsZero() {
		vErr.add("startDate", "start date is required")
	}
	if input.EndDate != nil && !input.StartDate.IsZero() && !input.EndDate.After(input.StartDate) {
		vErr.add("endDate", "end date must be after start date")
	}

	return vErr
}

func driveFromInput(base PlacementDrive, input DriveInput) PlacementDrive {
	base.Title = input.Title
	base.CompanyName = input.CompanyName
	base.Location = input.Location
	base.StartDate = input.StartDate
	base.EndDate = input.EndDate
	base.EligibilityCriteria = input.EligibilityCriteria
	base.JobDescription = input.JobDescription
	base.PackageOffered = input.PackageOffered
	base.ContactPerson = input.ContactPerson
	return base
}
