package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var jobRepoErrors = repoErrors{blocked: "job has applications or interviews"}

// JobService orchestrates validation, authorization, and persistence for jobs.
type JobService struct {
	jobs        JobRepository
	drives      DriveLookup
	companies   CompanyLookup
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewJobService constructs a job service with the provided dependencies.
func NewJobService(jobs JobRepository, drives DriveLookup, companies CompanyLookup, idGenerator func() string, now func() time.Time) *JobService {
	return NewJobServiceWithLogger(jobs, drives, companies, idGenerator, now, nil)
}

// NewJobServiceWithLogger constructs a job service with a specified logger.
func NewJobServiceWithLogger(jobs JobRepository, drives DriveLookup, companies CompanyLookup, idGenerator func() string, now func() time.Time, logger *slog.Logger) *JobService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &JobService{jobs: jobs, drives: drives, companies: companies, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *JobService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "JobService", operation, attrs...)
}

// CreateJob posts a job inside an existing drive. Company users always post
// for their own company.
func (s *JobService) CreateJob(ctx context.Context, params CreateJobParams) (job Job, err error) {
	if s == nil || s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateJob", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create job", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("job_id", job.ID).InfoContext(ctx, "job created")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	input := normalizeJobInput(params.Input)
	if params.Principal.Role == RoleCompany {
		input.CompanyID = params.Principal.CompanyID
	}

	now := s.now()
	if input.PostedDate == nil {
		input.PostedDate = &now
	}

	vErr := validateJobInput(input)
	s.checkReferences(ctx, input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	job = jobFromInput(Job{ID: s.idGenerator(), CreatedAt: now}, input)
	job.UpdatedAt = now

	job, err = s.jobs.CreateJob(ctx, job)
	err = jobRepoErrors.mapError(err)
	return
}

// GetJob returns a single job.
func (s *JobService) GetJob(ctx context.Context, principal Principal, jobID string) (job Job, err error) {
	if s == nil || s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	job, err = s.jobs.GetJob(ctx, jobID)
	if err != nil {
		err = jobRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetJob", "principal_id", principal.UserID, "job_id", jobID).
			ErrorContext(ctx, "failed to load job", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListJobs returns jobs newest first, optionally limited to one company.
func (s *JobService) ListJobs(ctx context.Context, principal Principal, companyID string) (jobs []Job, err error) {
	if s == nil || s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	companyID = strings.TrimSpace(companyID)
	logger := s.loggerWith(ctx, "ListJobs", "principal_id", principal.UserID, "company_id", companyID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list jobs", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(jobs)).InfoContext(ctx, "jobs listed")
	}()

	jobs, err = s.jobs.ListJobs(ctx, companyID)
	return
}

// UpdateJob replaces the fields of a job. Company users may only edit jobs of
// their own company and cannot move a job to another company.
func (s *JobService) UpdateJob(ctx context.Context, params UpdateJobParams) (job Job, err error) {
	if s == nil || s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateJob",
		"principal_id", params.Principal.UserID,
		"job_id", params.JobID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update job", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "job updated")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing Job
	existing, err = s.jobs.GetJob(ctx, params.JobID)
	if err != nil {
		err = jobRepoErrors.mapError(err)
		return
	}
	if !ownsJob(params.Principal, existing) {
		err = ErrUnauthorized
		return
	}

	input := normalizeJobInput(params.Input)
	if params.Principal.Role == RoleCompany || input.CompanyID == "" {
		input.CompanyID = existing.CompanyID
	}
	if input.PlacementDriveID == "" {
		input.PlacementDriveID = existing.PlacementDriveID
	}
	if input.PostedDate == nil {
		input.PostedDate = &existing.PostedDate
	}

	vErr := validateJobInput(input)
	s.checkReferences(ctx, input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := jobFromInput(existing, input)
	updated.UpdatedAt = s.now()

	job, err = s.jobs.UpdateJob(ctx, updated)
	err = jobRepoErrors.mapError(err)
	return
}

// DeleteJob removes a job that has no applications or interviews.
func (s *JobService) DeleteJob(ctx context.Context, principal Principal, jobID string) (err error) {
	if s == nil || s.jobs == nil {
		return fmt.Errorf("job repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteJob",
		"principal_id", principal.UserID,
		"job_id", jobID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete job", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "job deleted")
	}()

	if !principal.HasRole(RoleCompany, RoleAdmin) {
		return ErrUnauthorized
	}

	if principal.Role == RoleCompany {
		existing, getErr := s.jobs.GetJob(ctx, jobID)
		if getErr != nil {
			return jobRepoErrors.mapError(getErr)
		}
		if !ownsJob(principal, existing) {
			return ErrUnauthorized
		}
	}

	return jobRepoErrors.mapError(s.jobs.DeleteJob(ctx, jobID))
}

func (s *JobService) checkReferences(ctx context.Context, input JobInput, vErr *ValidationError) {
	if input.PlacementDriveID != "" && s.drives != nil {
		if _, err := s.drives.GetDrive(ctx, input.PlacementDriveID); err != nil {
			vErr.add("placementDrive", "placement drive does not exist")
		}
	}
	if input.CompanyID != "" && s.companies != nil {
		if _, err := s.companies.GetCompany(ctx, input.CompanyID); err != nil {
			vErr.add("company", "company does not exist")
		}
	}
}

func ownsJob(principal Principal, job Job) bool {
	if principal.IsAdmin() {
		return true
	}
	return principal.Role == RoleCompany && principal.CompanyID != "" && principal.CompanyID == job.CompanyID
}

func normalizeJobInput(input JobInput) JobInput {
	input.PlacementDriveID = strings.TrimSpace(input.PlacementDriveID)
	input.CompanyID = strings.TrimSpace(input.CompanyID)
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Salary = strings.TrimSpace(input.Salary)
	input.SkillsRequired = trimAll(input.SkillsRequired)
	if input.Openings == 0 {
		input.Openings = 1
	}
	return input
}

func validateJobInput(input JobInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Title == "" {
		vErr.add("title", "job title is required")
	}
	if input.PlacementDriveID == "" {
		vErr.add("placementDrive", "placement drive is required")
	}
	if input.CompanyID == "" {
		vErr.add("company", "company is required")
	}
	if input.Openings < 1 {
		vErr.add("openings", "openings must be at least 1")
	}
	if input.ApplicationDeadline != nil && input.PostedDate != nil && !input.ApplicationDeadline.After(*input.PostedDate) {
		vErr.add("applicationDeadline", "application deadline must be after posted date")
	}

	return vErr
}

func jobFromInput(base Job, input JobInput) Job {
	base.PlacementDriveID = input.PlacementDriveID
	base.CompanyID = input.CompanyID
	base.Title = input.Title
	base.Description = input.Description
	base.Location = input.Location
	base.Salary = input.Salary
	base.SkillsRequired = input.SkillsRequired
	base.Openings = input.Openings
	if input.PostedDate != nil {
		base.PostedDate = *input.PostedDate
	}
	base.ApplicationDeadline = input.ApplicationDeadline
	return base
}
