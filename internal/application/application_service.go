package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var applicationStatuses = []string{
	ApplicationSubmitted,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationRejected,
	ApplicationHired,
}

var applicationRepoErrors = repoErrors{
	duplicate:        "you have already applied to this job",
	referenceField:   "candidate",
	referenceMessage: "candidate does not exist",
}

// ApplicationService drives the application lifecycle: submission, review
// and the status notification that follows every review.
type ApplicationService struct {
	applications ApplicationRepository
	jobs         JobLookup
	users        UserLookup
	notifier     Notifier
	composer     NotificationComposer
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewApplicationService constructs an application service with the provided dependencies.
func NewApplicationService(applications ApplicationRepository, jobs JobLookup, users UserLookup, notifier Notifier, composer NotificationComposer, idGenerator func() string, now func() time.Time) *ApplicationService {
	return NewApplicationServiceWithLogger(applications, jobs, users, notifier, composer, idGenerator, now, nil)
}

// NewApplicationServiceWithLogger constructs an application service with a specified logger.
func NewApplicationServiceWithLogger(applications ApplicationRepository, jobs JobLookup, users UserLookup, notifier Notifier, composer NotificationComposer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ApplicationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		users:        users,
		notifier:     notifier,
		composer:     composer,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ApplicationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ApplicationService", operation, attrs...)
}

// CreateApplication submits an application. Students always apply as
// themselves; the company is copied from the job.
func (s *ApplicationService) CreateApplication(ctx context.Context, params CreateApplicationParams) (application Application, err error) {
	if s == nil || s.applications == nil || s.jobs == nil {
		err = fmt.Errorf("application repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateApplication",
		"principal_id", params.Principal.UserID,
		"job_id", params.Input.JobID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create application", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("application_id", application.ID).InfoContext(ctx, "application created")
	}()

	if !params.Principal.HasRole(RoleStudent, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	input.JobID = strings.TrimSpace(input.JobID)
	input.CandidateID = strings.TrimSpace(input.CandidateID)
	input.Resume = strings.TrimSpace(input.Resume)
	input.CoverLetter = strings.TrimSpace(input.CoverLetter)
	if params.Principal.Role == RoleStudent {
		input.CandidateID = params.Principal.UserID
	}

	vErr := &ValidationError{}
	if input.JobID == "" {
		vErr.add("job", "job is required")
	}
	if input.CandidateID == "" {
		vErr.add("candidate", "candidate is required")
	}
	if input.Resume == "" {
		vErr.add("resume", "resume is required")
	} else if !isValidURL(input.Resume) {
		vErr.add("resume", "resume must be a valid URL")
	}

	var job Job
	if input.JobID != "" {
		if job, err = s.jobs.GetJob(ctx, input.JobID); err != nil {
			if err = plainRepoErrors.mapError(err); !errors.Is(err, ErrNotFound) {
				return
			}
			err = nil
			vErr.add("job", "job does not exist")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	application = Application{
		ID:          s.idGenerator(),
		JobID:       job.ID,
		CandidateID: input.CandidateID,
		CompanyID:   job.CompanyID,
		Resume:      input.Resume,
		CoverLetter: input.CoverLetter,
		Status:      ApplicationSubmitted,
		AppliedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	application, err = s.applications.CreateApplication(ctx, application)
	err = applicationRepoErrors.mapError(err)
	return
}

// UpdateApplication applies a review and notifies the candidate. Every
// successful review sends exactly one status email.
func (s *ApplicationService) UpdateApplication(ctx context.Context, params UpdateApplicationParams) (application Application, err error) {
	if s == nil || s.applications == nil {
		err = fmt.Errorf("application repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateApplication",
		"principal_id", params.Principal.UserID,
		"application_id", params.ApplicationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update application", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", application.Status).InfoContext(ctx, "application updated")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing Application
	existing, err = s.applications.GetApplication(ctx, params.ApplicationID)
	if err != nil {
		err = applicationRepoErrors.mapError(err)
		return
	}
	if params.Principal.Role == RoleCompany && existing.CompanyID != params.Principal.CompanyID {
		err = ErrUnauthorized
		return
	}

	updated := existing
	if params.Review.Status != nil {
		status := canonical(*params.Review.Status, applicationStatuses...)
		if !oneOf(status, applicationStatuses...) {
			err = singleFieldError("status", "status must be one of "+strings.Join(applicationStatuses, ", "))
			return
		}
		updated.Status = status
	}
	if params.Review.Notes != nil {
		updated.Notes = strings.TrimSpace(*params.Review.Notes)
	}
	updated.UpdatedBy = stringPtr(params.Principal.UserID)
	updated.UpdatedAt = s.now()

	application, err = s.applications.UpdateApplication(ctx, updated)
	if err != nil {
		err = applicationRepoErrors.mapError(err)
		return
	}

	s.notifyStatus(ctx, logger, application)
	return
}

func (s *ApplicationService) notifyStatus(ctx context.Context, logger *slog.Logger, application Application) {
	if s.notifier == nil {
		return
	}
	if s.users == nil {
		logger.WarnContext(ctx, "candidate lookup not configured; skipping notification")
		return
	}

	candidate, err := s.users.GetUser(ctx, application.CandidateID)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve candidate for notification", "error", err)
		return
	}

	jobTitle := "the position"
	if s.jobs != nil {
		if job, jobErr := s.jobs.GetJob(ctx, application.JobID); jobErr == nil {
			jobTitle = job.Title
		} else {
			logger.WarnContext(ctx, "failed to resolve job for notification", "error", jobErr)
		}
	}

	n := s.composer.ApplicationStatus(candidate.Email, candidate.Name, jobTitle, application.Status)
	n.ID = s.idGenerator()
	n.CreatedAt = s.now()
	deliver(ctx, logger, s.notifier, n)
}

// GetApplication returns a single application to any authenticated caller.
func (s *ApplicationService) GetApplication(ctx context.Context, principal Principal, applicationID string) (application Application, err error) {
	if s == nil || s.applications == nil {
		err = fmt.Errorf("application repository not configured")
		return
	}

	application, err = s.applications.GetApplication(ctx, applicationID)
	if err != nil {
		err = applicationRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetApplication", "principal_id", principal.UserID, "application_id", applicationID).
			ErrorContext(ctx, "failed to load application", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListApplications returns every application to administrators.
func (s *ApplicationService) ListApplications(ctx context.Context, principal Principal) ([]Application, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, "ListApplications", principal, ApplicationFilter{})
}

// ListMyApplications returns the calling student's applications only.
func (s *ApplicationService) ListMyApplications(ctx context.Context, principal Principal) ([]Application, error) {
	if principal.Role != RoleStudent {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, "ListMyApplications", principal, ApplicationFilter{CandidateID: principal.UserID})
}

// ListCompanyApplications returns applications to the calling company's
// jobs, optionally narrowed to one job and one status.
func (s *ApplicationService) ListCompanyApplications(ctx context.Context, principal Principal, jobID, status string) ([]Application, error) {
	if principal.Role != RoleCompany {
		return nil, ErrUnauthorized
	}
	if principal.CompanyID == "" {
		return nil, singleFieldError("company", "invalid or missing company id")
	}
	status = canonical(status, applicationStatuses...)
	if status != "" && !oneOf(status, applicationStatuses...) {
		return nil, singleFieldError("status", "status must be one of "+strings.Join(applicationStatuses, ", "))
	}
	return s.list(ctx, "ListCompanyApplications", principal, ApplicationFilter{
		CompanyID: principal.CompanyID,
		JobID:     strings.TrimSpace(jobID),
		Status:    status,
	})
}

func (s *ApplicationService) list(ctx context.Context, operation string, principal Principal, filter ApplicationFilter) (applications []Application, err error) {
	if s == nil || s.applications == nil {
		err = fmt.Errorf("application repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list applications", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(applications)).InfoContext(ctx, "applications listed")
	}()

	applications, err = s.applications.ListApplications(ctx, filter)
	return
}

// DeleteApplication withdraws an application. Students may only withdraw
// their own.
func (s *ApplicationService) DeleteApplication(ctx context.Context, principal Principal, applicationID string) (err error) {
	if s == nil || s.applications == nil {
		return fmt.Errorf("application repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteApplication",
		"principal_id", principal.UserID,
		"application_id", applicationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete application", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "application deleted")
	}()

	if !principal.HasRole(RoleStudent, RoleAdmin) {
		return ErrUnauthorized
	}
	if principal.Role == RoleStudent {
		existing, getErr := s.applications.GetApplication(ctx, applicationID)
		if getErr != nil {
			return applicationRepoErrors.mapError(getErr)
		}
		if existing.CandidateID != principal.UserID {
			return ErrUnauthorized
		}
	}

	return applicationRepoErrors.mapError(s.applications.DeleteApplication(ctx, applicationID))
}
