package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	meetingPlatform      = "Jitsi Meet"
	meetingBaseURL       = "https://meet.jit.si/"
	defaultInterviewMins = 30
	defaultRound         = "Round 1"
	defaultTimezone      = "UTC"
)

var (
	interviewStatuses = []string{InterviewScheduled, InterviewCompleted, InterviewCancelled}
	interviewResults  = []string{ResultPending, ResultShortlisted, ResultRejected, ResultSelected}
	interviewTypes    = []string{InterviewOnline, InterviewOffline, InterviewHybrid}
)

var interviewRepoErrors = repoErrors{
	referenceField:   "interview",
	referenceMessage: "interview references a job or candidate that does not exist",
}

// InterviewService drives the interview lifecycle: scheduling, evaluation,
// cancellation and the candidate notifications that follow.
type InterviewService struct {
	interviews  InterviewRepository
	jobs        JobLookup
	users       UserLookup
	companies   CompanyLookup
	notifier    Notifier
	composer    NotificationComposer
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewInterviewService constructs an interview service with the provided dependencies.
func NewInterviewService(interviews InterviewRepository, jobs JobLookup, users UserLookup, companies CompanyLookup, notifier Notifier, composer NotificationComposer, idGenerator func() string, now func() time.Time) *InterviewService {
	return NewInterviewServiceWithLogger(interviews, jobs, users, companies, notifier, composer, idGenerator, now, nil)
}

// NewInterviewServiceWithLogger constructs an interview service with a specified logger.
func NewInterviewServiceWithLogger(interviews InterviewRepository, jobs JobLookup, users UserLookup, companies CompanyLookup, notifier Notifier, composer NotificationComposer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *InterviewService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InterviewService{
		interviews:  interviews,
		jobs:        jobs,
		users:       users,
		companies:   companies,
		notifier:    notifier,
		composer:    composer,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *InterviewService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InterviewService", operation, attrs...)
}

// CreateInterview schedules an interview on a generated meeting and sends the
// candidate a schedule email.
func (s *InterviewService) CreateInterview(ctx context.Context, params CreateInterviewParams) (interview Interview, err error) {
	if s == nil || s.interviews == nil || s.jobs == nil {
		err = fmt.Errorf("interview repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateInterview",
		"principal_id", params.Principal.UserID,
		"job_id", params.Input.JobID,
		"candidate_id", params.Input.CandidateID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("interview_id", interview.ID).InfoContext(ctx, "interview created")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	input := normalizeInterviewInput(params.Input)
	vErr := validateInterviewInput(input)

	var job Job
	var candidate User
	if input.JobID != "" {
		if job, err = s.lookupJob(ctx, input.JobID, vErr); err != nil {
			return
		}
	}
	if input.CandidateID != "" {
		if candidate, err = s.lookupCandidate(ctx, input.CandidateID, vErr); err != nil {
			return
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if !ownsJob(params.Principal, job) {
		err = ErrUnauthorized
		return
	}

	now := s.now()
	meetingID := fmt.Sprintf("interview-%d-%s", now.UnixMilli(), input.CandidateID)
	interview = Interview{
		ID:              s.idGenerator(),
		JobID:           input.JobID,
		CandidateID:     input.CandidateID,
		StartTime:       *input.StartTime,
		EndTime:         input.EndTime,
		InterviewDate:   *input.InterviewDate,
		DurationMinutes: input.DurationMinutes,
		Timezone:        input.Timezone,
		Round:           input.Round,
		InterviewType:   input.InterviewType,
		Platform:        meetingPlatform,
		Location:        input.Location,
		MeetingID:       meetingID,
		MeetingPassword: input.MeetingPassword,
		Interviewers:    input.Interviewers,
		Status:          InterviewScheduled,
		Result:          ResultPending,
		Attachments:     stampAttachments(input.Attachments, params.Principal.UserID, now),
		Reminders:       input.Reminders,
		VideoProvider: VideoProvider{
			ProviderName:      meetingPlatform,
			ExternalMeetingID: meetingID,
			JoinURL:           meetingBaseURL + meetingID,
			WebhookStatus:     ProviderPending,
		},
		CreatedBy: stringPtr(params.Principal.UserID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	interview, err = s.interviews.CreateInterview(ctx, interview)
	if err != nil {
		err = interviewRepoErrors.mapError(err)
		return
	}

	n := s.composer.InterviewScheduled(candidate.Email, interview, job.Title, s.companyName(ctx, job.CompanyID))
	s.send(ctx, logger, n)
	return
}

// UpdateInterview applies a partial update. The meeting id never changes.
// A result email is sent whenever the resulting result is not Pending.
func (s *InterviewService) UpdateInterview(ctx context.Context, params UpdateInterviewParams) (interview Interview, err error) {
	if s == nil || s.interviews == nil || s.jobs == nil {
		err = fmt.Errorf("interview repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateInterview",
		"principal_id", params.Principal.UserID,
		"interview_id", params.InterviewID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", interview.Status, "result", interview.Result).InfoContext(ctx, "interview updated")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing Interview
	existing, err = s.interviews.GetInterview(ctx, params.InterviewID)
	if err != nil {
		err = interviewRepoErrors.mapError(err)
		return
	}
	if err = s.authorizeInterview(ctx, params.Principal, existing); err != nil {
		return
	}

	updated, vErr := applyInterviewPatch(existing, params.Patch)

	var job Job
	if updated.JobID != existing.JobID {
		if job, err = s.lookupJob(ctx, updated.JobID, vErr); err != nil {
			return
		}
		if !vErr.HasErrors() && !ownsJob(params.Principal, job) {
			err = ErrUnauthorized
			return
		}
	}
	if updated.CandidateID != existing.CandidateID {
		if _, err = s.lookupCandidate(ctx, updated.CandidateID, vErr); err != nil {
			return
		}
	}

	reconcileLifecycle(&updated, existing.Status, params.Principal.UserID, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	updated.UpdatedAt = s.now()

	interview, err = s.interviews.UpdateInterview(ctx, updated)
	if err != nil {
		err = interviewRepoErrors.mapError(err)
		return
	}

	if strings.EqualFold(interview.Result, ResultPending) {
		logger.DebugContext(ctx, "result pending; no notification sent")
		return
	}
	s.notifyResult(ctx, logger, interview)
	return
}

func (s *InterviewService) notifyResult(ctx context.Context, logger *slog.Logger, interview Interview) {
	if s.notifier == nil || s.users == nil {
		return
	}
	candidate, err := s.users.GetUser(ctx, interview.CandidateID)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve candidate for notification", "error", err)
		return
	}
	job, err := s.jobs.GetJob(ctx, interview.JobID)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve job for notification", "error", err)
		return
	}
	n := s.composer.InterviewResult(candidate.Email, interview, job.Title, s.companyName(ctx, job.CompanyID))
	s.send(ctx, logger, n)
}

func (s *InterviewService) send(ctx context.Context, logger *slog.Logger, n Notification) {
	n.ID = s.idGenerator()
	n.CreatedAt = s.now()
	deliver(ctx, logger, s.notifier, n)
}

func (s *InterviewService) companyName(ctx context.Context, companyID string) string {
	if s.companies == nil || companyID == "" {
		return ""
	}
	company, err := s.companies.GetCompany(ctx, companyID)
	if err != nil {
		return ""
	}
	return company.Name
}

func (s *InterviewService) lookupJob(ctx context.Context, jobID string, vErr *ValidationError) (Job, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err == nil {
		return job, nil
	}
	if err = plainRepoErrors.mapError(err); errors.Is(err, ErrNotFound) {
		vErr.add("job", "job does not exist")
		return Job{}, nil
	}
	return Job{}, err
}

func (s *InterviewService) lookupCandidate(ctx context.Context, candidateID string, vErr *ValidationError) (User, error) {
	if s.users == nil {
		return User{}, nil
	}
	user, err := s.users.GetUser(ctx, candidateID)
	if err == nil {
		if user.Role != RoleStudent {
			vErr.add("candidate", "candidate must be a student")
		}
		return user, nil
	}
	if err = plainRepoErrors.mapError(err); errors.Is(err, ErrNotFound) {
		vErr.add("candidate", "candidate does not exist")
		return User{}, nil
	}
	return User{}, err
}

// authorizeInterview allows administrators and the company owning the
// interview's job.
func (s *InterviewService) authorizeInterview(ctx context.Context, principal Principal, interview Interview) error {
	if principal.IsAdmin() {
		return nil
	}
	job, err := s.jobs.GetJob(ctx, interview.JobID)
	if err != nil {
		return interviewRepoErrors.mapError(err)
	}
	if !ownsJob(principal, job) {
		return ErrUnauthorized
	}
	return nil
}

// GetInterview returns a single interview to any authenticated caller.
func (s *InterviewService) GetInterview(ctx context.Context, principal Principal, interviewID string) (interview Interview, err error) {
	if s == nil || s.interviews == nil {
		err = fmt.Errorf("interview repository not configured")
		return
	}

	interview, err = s.interviews.GetInterview(ctx, interviewID)
	if err != nil {
		err = interviewRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetInterview", "principal_id", principal.UserID, "interview_id", interviewID).
			ErrorContext(ctx, "failed to load interview", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListInterviews returns every interview to administrators.
func (s *InterviewService) ListInterviews(ctx context.Context, principal Principal) ([]Interview, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, "ListInterviews", principal, InterviewFilter{})
}

// ListMyInterviews returns the calling student's interviews.
func (s *InterviewService) ListMyInterviews(ctx context.Context, principal Principal) ([]Interview, error) {
	if principal.Role != RoleStudent {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, "ListMyInterviews", principal, InterviewFilter{CandidateID: principal.UserID})
}

// ListCompanyInterviews returns interviews for jobs owned by the calling
// company.
func (s *InterviewService) ListCompanyInterviews(ctx context.Context, principal Principal) ([]Interview, error) {
	if principal.Role != RoleCompany {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(principal.CompanyID) == "" {
		return nil, singleFieldError("company", "invalid or missing company id")
	}
	return s.list(ctx, "ListCompanyInterviews", principal, InterviewFilter{CompanyID: principal.CompanyID})
}

func (s *InterviewService) list(ctx context.Context, operation string, principal Principal, filter InterviewFilter) (interviews []Interview, err error) {
	if s == nil || s.interviews == nil {
		err = fmt.Errorf("interview repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list interviews", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(interviews)).InfoContext(ctx, "interviews listed")
	}()

	interviews, err = s.interviews.ListInterviews(ctx, filter)
	return
}

// DeleteInterview removes an interview. Nothing references interviews, so no
// cascade is needed.
func (s *InterviewService) DeleteInterview(ctx context.Context, principal Principal, interviewID string) (err error) {
	if s == nil || s.interviews == nil || s.jobs == nil {
		return fmt.Errorf("interview repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteInterview",
		"principal_id", principal.UserID,
		"interview_id", interviewID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete interview", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "interview deleted")
	}()

	if !principal.HasRole(RoleCompany, RoleAdmin) {
		return ErrUnauthorized
	}
	if !principal.IsAdmin() {
		existing, getErr := s.interviews.GetInterview(ctx, interviewID)
		if getErr != nil {
			return interviewRepoErrors.mapError(getErr)
		}
		if err = s.authorizeInterview(ctx, principal, existing); err != nil {
			return err
		}
	}

	return interviewRepoErrors.mapError(s.interviews.DeleteInterview(ctx, interviewID))
}

func normalizeInterviewInput(input InterviewInput) InterviewInput {
	input.JobID = strings.TrimSpace(input.JobID)
	input.CandidateID = strings.TrimSpace(input.CandidateID)
	input.Timezone = strings.TrimSpace(input.Timezone)
	if input.Timezone == "" {
		input.Timezone = defaultTimezone
	}
	input.Round = strings.TrimSpace(input.Round)
	if input.Round == "" {
		input.Round = defaultRound
	}
	input.InterviewType = canonical(input.InterviewType, interviewTypes...)
	if strings.TrimSpace(input.InterviewType) == "" {
		input.InterviewType = InterviewOnline
	}
	if input.DurationMinutes == 0 {
		input.DurationMinutes = defaultInterviewMins
	}
	input.Location = strings.TrimSpace(input.Location)
	input.Interviewers = trimAll(input.Interviewers)
	return input
}

func validateInterviewInput(input InterviewInput) *ValidationError {
	vErr := &ValidationError{}

	if input.JobID == "" {
		vErr.add("job", "job is required")
	}
	if input.CandidateID == "" {
		vErr.add("candidate", "candidate is required")
	}
	if input.StartTime == nil || input.StartTime.IsZero() {
		vErr.add("startTime", "start time is required")
	}
	if input.InterviewDate == nil || input.InterviewDate.IsZero() {
		vErr.add("interviewDate", "interview date is required")
	}
	validateInterviewShape(vErr, input.StartTime, input.EndTime, input.InterviewType, input.DurationMinutes)
	for _, attachment := range input.Attachments {
		if !isValidURL(attachment.URL) {
			vErr.add("attachments", "attachment URLs must be valid")
			break
		}
	}

	return vErr
}

func validateInterviewShape(vErr *ValidationError, start, end *time.Time, interviewType string, duration int) {
	if start != nil && end != nil && !start.IsZero() && !end.After(*start) {
		vErr.add("endTime", "end time must be after start time")
	}
	if !oneOf(interviewType, interviewTypes...) {
		vErr.add("interviewType", "interview type must be one of "+strings.Join(interviewTypes, ", "))
	}
	if duration <= 0 {
		vErr.add("durationMinutes", "duration must be positive")
	}
}

// applyInterviewPatch merges patch into existing and validates the fields it
// touched. The meeting id is never taken from the patch.
func applyInterviewPatch(existing Interview, patch InterviewPatch) (Interview, *ValidationError) {
	vErr := &ValidationError{}
	updated := existing

	if patch.Feedback != nil {
		updated.Feedback = strings.TrimSpace(*patch.Feedback)
	}
	if patch.Score != nil {
		score := *patch.Score
		if score < 0 || score > 100 {
			vErr.add("score", "score must be between 0 and 100")
		}
		updated.Score = &score
	}
	if patch.Result != nil {
		updated.Result = canonical(*patch.Result, interviewResults...)
		if !oneOf(updated.Result, interviewResults...) {
			vErr.add("result", "result must be one of "+strings.Join(interviewResults, ", "))
		}
	}
	if patch.Status != nil {
		updated.Status = canonical(*patch.Status, interviewStatuses...)
		if !oneOf(updated.Status, interviewStatuses...) {
			vErr.add("status", "status must be one of "+strings.Join(interviewStatuses, ", "))
		}
	}
	if patch.JobID != nil {
		updated.JobID = strings.TrimSpace(*patch.JobID)
		if updated.JobID == "" {
			vErr.add("job", "job is required")
		}
	}
	if patch.CandidateID != nil {
		updated.CandidateID = strings.TrimSpace(*patch.CandidateID)
		if updated.CandidateID == "" {
			vErr.add("candidate", "candidate is required")
		}
	}
	if patch.StartTime != nil {
		updated.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		end := *patch.EndTime
		updated.EndTime = &end
	}
	if patch.InterviewDate != nil {
		updated.InterviewDate = *patch.InterviewDate
	}
	if patch.DurationMinutes != nil {
		updated.DurationMinutes = *patch.DurationMinutes
	}
	if patch.InterviewType != nil {
		updated.InterviewType = canonical(*patch.InterviewType, interviewTypes...)
	}
	if patch.Location != nil {
		updated.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Round != nil {
		updated.Round = strings.TrimSpace(*patch.Round)
	}
	if patch.Platform != nil {
		updated.Platform = strings.TrimSpace(*patch.Platform)
	}
	if patch.Interviewers != nil {
		updated.Interviewers = trimAll(patch.Interviewers)
	}
	if patch.CancelReason != nil {
		updated.CancelReason = strings.TrimSpace(*patch.CancelReason)
	}

	validateInterviewShape(vErr, &updated.StartTime, updated.EndTime, updated.InterviewType, updated.DurationMinutes)
	updated.MeetingID = existing.MeetingID
	return updated, vErr
}

// reconcileLifecycle enforces the one rule tying status to result: a
// cancelled interview keeps a Pending result. It also keeps the video
// provider state and cancellation fields in step with the status.
func reconcileLifecycle(interview *Interview, previousStatus, actorID string, vErr *ValidationError) {
	switch interview.Status {
	case InterviewCancelled:
		if interview.Result != ResultPending {
			vErr.add("result", "a cancelled interview must keep a Pending result")
			return
		}
		if previousStatus != InterviewCancelled {
			interview.CancelledBy = stringPtr(actorID)
		}
		interview.VideoProvider.WebhookStatus = ProviderCancelled
	case InterviewCompleted:
		interview.VideoProvider.WebhookStatus = ProviderCompleted
	case InterviewScheduled:
		if previousStatus == InterviewScheduled {
			return
		}
		interview.CancelledBy = nil
		interview.CancelReason = ""
		interview.VideoProvider.WebhookStatus = ProviderPending
	}
}

func stampAttachments(attachments []Attachment, uploadedBy string, at time.Time) []Attachment {
	if len(attachments) == 0 {
		return nil
	}
	out := make([]Attachment, len(attachments))
	for i, attachment := range attachments {
		attachment.URL = strings.TrimSpace(attachment.URL)
		attachment.Name = strings.TrimSpace(attachment.Name)
		if attachment.UploadedBy == "" {
			attachment.UploadedBy = uploadedBy
		}
		if attachment.UploadedAt.IsZero() {
			attachment.UploadedAt = at
		}
		out[i] = attachment
	}
	return out
}

// canonical returns the allowed value matching value case-insensitively, or
// the trimmed value when nothing matches.
func canonical(value string, allowed ...string) string {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range allowed {
		if strings.EqualFold(trimmed, candidate) {
			return candidate
		}
	}
	return trimmed
}
