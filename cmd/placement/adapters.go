package main

import (
	"context"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/persistence"
)

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

// UpdateUser keeps the stored password hash; the application layer never
// carries it outside of registration.
func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationUser), nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

type companyRepositoryAdapter struct {
	repo persistence.CompanyRepository
}

func newCompanyRepositoryAdapter(repo persistence.CompanyRepository) *companyRepositoryAdapter {
	return &companyRepositoryAdapter{repo: repo}
}

func (a *companyRepositoryAdapter) CreateCompany(ctx context.Context, company application.CompanyProfile) (application.CompanyProfile, error) {
	if err := a.repo.CreateCompany(ctx, toPersistenceCompany(company)); err != nil {
		return application.CompanyProfile{}, err
	}
	return a.GetCompany(ctx, company.ID)
}

func (a *companyRepositoryAdapter) GetCompany(ctx context.Context, id string) (application.CompanyProfile, error) {
	stored, err := a.repo.GetCompany(ctx, id)
	if err != nil {
		return application.CompanyProfile{}, err
	}
	return toApplicationCompany(stored), nil
}

func (a *companyRepositoryAdapter) GetCompanyByUser(ctx context.Context, userID string) (application.CompanyProfile, error) {
	stored, err := a.repo.GetCompanyByUser(ctx, userID)
	if err != nil {
		return application.CompanyProfile{}, err
	}
	return toApplicationCompany(stored), nil
}

func (a *companyRepositoryAdapter) UpdateCompany(ctx context.Context, company application.CompanyProfile) (application.CompanyProfile, error) {
	if err := a.repo.UpdateCompany(ctx, toPersistenceCompany(company)); err != nil {
		return application.CompanyProfile{}, err
	}
	return a.GetCompany(ctx, company.ID)
}

func (a *companyRepositoryAdapter) DeleteCompany(ctx context.Context, id string) error {
	return a.repo.DeleteCompany(ctx, id)
}

func (a *companyRepositoryAdapter) ListCompanies(ctx context.Context) ([]application.CompanyProfile, error) {
	models, err := a.repo.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationCompany), nil
}

func (a *companyRepositoryAdapter) CompanyStats(ctx context.Context, companyID string, now time.Time) (application.CompanyDashboard, error) {
	stats, err := a.repo.CompanyStats(ctx, companyID, now)
	if err != nil {
		return application.CompanyDashboard{}, err
	}
	return application.CompanyDashboard{
		JobsPosted:           stats.JobsPosted,
		ApplicationsReceived: stats.ApplicationsReceived,
		UpcomingInterviews:   stats.UpcomingInterviews,
	}, nil
}

type studentRepositoryAdapter struct {
	repo persistence.StudentRepository
}

func newStudentRepositoryAdapter(repo persistence.StudentRepository) *studentRepositoryAdapter {
	return &studentRepositoryAdapter{repo: repo}
}

func (a *studentRepositoryAdapter) CreateStudent(ctx context.Context, student application.StudentProfile) (application.StudentProfile, error) {
	if err := a.repo.CreateStudent(ctx, toPersistenceStudent(student)); err != nil {
		return application.StudentProfile{}, err
	}
	return a.GetStudent(ctx, student.ID)
}

func (a *studentRepositoryAdapter) GetStudent(ctx context.Context, id string) (application.StudentProfile, error) {
	stored, err := a.repo.GetStudent(ctx, id)
	if err != nil {
		return application.StudentProfile{}, err
	}
	return toApplicationStudent(stored), nil
}

func (a *studentRepositoryAdapter) UpdateStudent(ctx context.Context, student application.StudentProfile) (application.StudentProfile, error) {
	if err := a.repo.UpdateStudent(ctx, toPersistenceStudent(student)); err != nil {
		return application.StudentProfile{}, err
	}
	return a.GetStudent(ctx, student.ID)
}

func (a *studentRepositoryAdapter) DeleteStudent(ctx context.Context, id string) error {
	return a.repo.DeleteStudent(ctx, id)
}

func (a *studentRepositoryAdapter) ListStudents(ctx context.Context) ([]application.StudentProfile, error) {
	models, err := a.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationStudent), nil
}

type driveRepositoryAdapter struct {
	repo persistence.DriveRepository
}

func newDriveRepositoryAdapter(repo persistence.DriveRepository) *driveRepositoryAdapter {
	return &driveRepositoryAdapter{repo: repo}
}

func (a *driveRepositoryAdapter) CreateDrive(ctx context.Context, drive application.PlacementDrive) (application.PlacementDrive, error) {
	if err := a.repo.CreateDrive(ctx, persistence.PlacementDrive(drive)); err != nil {
		return application.PlacementDrive{}, err
	}
	return a.GetDrive(ctx, drive.ID)
}

func (a *driveRepositoryAdapter) GetDrive(ctx context.Context, id string) (application.PlacementDrive, error) {
	stored, err := a.repo.GetDrive(ctx, id)
	if err != nil {
		return application.PlacementDrive{}, err
	}
	return application.PlacementDrive(stored), nil
}

func (a *driveRepositoryAdapter) UpdateDrive(ctx context.Context, drive application.PlacementDrive) (application.PlacementDrive, error) {
	if err := a.repo.UpdateDrive(ctx, persistence.PlacementDrive(drive)); err != nil {
		return application.PlacementDrive{}, err
	}
	return a.GetDrive(ctx, drive.ID)
}

func (a *driveRepositoryAdapter) DeleteDrive(ctx context.Context, id string) error {
	return a.repo.DeleteDrive(ctx, id)
}

func (a *driveRepositoryAdapter) ListDrives(ctx context.Context) ([]application.PlacementDrive, error) {
	models, err := a.repo.ListDrives(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(m persistence.PlacementDrive) application.PlacementDrive {
		return application.PlacementDrive(m)
	}), nil
}

func (a *driveRepositoryAdapter) DriveStats(ctx context.Context, driveID string) (application.DriveStats, error) {
	stats, err := a.repo.DriveStats(ctx, driveID)
	if err != nil {
		return application.DriveStats{}, err
	}
	return application.DriveStats(stats), nil
}

type jobRepositoryAdapter struct {
	repo persistence.JobRepository
}

func newJobRepositoryAdapter(repo persistence.JobRepository) *jobRepositoryAdapter {
	return &jobRepositoryAdapter{repo: repo}
}

func (a *jobRepositoryAdapter) CreateJob(ctx context.Context, job application.Job) (application.Job, error) {
	if err := a.repo.CreateJob(ctx, toPersistenceJob(job)); err != nil {
		return application.Job{}, err
	}
	return a.GetJob(ctx, job.ID)
}

func (a *jobRepositoryAdapter) GetJob(ctx context.Context, id string) (application.Job, error) {
	stored, err := a.repo.GetJob(ctx, id)
	if err != nil {
		return application.Job{}, err
	}
	return toApplicationJob(stored), nil
}

func (a *jobRepositoryAdapter) UpdateJob(ctx context.Context, job application.Job) (application.Job, error) {
	if err := a.repo.UpdateJob(ctx, toPersistenceJob(job)); err != nil {
		return application.Job{}, err
	}
	return a.GetJob(ctx, job.ID)
}

func (a *jobRepositoryAdapter) DeleteJob(ctx context.Context, id string) error {
	return a.repo.DeleteJob(ctx, id)
}

func (a *jobRepositoryAdapter) ListJobs(ctx context.Context, companyID string) ([]application.Job, error) {
	models, err := a.repo.ListJobs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationJob), nil
}

type applicationRepositoryAdapter struct {
	repo persistence.ApplicationRepository
}

func newApplicationRepositoryAdapter(repo persistence.ApplicationRepository) *applicationRepositoryAdapter {
	return &applicationRepositoryAdapter{repo: repo}
}

func (a *applicationRepositoryAdapter) CreateApplication(ctx context.Context, record application.Application) (application.Application, error) {
	if err := a.repo.CreateApplication(ctx, persistence.Application(record)); err != nil {
		return application.Application{}, err
	}
	return a.GetApplication(ctx, record.ID)
}

func (a *applicationRepositoryAdapter) GetApplication(ctx context.Context, id string) (application.Application, error) {
	stored, err := a.repo.GetApplication(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	return application.Application(stored), nil
}

func (a *applicationRepositoryAdapter) UpdateApplication(ctx context.Context, record application.Application) (application.Application, error) {
	if err := a.repo.UpdateApplication(ctx, persistence.Application(record)); err != nil {
		return application.Application{}, err
	}
	return a.GetApplication(ctx, record.ID)
}

func (a *applicationRepositoryAdapter) DeleteApplication(ctx context.Context, id string) error {
	return a.repo.DeleteApplication(ctx, id)
}

func (a *applicationRepositoryAdapter) ListApplications(ctx context.Context, filter application.ApplicationFilter) ([]application.Application, error) {
	models, err := a.repo.ListApplications(ctx, persistence.ApplicationFilter(filter))
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(m persistence.Application) application.Application {
		return application.Application(m)
	}), nil
}

type interviewRepositoryAdapter struct {
	repo persistence.InterviewRepository
}

func newInterviewRepositoryAdapter(repo persistence.InterviewRepository) *interviewRepositoryAdapter {
	return &interviewRepositoryAdapter{repo: repo}
}

func (a *interviewRepositoryAdapter) CreateInterview(ctx context.Context, interview application.Interview) (application.Interview, error) {
	if err := a.repo.CreateInterview(ctx, toPersistenceInterview(interview)); err != nil {
		return application.Interview{}, err
	}
	return a.GetInterview(ctx, interview.ID)
}

func (a *interviewRepositoryAdapter) GetInterview(ctx context.Context, id string) (application.Interview, error) {
	stored, err := a.repo.GetInterview(ctx, id)
	if err != nil {
		return application.Interview{}, err
	}
	return toApplicationInterview(stored), nil
}

func (a *interviewRepositoryAdapter) UpdateInterview(ctx context.Context, interview application.Interview) (application.Interview, error) {
	if err := a.repo.UpdateInterview(ctx, toPersistenceInterview(interview)); err != nil {
		return application.Interview{}, err
	}
	return a.GetInterview(ctx, interview.ID)
}

func (a *interviewRepositoryAdapter) DeleteInterview(ctx context.Context, id string) error {
	return a.repo.DeleteInterview(ctx, id)
}

func (a *interviewRepositoryAdapter) ListInterviews(ctx context.Context, filter application.InterviewFilter) ([]application.Interview, error) {
	models, err := a.repo.ListInterviews(ctx, persistence.InterviewFilter{
		CandidateID: filter.CandidateID,
		CompanyID:   filter.CompanyID,
		JobID:       filter.JobID,
		From:        cloneTime(filter.From),
	})
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationInterview), nil
}

type reportRepositoryAdapter struct {
	repo persistence.ReportRepository
}

func newReportRepositoryAdapter(repo persistence.ReportRepository) *reportRepositoryAdapter {
	return &reportRepositoryAdapter{repo: repo}
}

func (a *reportRepositoryAdapter) CreateReport(ctx context.Context, report application.Report) (application.Report, error) {
	if err := a.repo.CreateReport(ctx, persistence.Report(report)); err != nil {
		return application.Report{}, err
	}
	return a.GetReport(ctx, report.ID)
}

func (a *reportRepositoryAdapter) GetReport(ctx context.Context, id string) (application.Report, error) {
	stored, err := a.repo.GetReport(ctx, id)
	if err != nil {
		return application.Report{}, err
	}
	return application.Report(stored), nil
}

func (a *reportRepositoryAdapter) UpdateReport(ctx context.Context, report application.Report) (application.Report, error) {
	if err := a.repo.UpdateReport(ctx, persistence.Report(report)); err != nil {
		return application.Report{}, err
	}
	return a.GetReport(ctx, report.ID)
}

func (a *reportRepositoryAdapter) DeleteReport(ctx context.Context, id string) error {
	return a.repo.DeleteReport(ctx, id)
}

func (a *reportRepositoryAdapter) ListReports(ctx context.Context) ([]application.Report, error) {
	models, err := a.repo.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(m persistence.Report) application.Report {
		return application.Report(m)
	}), nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      model.Role,
		CompanyID: cloneString(model.CompanyID),
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: passwordHash,
		Role:         user.Role,
		CompanyID:    cloneString(user.CompanyID),
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationCompany(model persistence.CompanyProfile) application.CompanyProfile {
	return application.CompanyProfile{
		ID:            model.ID,
		UserID:        model.UserID,
		Name:          model.Name,
		Industry:      model.Industry,
		Size:          model.Size,
		Description:   model.Description,
		Logo:          model.Logo,
		Website:       model.Website,
		Location:      application.Address(model.Location),
		ContactPerson: application.Contact(model.ContactPerson),
		SocialLinks:   application.SocialLinks(model.SocialLinks),
		Verified:      model.Verified,
		CreatedBy:     cloneString(model.CreatedBy),
		UpdatedBy:     cloneString(model.UpdatedBy),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceCompany(company application.CompanyProfile) persistence.CompanyProfile {
	return persistence.CompanyProfile{
		ID:            company.ID,
		UserID:        company.UserID,
		Name:          company.Name,
		Industry:      company.Industry,
		Size:          company.Size,
		Description:   company.Description,
		Logo:          company.Logo,
		Website:       company.Website,
		Location:      persistence.Address(company.Location),
		ContactPerson: persistence.Contact(company.ContactPerson),
		SocialLinks:   persistence.SocialLinks(company.SocialLinks),
		Verified:      company.Verified,
		CreatedBy:     cloneString(company.CreatedBy),
		UpdatedBy:     cloneString(company.UpdatedBy),
		CreatedAt:     company.CreatedAt,
		UpdatedAt:     company.UpdatedAt,
	}
}

func toApplicationStudent(model persistence.StudentProfile) application.StudentProfile {
	return application.StudentProfile{
		ID:     model.ID,
		UserID: model.UserID,
		Bio:    model.Bio,
		Education: convertAll(model.Education, func(e persistence.Education) application.Education {
			return application.Education(e)
		}),
		Experience: convertAll(model.Experience, func(e persistence.Experience) application.Experience {
			return application.Experience{
				Company:     e.Company,
				Role:        e.Role,
				StartDate:   cloneTime(e.StartDate),
				EndDate:     cloneTime(e.EndDate),
				Description: e.Description,
			}
		}),
		Skills:         cloneStrings(model.Skills),
		PortfolioLinks: cloneStrings(model.PortfolioLinks),
		ResumeURL:      model.ResumeURL,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceStudent(student application.StudentProfile) persistence.StudentProfile {
	return persistence.StudentProfile{
		ID:     student.ID,
		UserID: student.UserID,
		Bio:    student.Bio,
		Education: convertAll(student.Education, func(e application.Education) persistence.Education {
			return persistence.Education(e)
		}),
		Experience: convertAll(student.Experience, func(e application.Experience) persistence.Experience {
			return persistence.Experience{
				Company:     e.Company,
				Role:        e.Role,
				StartDate:   cloneTime(e.StartDate),
				EndDate:     cloneTime(e.EndDate),
				Description: e.Description,
			}
		}),
		Skills:         cloneStrings(student.Skills),
		PortfolioLinks: cloneStrings(student.PortfolioLinks),
		ResumeURL:      student.ResumeURL,
		CreatedAt:      student.CreatedAt,
		UpdatedAt:      student.UpdatedAt,
	}
}

func toApplicationJob(model persistence.Job) application.Job {
	job := application.Job(model)
	job.SkillsRequired = cloneStrings(model.SkillsRequired)
	return job
}

func toPersistenceJob(job application.Job) persistence.Job {
	model := persistence.Job(job)
	model.SkillsRequired = cloneStrings(job.SkillsRequired)
	return model
}

func toApplicationInterview(model persistence.Interview) application.Interview {
	return application.Interview{
		ID:              model.ID,
		JobID:           model.JobID,
		CandidateID:     model.CandidateID,
		StartTime:       model.StartTime,
		EndTime:         cloneTime(model.EndTime),
		InterviewDate:   model.InterviewDate,
		DurationMinutes: model.DurationMinutes,
		Timezone:        model.Timezone,
		Round:           model.Round,
		InterviewType:   model.InterviewType,
		Platform:        model.Platform,
		Location:        model.Location,
		MeetingID:       model.MeetingID,
		MeetingPassword: model.MeetingPassword,
		Interviewers:    cloneStrings(model.Interviewers),
		Status:          model.Status,
		Feedback:        model.Feedback,
		Score:           cloneInt(model.Score),
		Result:          model.Result,
		Attachments: convertAll(model.Attachments, func(a persistence.Attachment) application.Attachment {
			return application.Attachment(a)
		}),
		Reminders: convertAll(model.Reminders, func(r persistence.Reminder) application.Reminder {
			return application.Reminder{MinutesBefore: r.MinutesBefore, SentAt: cloneTime(r.SentAt)}
		}),
		VideoProvider: application.VideoProvider(model.VideoProvider),
		CreatedBy:     cloneString(model.CreatedBy),
		CancelledBy:   cloneString(model.CancelledBy),
		CancelReason:  model.CancelReason,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceInterview(interview application.Interview) persistence.Interview {
	return persistence.Interview{
		ID:              interview.ID,
		JobID:           interview.JobID,
		CandidateID:     interview.CandidateID,
		StartTime:       interview.StartTime,
		EndTime:         cloneTime(interview.EndTime),
		InterviewDate:   interview.InterviewDate,
		DurationMinutes: interview.DurationMinutes,
		Timezone:        interview.Timezone,
		Round:           interview.Round,
		InterviewType:   interview.InterviewType,
		Platform:        interview.Platform,
		Location:        interview.Location,
		MeetingID:       interview.MeetingID,
		MeetingPassword: interview.MeetingPassword,
		Interviewers:    cloneStrings(interview.Interviewers),
		Status:          interview.Status,
		Feedback:        interview.Feedback,
		Score:           cloneInt(interview.Score),
		Result:          interview.Result,
		Attachments: convertAll(interview.Attachments, func(a application.Attachment) persistence.Attachment {
			return persistence.Attachment(a)
		}),
		Reminders: convertAll(interview.Reminders, func(r application.Reminder) persistence.Reminder {
			return persistence.Reminder{MinutesBefore: r.MinutesBefore, SentAt: cloneTime(r.SentAt)}
		}),
		VideoProvider: persistence.VideoProvider(interview.VideoProvider),
		CreatedBy:     cloneString(interview.CreatedBy),
		CancelledBy:   cloneString(interview.CancelledBy),
		CancelReason:  interview.CancelReason,
		CreatedAt:     interview.CreatedAt,
		UpdatedAt:     interview.UpdatedAt,
	}
}

func convertAll[From, To any](models []From, convert func(From) To) []To {
	if len(models) == 0 {
		return nil
	}
	out := make([]To, 0, len(models))
	for _, model := range models {
		out = append(out, convert(model))
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
