package application

import (
	"context"
	"errors"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

// UserRepository captures the persistence operations needed for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// CredentialStore exposes user credential lookup operations required by the auth service.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
}

// UserLookup resolves a single user.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// CompanyRepository captures the persistence operations needed for company profiles.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company CompanyProfile) (CompanyProfile, error)
	GetCompany(ctx context.Context, id string) (CompanyProfile, error)
	GetCompanyByUser(ctx context.Context, userID string) (CompanyProfile, error)
	UpdateCompany(ctx context.Context, company CompanyProfile) (CompanyProfile, error)
	DeleteCompany(ctx context.Context, id string) error
	ListCompanies(ctx context.Context) ([]CompanyProfile, error)
	CompanyStats(ctx context.Context, companyID string, now time.Time) (CompanyDashboard, error)
}

// CompanyLookup resolves a single company profile.
type CompanyLookup interface {
	GetCompany(ctx context.Context, id string) (CompanyProfile, error)
}

// StudentRepository captures the persistence operations needed for student profiles.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student StudentProfile) (StudentProfile, error)
	GetStudent(ctx context.Context, id string) (StudentProfile, error)
	UpdateStudent(ctx context.Context, student StudentProfile) (StudentProfile, error)
	DeleteStudent(ctx context.Context, id string) error
	ListStudents(ctx context.Context) ([]StudentProfile, error)
}

// DriveRepository captures the persistence operations needed for placement drives.
type DriveRepository interface {
	CreateDrive(ctx context.Context, drive PlacementDrive) (PlacementDrive, error)
	GetDrive(ctx context.Context, id string) (PlacementDrive, error)
	UpdateDrive(ctx context.Context, drive PlacementDrive) (PlacementDrive, error)
	DeleteDrive(ctx context.Context, id string) error
	ListDrives(ctx context.Context) ([]PlacementDrive, error)
}

// DriveLookup resolves a single placement drive.
type DriveLookup interface {
	GetDrive(ctx context.Context, id string) (PlacementDrive, error)
}

// DriveStatistics resolves a drive together with the counts derived from
// its jobs.
type DriveStatistics interface {
	DriveLookup
	DriveStats(ctx context.Context, driveID string) (DriveStats, error)
}

// JobRepository captures the persistence operations needed for jobs.
type JobRepository interface {
	CreateJob(ctx context.Context, job Job) (Job, error)
	GetJob(ctx context.Context, id string) (Job, error)
	UpdateJob(ctx context.Context, job Job) (Job, error)
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, companyID string) ([]Job, error)
}

// JobLookup resolves a single job.
type JobLookup interface {
	GetJob(ctx context.Context, id string) (Job, error)
}

// ApplicationRepository captures the persistence operations needed for applications.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, application Application) (Application, error)
	GetApplication(ctx context.Context, id string) (Application, error)
	UpdateApplication(ctx context.Context, application Application) (Application, error)
	DeleteApplication(ctx context.Context, id string) error
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
}

// InterviewRepository captures the persistence operations needed for interviews.
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview Interview) (Interview, error)
	GetInterview(ctx context.Context, id string) (Interview, error)
	UpdateInterview(ctx context.Context, interview Interview) (Interview, error)
	DeleteInterview(ctx context.Context, id string) error
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]Interview, error)
}

// ReportRepository captures the persistence operations needed for reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report Report) (Report, error)
	GetReport(ctx context.Context, id string) (Report, error)
	UpdateReport(ctx context.Context, report Report) (Report, error)
	DeleteReport(ctx context.Context, id string) error
	ListReports(ctx context.Context) ([]Report, error)
}

// repoErrors translates persistence sentinels into service errors with
// caller facing messages.
type repoErrors struct {
	duplicate string
	blocked   string
	// referenceField receives a validation message when a write points at a
	// record that does not exist.
	referenceField   string
	referenceMessage string
}

func (m repoErrors) mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		if m.duplicate != "" {
			return alreadyExists(m.duplicate)
		}
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		if m.referenceField != "" {
			return singleFieldError(m.referenceField, m.referenceMessage)
		}
		if m.blocked != "" {
			return conflict(m.blocked)
		}
		return ErrConflict
	case errors.Is(err, persistence.ErrConstraintViolation):
		return singleFieldError("record", "record violates a storage constraint")
	}
	return err
}

var plainRepoErrors repoErrors
