package persistence

import (
	"context"
	"time"
)

// UserRepository stores user accounts. Users are never hard-deleted.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// CompanyRepository stores company profiles. CreateCompany also links the
// owning user to the new profile.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company CompanyProfile) error
	UpdateCompany(ctx context.Context, company CompanyProfile) error
	GetCompany(ctx context.Context, id string) (CompanyProfile, error)
	GetCompanyByUser(ctx context.Context, userID string) (CompanyProfile, error)
	ListCompanies(ctx context.Context) ([]CompanyProfile, error)
	DeleteCompany(ctx context.Context, id string) error
	CompanyStats(ctx context.Context, companyID string, now time.Time) (CompanyStats, error)
}

// StudentRepository stores student profiles.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student StudentProfile) error
	UpdateStudent(ctx context.Context, student StudentProfile) error
	GetStudent(ctx context.Context, id string) (StudentProfile, error)
	GetStudentByUser(ctx context.Context, userID string) (StudentProfile, error)
	ListStudents(ctx context.Context) ([]StudentProfile, error)
	DeleteStudent(ctx context.Context, id string) error
}

// DriveRepository stores placement drives.
type DriveRepository interface {
	CreateDrive(ctx context.Context, drive PlacementDrive) error
	UpdateDrive(ctx context.Context, drive PlacementDrive) error
	GetDrive(ctx context.Context, id string) (PlacementDrive, error)
	ListDrives(ctx context.Context) ([]PlacementDrive, error)
	DeleteDrive(ctx context.Context, id string) error
	DriveStats(ctx context.Context, driveID string) (DriveStats, error)
}

// JobRepository stores job postings.
type JobRepository interface {
	CreateJob(ctx context.Context, job Job) error
	UpdateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	ListJobs(ctx context.Context, companyID string) ([]Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// ApplicationRepository stores job applications.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, application Application) error
	UpdateApplication(ctx context.Context, application Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
	DeleteApplication(ctx context.Context, id string) error
}

// InterviewRepository stores interviews.
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview Interview) error
	UpdateInterview(ctx context.Context, interview Interview) error
	GetInterview(ctx context.Context, id string) (Interview, error)
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]Interview, error)
	DeleteInterview(ctx context.Context, id string) error
}

// ReportRepository stores placement drive reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report Report) error
	UpdateReport(ctx context.Context, report Report) error
	GetReport(ctx context.Context, id string) (Report, error)
	ListReports(ctx context.Context) ([]Report, error)
	DeleteReport(ctx context.Context, id string) error
}
