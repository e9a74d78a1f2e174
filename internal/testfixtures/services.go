package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/placement-portal/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

func (f *ServiceFactory) ids() func() string {
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) now() func() time.Time {
	return f.Clock.NowFunc()
}

// NewAuthService builds an auth service. Nil hash and verify functions fall
// back to argon2id.
func (f *ServiceFactory) NewAuthService(credentials application.CredentialStore, users application.UserRepository, tokens application.TokenIssuer, hash application.PasswordHasher, verify application.PasswordVerifier) *application.AuthService {
	return application.NewAuthServiceWithLogger(credentials, users, tokens, hash, verify, f.ids(), f.now(), f.Logger)
}

// NewUserService builds a user service.
func (f *ServiceFactory) NewUserService(users application.UserRepository) *application.UserService {
	return application.NewUserServiceWithLogger(users, f.now(), f.Logger)
}

// NewCompanyService builds a company profile service.
func (f *ServiceFactory) NewCompanyService(companies application.CompanyRepository, users application.UserLookup) *application.CompanyService {
	return application.NewCompanyServiceWithLogger(companies, users, f.ids(), f.now(), f.Logger)
}

// NewStudentService builds a student profile service.
func (f *ServiceFactory) NewStudentService(students application.StudentRepository, users application.UserLookup) *application.StudentService {
	return application.NewStudentServiceWithLogger(students, users, f.ids(), f.now(), f.Logger)
}

// NewDriveService builds a placement drive service.
func (f *ServiceFactory) NewDriveService(drives application.DriveRepository) *application.DriveService {
	return application.NewDriveServiceWithLogger(drives, f.ids(), f.now(), f.Logger)
}

// NewJobService builds a job service.
func (f *ServiceFactory) NewJobService(jobs application.JobRepository, drives application.DriveLookup, companies application.CompanyLookup) *application.JobService {
	return application.NewJobServiceWithLogger(jobs, drives, companies, f.ids(), f.now(), f.Logger)
}

// InterviewServiceDeps captures dependencies for constructing an interview service.
type InterviewServiceDeps struct {
	Interviews application.InterviewRepository
	Jobs       application.JobLookup
	Users      application.UserLookup
	Companies  application.CompanyLookup
	Notifier   application.Notifier
	Composer   application.NotificationComposer
}

// NewInterviewService builds an interview service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewInterviewService(deps InterviewServiceDeps) *application.InterviewService {
	return application.NewInterviewServiceWithLogger(
		deps.Interviews,
		deps.Jobs,
		deps.Users,
		deps.Companies,
		deps.Notifier,
		deps.Composer,
		f.ids(),
		f.now(),
		f.Logger,
	)
}

// NewApplicationService builds a job application service.
func (f *ServiceFactory) NewApplicationService(applications application.ApplicationRepository, jobs application.JobLookup, users application.UserLookup, notifier application.Notifier, composer application.NotificationComposer) *application.ApplicationService {
	return application.NewApplicationServiceWithLogger(applications, jobs, users, notifier, composer, f.ids(), f.now(), f.Logger)
}

// NewReportService builds a placement report service.
func (f *ServiceFactory) NewReportService(reports application.ReportRepository, drives application.DriveStatistics) *application.ReportService {
	return application.NewReportServiceWithLogger(reports, drives, f.ids(), f.now(), f.Logger)
}
