package application

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

var testNow = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

type userRepoStub struct {
	users     map[string]User
	hashes    map[string]string
	createErr error
	updateErr error
}

func newUserRepoStub(users ...User) *userRepoStub {
	r := &userRepoStub{users: map[string]User{}, hashes: map[string]string{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *userRepoStub) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	if r.createErr != nil {
		return User{}, r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, persistence.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	r.hashes[user.ID] = passwordHash
	return user, nil
}

func (r *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	user, ok := r.users[id]
	if !ok {
		return User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (r *userRepoStub) UpdateUser(ctx context.Context, user User) (User, error) {
	if r.updateErr != nil {
		return User{}, r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return User{}, persistence.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *userRepoStub) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *userRepoStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	for id, u := range r.users {
		if u.Email == email {
			return UserCredentials{User: u, PasswordHash: r.hashes[id]}, nil
		}
	}
	return UserCredentials{}, persistence.ErrNotFound
}

type companyRepoStub struct {
	companies map[string]CompanyProfile
	stats     CompanyDashboard
	deleteErr error
}

func newCompanyRepoStub(companies ...CompanyProfile) *companyRepoStub {
	r := &companyRepoStub{companies: map[string]CompanyProfile{}}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *companyRepoStub) CreateCompany(ctx context.Context, company CompanyProfile) (CompanyProfile, error) {
	for _, existing := range r.companies {
		if existing.UserID == company.UserID {
			return CompanyProfile{}, persistence.ErrDuplicate
		}
	}
	r.companies[company.ID] = company
	return company, nil
}

func (r *companyRepoStub) GetCompany(ctx context.Context, id string) (CompanyProfile, error) {
	company, ok := r.companies[id]
	if !ok {
		return CompanyProfile{}, persistence.ErrNotFound
	}
	return company, nil
}

func (r *companyRepoStub) GetCompanyByUser(ctx context.Context, userID string) (CompanyProfile, error) {
	for _, company := range r.companies {
		if company.UserID == userID {
			return company, nil
		}
	}
	return CompanyProfile{}, persistence.ErrNotFound
}

func (r *companyRepoStub) UpdateCompany(ctx context.Context, company CompanyProfile) (CompanyProfile, error) {
	r.companies[company.ID] = company
	return company, nil
}

func (r *companyRepoStub) DeleteCompany(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.companies[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

func (r *companyRepoStub) ListCompanies(ctx context.Context) ([]CompanyProfile, error) {
	out := make([]CompanyProfile, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *companyRepoStub) CompanyStats(ctx context.Context, companyID string, now time.Time) (CompanyDashboard, error) {
	return r.stats, nil
}

type driveRepoStub struct {
	drives    map[string]PlacementDrive
	stats     DriveStats
	deleteErr error
}

func newDriveRepoStub(drives ...PlacementDrive) *driveRepoStub {
	r := &driveRepoStub{drives: map[string]PlacementDrive{}}
	for _, d := range drives {
		r.drives[d.ID] = d
	}
	return r
}

func (r *driveRepoStub) CreateDrive(ctx context.Context, drive PlacementDrive) (PlacementDrive, error) {
	r.drives[drive.ID] = drive
	return drive, nil
}

func (r *driveRepoStub) GetDrive(ctx context.Context, id string) (PlacementDrive, error) {
	drive, ok := r.drives[id]
	if !ok {
		return PlacementDrive{}, persistence.ErrNotFound
	}
	return drive, nil
}

func (r *driveRepoStub) UpdateDrive(ctx context.Context, drive PlacementDrive) (PlacementDrive, error) {
	r.drives[drive.ID] = drive
	return drive, nil
}

func (r *driveRepoStub) DeleteDrive(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.drives, id)
	return nil
}

func (r *driveRepoStub) ListDrives(ctx context.Context) ([]PlacementDrive, error) {
	out := make([]PlacementDrive, 0, len(r.drives))
	for _, d := range r.drives {
		out = append(out, d)
	}
	return out, nil
}

func (r *driveRepoStub) DriveStats(ctx context.Context, driveID string) (DriveStats, error) {
	return r.stats, nil
}

type jobRepoStub struct {
	jobs map[string]Job
}

func newJobRepoStub(jobs ...Job) *jobRepoStub {
	r := &jobRepoStub{jobs: map[string]Job{}}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *jobRepoStub) CreateJob(ctx context.Context, job Job) (Job, error) {
	r.jobs[job.ID] = job
	return job, nil
}

func (r *jobRepoStub) GetJob(ctx context.Context, id string) (Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, persistence.ErrNotFound
	}
	return job, nil
}

func (r *jobRepoStub) UpdateJob(ctx context.Context, job Job) (Job, error) {
	r.jobs[job.ID] = job
	return job, nil
}

func (r *jobRepoStub) DeleteJob(ctx context.Context, id string) error {
	delete(r.jobs, id)
	return nil
}

func (r *jobRepoStub) ListJobs(ctx context.Context, companyID string) ([]Job, error) {
	var out []Job
	for _, j := range r.jobs {
		if companyID == "" || j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	return out, nil
}

type applicationRepoStub struct {
	applications map[string]Application
	lastFilter   ApplicationFilter
}

func newApplicationRepoStub(applications ...Application) *applicationRepoStub {
	r := &applicationRepoStub{applications: map[string]Application{}}
	for _, a := range applications {
		r.applications[a.ID] = a
	}
	return r
}

func (r *applicationRepoStub) CreateApplication(ctx context.Context, application Application) (Application, error) {
	for _, existing := range r.applications {
		if existing.CandidateID == application.CandidateID && existing.JobID == application.JobID {
			return Application{}, persistence.ErrDuplicate
		}
	}
	r.applications[application.ID] = application
	return application, nil
}

func (r *applicationRepoStub) GetApplication(ctx context.Context, id string) (Application, error) {
	application, ok := r.applications[id]
	if !ok {
		return Application{}, persistence.ErrNotFound
	}
	return application, nil
}

func (r *applicationRepoStub) UpdateApplication(ctx context.Context, application Application) (Application, error) {
	r.applications[application.ID] = application
	return application, nil
}

func (r *applicationRepoStub) DeleteApplication(ctx context.Context, id string) error {
	if _, ok := r.applications[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.applications, id)
	return nil
}

func (r *applicationRepoStub) ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error) {
	r.lastFilter = filter
	var out []Application
	for _, a := range r.applications {
		if filter.CandidateID != "" && a.CandidateID != filter.CandidateID {
			continue
		}
		if filter.CompanyID != "" && a.CompanyID != filter.CompanyID {
			continue
		}
		if filter.JobID != "" && a.JobID != filter.JobID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type interviewRepoStub struct {
	interviews map[string]Interview
	lastFilter InterviewFilter
}

func newInterviewRepoStub(interviews ...Interview) *interviewRepoStub {
	r := &interviewRepoStub{interviews: map[string]Interview{}}
	for _, i := range interviews {
		r.interviews[i.ID] = i
	}
	return r
}

func (r *interviewRepoStub) CreateInterview(ctx context.Context, interview Interview) (Interview, error) {
	r.interviews[interview.ID] = interview
	return interview, nil
}

func (r *interviewRepoStub) GetInterview(ctx context.Context, id string) (Interview, error) {
	interview, ok := r.interviews[id]
	if !ok {
		return Interview{}, persistence.ErrNotFound
	}
	return interview, nil
}

func (r *interviewRepoStub) UpdateInterview(ctx context.Context, interview Interview) (Interview, error) {
	r.interviews[interview.ID] = interview
	return interview, nil
}

func (r *interviewRepoStub) DeleteInterview(ctx context.Context, id string) error {
	if _, ok := r.interviews[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.interviews, id)
	return nil
}

func (r *interviewRepoStub) ListInterviews(ctx context.Context, filter InterviewFilter) ([]Interview, error) {
	r.lastFilter = filter
	var out []Interview
	for _, i := range r.interviews {
		if filter.CandidateID != "" && i.CandidateID != filter.CandidateID {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

type reportRepoStub struct {
	reports map[string]Report
}

func newReportRepoStub(reports ...Report) *reportRepoStub {
	r := &reportRepoStub{reports: map[string]Report{}}
	for _, report := range reports {
		r.reports[report.ID] = report
	}
	return r
}

func (r *reportRepoStub) CreateReport(ctx context.Context, report Report) (Report, error) {
	for _, existing := range r.reports {
		if existing.PlacementDriveID == report.PlacementDriveID {
			return Report{}, persistence.ErrDuplicate
		}
	}
	r.reports[report.ID] = report
	return report, nil
}

func (r *reportRepoStub) GetReport(ctx context.Context, id string) (Report, error) {
	report, ok := r.reports[id]
	if !ok {
		return Report{}, persistence.ErrNotFound
	}
	return report, nil
}

func (r *reportRepoStub) UpdateReport(ctx context.Context, report Report) (Report, error) {
	r.reports[report.ID] = report
	return report, nil
}

func (r *reportRepoStub) DeleteReport(ctx context.Context, id string) error {
	delete(r.reports, id)
	return nil
}

func (r *reportRepoStub) ListReports(ctx context.Context) ([]Report, error) {
	out := make([]Report, 0, len(r.reports))
	for _, report := range r.reports {
		out = append(out, report)
	}
	return out, nil
}

type notifierStub struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *notifierStub) Notify(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *notifierStub) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

var (
	adminPrincipal   = Principal{UserID: "admin-1", Role: RoleAdmin}
	companyPrincipal = Principal{UserID: "recruiter-1", Role: RoleCompany, CompanyID: "company-1"}
	studentPrincipal = Principal{UserID: "student-1", Role: RoleStudent}
)

// seedDomain returns repositories holding one company, one drive, one job
// and two students.
func seedDomain() (*userRepoStub, *companyRepoStub, *driveRepoStub, *jobRepoStub) {
	companyID := "company-1"
	users := newUserRepoStub(
		User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: RoleAdmin, IsActive: true},
		User{ID: "recruiter-1", Name: "Ravi", Email: "ravi@acme.example.com", Role: RoleCompany, CompanyID: &companyID, IsActive: true},
		User{ID: "student-1", Name: "Asha", Email: "asha@example.com", Role: RoleStudent, IsActive: true},
		User{ID: "student-2", Name: "Vikram", Email: "vikram@example.com", Role: RoleStudent, IsActive: true},
	)
	companies := newCompanyRepoStub(CompanyProfile{ID: companyID, UserID: "recruiter-1", Name: "Acme Corp", Size: "11-50"})
	end := testNow.AddDate(0, 0, 7)
	drives := newDriveRepoStub(PlacementDrive{ID: "drive-1", Title: "Spring Drive", CompanyName: "Acme", StartDate: testNow, EndDate: &end})
	jobs := newJobRepoStub(Job{ID: "job-1", PlacementDriveID: "drive-1", CompanyID: companyID, Title: "Backend Engineer", Openings: 1, PostedDate: testNow})
	return users, companies, drives, jobs
}

func errForeignKey() error {
	return fmt.Errorf("delete: %w", persistence.ErrForeignKeyViolation)
}

type studentRepoStub struct {
	students map[string]StudentProfile
}

func newStudentRepoStub(students ...StudentProfile) *studentRepoStub {
	r := &studentRepoStub{students: map[string]StudentProfile{}}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *studentRepoStub) CreateStudent(ctx context.Context, student StudentProfile) (StudentProfile, error) {
	for _, existing := range r.students {
		if existing.UserID == student.UserID {
			return StudentProfile{}, persistence.ErrDuplicate
		}
	}
	r.students[student.ID] = student
	return student, nil
}

func (r *studentRepoStub) GetStudent(ctx context.Context, id string) (StudentProfile, error) {
	student, ok := r.students[id]
	if !ok {
		return StudentProfile{}, persistence.ErrNotFound
	}
	return student, nil
}

func (r *studentRepoStub) UpdateStudent(ctx context.Context, student StudentProfile) (StudentProfile, error) {
	r.students[student.ID] = student
	return student, nil
}

func (r *studentRepoStub) DeleteStudent(ctx context.Context, id string) error {
	if _, ok := r.students[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.students, id)
	return nil
}

func (r *studentRepoStub) ListStudents(ctx context.Context) ([]StudentProfile, error) {
	out := make([]StudentProfile, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}
