package http

import (
	"context"
	"sync"

	"github.com/example/placement-portal/internal/application"
)

type authServiceStub struct {
	result    application.AuthResult
	err       error
	mu        sync.Mutex
	gotEmail  string
	gotInput  application.RegisterInput
	loginHits int
}

func (s *authServiceStub) Register(_ context.Context, input application.RegisterInput) (application.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotInput = input
	return s.result, s.err
}

func (s *authServiceStub) Login(_ context.Context, email, _ string) (application.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotEmail = email
	s.loginHits++
	return s.result, s.err
}

type userServiceStub struct {
	users []application.User
	err   error
}

func (s *userServiceStub) Profile(ctx context.Context, principal application.Principal) (application.User, error) {
	return s.GetUser(ctx, principal, principal.UserID)
}

func (s *userServiceStub) GetUser(_ context.Context, _ application.Principal, userID string) (application.User, error) {
	if s.err != nil {
		return application.User{}, s.err
	}
	for _, user := range s.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return application.User{}, application.ErrNotFound
}

func (s *userServiceStub) ListUsers(_ context.Context, _ application.Principal) ([]application.User, error) {
	return s.users, s.err
}

func (s *userServiceStub) UpdateRole(ctx context.Context, principal application.Principal, userID, role string) (application.User, error) {
	user, err := s.GetUser(ctx, principal, userID)
	if err != nil {
		return application.User{}, err
	}
	user.Role = role
	return user, nil
}

type companyServiceStub struct {
	company   application.CompanyProfile
	dashboard application.CompanyDashboard
	err       error
}

func (s *companyServiceStub) CreateCompany(_ context.Context, params application.CreateCompanyParams) (application.CompanyProfile, error) {
	if s.err != nil {
		return application.CompanyProfile{}, s.err
	}
	company := s.company
	company.Name = params.Input.Name
	return company, nil
}

func (s *companyServiceStub) GetCompany(context.Context, application.Principal, string) (application.CompanyProfile, error) {
	return s.company, s.err
}

func (s *companyServiceStub) ListCompanies(context.Context, application.Principal) ([]application.CompanyProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []application.CompanyProfile{s.company}, nil
}

func (s *companyServiceStub) UpdateCompany(context.Context, application.UpdateCompanyParams) (application.CompanyProfile, error) {
	return s.company, s.err
}

func (s *companyServiceStub) DeleteCompany(context.Context, application.Principal, string) error {
	return s.err
}

func (s *companyServiceStub) Dashboard(context.Context, application.Principal) (application.CompanyDashboard, error) {
	return s.dashboard, s.err
}

type applicationServiceStub struct {
	apps []application.Application
	err  error

	mu         sync.Mutex
	created    application.CreateApplicationParams
	updated    application.UpdateApplicationParams
	gotJobID   string
	gotStatus  string
	listedWith application.Principal
}

func (s *applicationServiceStub) CreateApplication(_ context.Context, params application.CreateApplicationParams) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = params
	if s.err != nil {
		return application.Application{}, s.err
	}
	return application.Application{
		ID:          "application-1",
		JobID:       params.Input.JobID,
		CandidateID: params.Principal.UserID,
		Resume:      params.Input.Resume,
		Status:      application.ApplicationSubmitted,
	}, nil
}

func (s *applicationServiceStub) UpdateApplication(_ context.Context, params application.UpdateApplicationParams) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = params
	if s.err != nil {
		return application.Application{}, s.err
	}
	app := application.Application{ID: params.ApplicationID, Status: application.ApplicationSubmitted}
	if params.Review.Status != nil {
		app.Status = *params.Review.Status
	}
	return app, nil
}

func (s *applicationServiceStub) GetApplication(_ context.Context, _ application.Principal, id string) (application.Application, error) {
	for _, app := range s.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return application.Application{}, application.ErrNotFound
}

func (s *applicationServiceStub) ListApplications(context.Context, application.Principal) ([]application.Application, error) {
	return s.apps, s.err
}

func (s *applicationServiceStub) ListMyApplications(_ context.Context, principal application.Principal) ([]application.Application, error) {
	s.mu.Lock()
	s.listedWith = principal
	s.mu.Unlock()

	var out []application.Application
	for _, app := range s.apps {
		if app.CandidateID == principal.UserID {
			out = append(out, app)
		}
	}
	return out, s.err
}

func (s *applicationServiceStub) ListCompanyApplications(_ context.Context, principal application.Principal, jobID, status string) ([]application.Application, error) {
	s.mu.Lock()
	s.listedWith = principal
	s.gotJobID = jobID
	s.gotStatus = status
	s.mu.Unlock()

	var out []application.Application
	for _, app := range s.apps {
		if app.CompanyID != principal.CompanyID {
			continue
		}
		if jobID != "" && app.JobID != jobID {
			continue
		}
		if status != "" && app.Status != status {
			continue
		}
		out = append(out, app)
	}
	return out, s.err
}

func (s *applicationServiceStub) DeleteApplication(context.Context, application.Principal, string) error {
	return s.err
}

type interviewServiceStub struct {
	interview application.Interview
	err       error

	mu      sync.Mutex
	created application.CreateInterviewParams
	patched application.UpdateInterviewParams
}

func (s *interviewServiceStub) CreateInterview(_ context.Context, params application.CreateInterviewParams) (application.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = params
	return s.interview, s.err
}

func (s *interviewServiceStub) UpdateInterview(_ context.Context, params application.UpdateInterviewParams) (application.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patched = params
	return s.interview, s.err
}

func (s *interviewServiceStub) GetInterview(context.Context, application.Principal, string) (application.Interview, error) {
	return s.interview, s.err
}

func (s *interviewServiceStub) ListInterviews(context.Context, application.Principal) ([]application.Interview, error) {
	return []application.Interview{s.interview}, s.err
}

func (s *interviewServiceStub) ListMyInterviews(context.Context, application.Principal) ([]application.Interview, error) {
	return []application.Interview{s.interview}, s.err
}

func (s *interviewServiceStub) ListCompanyInterviews(context.Context, application.Principal) ([]application.Interview, error) {
	return []application.Interview{s.interview}, s.err
}

func (s *interviewServiceStub) DeleteInterview(context.Context, application.Principal, string) error {
	return s.err
}

type reportServiceStub struct {
	exports     []application.ReportExport
	err         error
	mu          sync.Mutex
	gotReportID string
}

func (s *reportServiceStub) CreateReport(context.Context, application.CreateReportParams) (application.Report, error) {
	return application.Report{}, s.err
}

func (s *reportServiceStub) UpdateReport(context.Context, application.UpdateReportParams) (application.Report, error) {
	return application.Report{}, s.err
}

func (s *reportServiceStub) GetReport(context.Context, application.Principal, string) (application.Report, error) {
	return application.Report{}, s.err
}

func (s *reportServiceStub) ListReports(context.Context, application.Principal) ([]application.Report, error) {
	return nil, s.err
}

func (s *reportServiceStub) DeleteReport(context.Context, application.Principal, string) error {
	return s.err
}

func (s *reportServiceStub) ExportReports(_ context.Context, _ application.Principal, reportID string) ([]application.ReportExport, error) {
	s.mu.Lock()
	s.gotReportID = reportID
	s.mu.Unlock()
	return s.exports, s.err
}
