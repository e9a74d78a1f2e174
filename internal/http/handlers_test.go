package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/report"
)

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	user := application.User{ID: "student-1", Name: "Asha", Email: "asha@example.com", Role: application.RoleStudent, IsActive: true}

	t.Run("login issues the token in the body and an httpOnly cookie", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{result: application.AuthResult{User: user, Token: "signed-token", ExpiresAt: expires}}
		router, _ := newTestRouter(t, RouterConfig{Auth: NewAuthHandler(auth, &userServiceStub{}, true, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", `{"email":" Asha@Example.com ","password":"secret1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if auth.gotEmail != "asha@example.com" {
			t.Fatalf("expected normalized email, got %q", auth.gotEmail)
		}

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "token" {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatalf("expected token cookie")
		}
		if cookie.Value != "signed-token" || !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
			t.Fatalf("unexpected cookie %+v", cookie)
		}

		body := decodeEnvelope(t, rec)
		var data authDTO
		decodeData(t, body, &data)
		if !body.Success || data.Token != "signed-token" || data.User.ID != "student-1" {
			t.Fatalf("unexpected login response %+v / %+v", body, data)
		}
		if data.ExpiresAt != "2025-03-02T09:00:00Z" {
			t.Fatalf("unexpected expiry %q", data.ExpiresAt)
		}
	})

	t.Run("invalid credentials answer 401", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{err: fmt.Errorf("login: %w", application.ErrInvalidCredentials)}
		router, _ := newTestRouter(t, RouterConfig{Auth: NewAuthHandler(auth, &userServiceStub{}, true, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@example.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if body := decodeEnvelope(t, rec); body.Message != "invalid credentials" {
			t.Fatalf("unexpected message %q", body.Message)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("expected no cookie on failed login")
		}
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		t.Parallel()

		router, _ := newTestRouter(t, RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, &userServiceStub{}, true, discardLogger())})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", `{"email":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		t.Parallel()

		router, _ := newTestRouter(t, RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, &userServiceStub{}, false, discardLogger())})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/logout", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != "token" || cookies[0].MaxAge >= 0 {
			t.Fatalf("expected expired token cookie, got %+v", cookies)
		}
	})

	t.Run("login is rate limited", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{result: application.AuthResult{User: user, Token: "signed-token", ExpiresAt: expires}}
		router, _ := newTestRouter(t, RouterConfig{
			Auth:         NewAuthHandler(auth, &userServiceStub{}, true, discardLogger()),
			LoginLimiter: NewMemoryRateLimiter(2, time.Minute, nil),
		})

		for i := 0; i < 2; i++ {
			if rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@example.com","password":"secret1"}`); rec.Code != http.StatusOK {
				t.Fatalf("attempt %d: expected 200, got %d", i+1, rec.Code)
			}
		}
		rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@example.com","password":"secret1"}`)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if auth.loginHits != 2 {
			t.Fatalf("expected the limited request not to reach the service, got %d calls", auth.loginHits)
		}
	})

	t.Run("user listing is admin only", func(t *testing.T) {
		t.Parallel()

		users := &userServiceStub{users: []application.User{user}}
		router, tokens := newTestRouter(t, RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, users, true, discardLogger())})

		if rec := doRequest(t, router, http.MethodGet, "/api/v1/auth/users", issueToken(t, tokens, studentPrincipal), ""); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for student, got %d", rec.Code)
		}

		rec := doRequest(t, router, http.MethodGet, "/api/v1/auth/users", issueToken(t, tokens, adminPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for admin, got %d", rec.Code)
		}
		if body := decodeEnvelope(t, rec); body.Count == nil || *body.Count != 1 {
			t.Fatalf("expected count 1, got %+v", body.Count)
		}
	})

	t.Run("profile requires authentication", func(t *testing.T) {
		t.Parallel()

		users := &userServiceStub{users: []application.User{user}}
		router, tokens := newTestRouter(t, RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, users, true, discardLogger())})

		if rec := doRequest(t, router, http.MethodGet, "/api/v1/auth/profile", "", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		rec := doRequest(t, router, http.MethodGet, "/api/v1/auth/profile", issueToken(t, tokens, studentPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		var data userDTO
		decodeData(t, decodeEnvelope(t, rec), &data)
		if data.Email != "asha@example.com" {
			t.Fatalf("unexpected profile %+v", data)
		}
	})
}

func TestApplicationHandlers(t *testing.T) {
	t.Parallel()

	apps := []application.Application{
		{ID: "app-1", JobID: "job-1", CandidateID: "student-1", CompanyID: "company-1", Status: application.ApplicationSubmitted},
		{ID: "app-2", JobID: "job-2", CandidateID: "student-2", CompanyID: "company-1", Status: application.ApplicationShortlisted},
		{ID: "app-3", JobID: "job-3", CandidateID: "student-1", CompanyID: "company-2", Status: application.ApplicationSubmitted},
		{ID: "app-4", JobID: "job-1", CandidateID: "student-3", CompanyID: "company-1", Status: application.ApplicationShortlisted},
	}

	t.Run("my applications returns only the caller's applications", func(t *testing.T) {
		t.Parallel()

		service := &applicationServiceStub{apps: apps}
		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/application/my", issueToken(t, tokens, studentPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		body := decodeEnvelope(t, rec)
		var data []applicationDTO
		decodeData(t, body, &data)
		if len(data) != 2 || *body.Count != 2 {
			t.Fatalf("expected 2 applications, got %d", len(data))
		}
		for _, app := range data {
			if app.Candidate != "student-1" {
				t.Fatalf("unexpected candidate %q in my applications", app.Candidate)
			}
		}
	})

	t.Run("my applications is student only", func(t *testing.T) {
		t.Parallel()

		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(&applicationServiceStub{apps: apps}, discardLogger())})
		rec := doRequest(t, router, http.MethodGet, "/api/v1/application/my", issueToken(t, tokens, companyPrincipal), "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("company applications forwards job and status filters", func(t *testing.T) {
		t.Parallel()

		service := &applicationServiceStub{apps: apps}
		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/application/company?jobId=job-1&status=Shortlisted", issueToken(t, tokens, companyPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if service.gotJobID != "job-1" || service.gotStatus != "Shortlisted" {
			t.Fatalf("unexpected filters job=%q status=%q", service.gotJobID, service.gotStatus)
		}
		if service.listedWith.CompanyID != "company-1" {
			t.Fatalf("expected the stored company id to reach the service, got %+v", service.listedWith)
		}
		var data []applicationDTO
		decodeData(t, decodeEnvelope(t, rec), &data)
		if len(data) != 1 || data[0].ID != "app-4" {
			t.Fatalf("expected only app-4, got %+v", data)
		}
	})

	t.Run("submission uses the caller and is rate limited", func(t *testing.T) {
		t.Parallel()

		service := &applicationServiceStub{}
		router, tokens := newTestRouter(t, RouterConfig{
			Applications: NewApplicationHandler(service, discardLogger()),
			ApplyLimiter: NewMemoryRateLimiter(1, time.Minute, nil),
		})
		token := issueToken(t, tokens, studentPrincipal)
		payload := `{"job":"job-1","resume":"https://cdn.example.com/cv.pdf","coverLetter":"hello"}`

		rec := doRequest(t, router, http.MethodPost, "/api/v1/application", token, payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if service.created.Principal != studentPrincipal || service.created.Input.JobID != "job-1" {
			t.Fatalf("unexpected create params %+v", service.created)
		}

		if rec := doRequest(t, router, http.MethodPost, "/api/v1/application", token, payload); rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 on second submission, got %d", rec.Code)
		}
	})

	t.Run("duplicate application answers 409", func(t *testing.T) {
		t.Parallel()

		service := &applicationServiceStub{err: fmt.Errorf("create: %w", application.ErrAlreadyExists)}
		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/api/v1/application", issueToken(t, tokens, studentPrincipal), `{"job":"job-1","resume":"https://cdn.example.com/cv.pdf"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("review passes only the supplied fields", func(t *testing.T) {
		t.Parallel()

		service := &applicationServiceStub{}
		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodPut, "/api/v1/application/app-1", issueToken(t, tokens, companyPrincipal), `{"status":"Under Review"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		review := service.updated.Review
		if service.updated.ApplicationID != "app-1" || review.Status == nil || *review.Status != "Under Review" || review.Notes != nil {
			t.Fatalf("unexpected review params %+v", service.updated)
		}
	})

	t.Run("students cannot review", func(t *testing.T) {
		t.Parallel()

		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(&applicationServiceStub{}, discardLogger())})
		rec := doRequest(t, router, http.MethodPut, "/api/v1/application/app-1", issueToken(t, tokens, studentPrincipal), `{"status":"Hired"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("missing application answers 404", func(t *testing.T) {
		t.Parallel()

		router, tokens := newTestRouter(t, RouterConfig{Applications: NewApplicationHandler(&applicationServiceStub{apps: apps}, discardLogger())})
		rec := doRequest(t, router, http.MethodGet, "/api/v1/application/missing", issueToken(t, tokens, adminPrincipal), "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if body := decodeEnvelope(t, rec); body.Message != "Application not found" {
			t.Fatalf("unexpected message %q", body.Message)
		}
	})
}

func TestInterviewHandlers(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	interview := application.Interview{
		ID:          "interview-1",
		JobID:       "job-1",
		CandidateID: "student-1",
		StartTime:   start,
		MeetingID:   "interview-1740996000000-student-1",
		Status:      application.InterviewScheduled,
		Result:      application.ResultPending,
	}

	t.Run("students cannot schedule interviews", func(t *testing.T) {
		t.Parallel()

		service := &interviewServiceStub{interview: interview}
		router, tokens := newTestRouter(t, RouterConfig{Interviews: NewInterviewHandler(service, discardLogger())})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/interview", issueToken(t, tokens, studentPrincipal), `{"job":"job-1"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("create parses times and returns the meeting id", func(t *testing.T) {
		t.Parallel()

		service := &interviewServiceStub{interview: interview}
		router, tokens := newTestRouter(t, RouterConfig{Interviews: NewInterviewHandler(service, discardLogger())})
		payload := `{"job":"job-1","candidate":"student-1","startTime":"2025-03-03T10:00:00Z","endTime":"2025-03-03T10:30:00Z","interviewDate":"2025-03-03","interviewers":[" Priya ",""]}`

		rec := doRequest(t, router, http.MethodPost, "/api/v1/interview", issueToken(t, tokens, companyPrincipal), payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}

		input := service.created.Input
		if input.StartTime == nil || !input.StartTime.Equal(start) {
			t.Fatalf("unexpected start time %v", input.StartTime)
		}
		if input.EndTime == nil || !input.EndTime.Equal(start.Add(30*time.Minute)) {
			t.Fatalf("unexpected end time %v", input.EndTime)
		}
		if input.InterviewDate == nil || !input.InterviewDate.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected interview date %v", input.InterviewDate)
		}
		if len(input.Interviewers) != 1 || input.Interviewers[0] != "Priya" {
			t.Fatalf("unexpected interviewers %v", input.Interviewers)
		}

		var data interviewDTO
		decodeData(t, decodeEnvelope(t, rec), &data)
		if data.MeetingID != interview.MeetingID || data.Result != application.ResultPending {
			t.Fatalf("unexpected interview %+v", data)
		}
	})

	t.Run("update forwards a partial patch", func(t *testing.T) {
		t.Parallel()

		service := &interviewServiceStub{interview: interview}
		router, tokens := newTestRouter(t, RouterConfig{Interviews: NewInterviewHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodPut, "/api/v1/interview/interview-1", issueToken(t, tokens, companyPrincipal), `{"score":85,"result":" Selected "}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		patch := service.patched.Patch
		if service.patched.InterviewID != "interview-1" || patch.Score == nil || *patch.Score != 85 {
			t.Fatalf("unexpected patch %+v", service.patched)
		}
		if patch.Result == nil || *patch.Result != "Selected" {
			t.Fatalf("expected trimmed result, got %v", patch.Result)
		}
		if patch.Status != nil || patch.StartTime != nil || patch.Interviewers != nil {
			t.Fatalf("expected untouched fields to stay nil, got %+v", patch)
		}
	})

	t.Run("invalid dates are rejected before the service", func(t *testing.T) {
		t.Parallel()

		service := &interviewServiceStub{interview: interview}
		router, tokens := newTestRouter(t, RouterConfig{Interviews: NewInterviewHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodPut, "/api/v1/interview/interview-1", issueToken(t, tokens, adminPrincipal), `{"startTime":"next tuesday"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if service.patched.InterviewID != "" {
			t.Fatalf("expected service not to be called")
		}
	})

	t.Run("validation errors list field messages", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"endTime": "end time must be after start time"}}
		service := &interviewServiceStub{err: vErr}
		router, tokens := newTestRouter(t, RouterConfig{Interviews: NewInterviewHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/api/v1/interview", issueToken(t, tokens, companyPrincipal), `{"job":"job-1","candidate":"student-1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeEnvelope(t, rec)
		if body.Errors["endTime"] != "end time must be after start time" {
			t.Fatalf("unexpected field errors %v", body.Errors)
		}
		if len(body.Messages) != 1 || body.Messages[0] != "end time must be after start time" {
			t.Fatalf("unexpected messages %v", body.Messages)
		}
	})

	t.Run("unexpected errors do not leak details", func(t *testing.T) {
		t.Parallel()

		service := &interviewServiceStub{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
		router, tokens := newTestRouter(t, RouterConfig{Interviews: NewInterviewHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/interview/my", issueToken(t, tokens, studentPrincipal), "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "10.0.0.5") {
			t.Fatalf("response leaked internal detail: %s", rec.Body.String())
		}
	})
}

func TestCompanyHandlers(t *testing.T) {
	t.Parallel()

	company := application.CompanyProfile{ID: "company-1", UserID: "company-user-1", Name: "Acme Corp", Size: "1-10"}

	t.Run("dashboard is company only", func(t *testing.T) {
		t.Parallel()

		service := &companyServiceStub{company: company, dashboard: application.CompanyDashboard{Company: company, JobsPosted: 3, ApplicationsReceived: 7, UpcomingInterviews: 2}}
		router, tokens := newTestRouter(t, RouterConfig{Companies: NewCompanyHandler(service, discardLogger())})

		if rec := doRequest(t, router, http.MethodGet, "/api/v1/company/dashboard", issueToken(t, tokens, adminPrincipal), ""); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for admin, got %d", rec.Code)
		}

		rec := doRequest(t, router, http.MethodGet, "/api/v1/company/dashboard", issueToken(t, tokens, companyPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		var data dashboardDTO
		decodeData(t, decodeEnvelope(t, rec), &data)
		if data.Stats.JobsPosted != 3 || data.Stats.ApplicationsReceived != 7 || data.Stats.UpcomingInterviews != 2 {
			t.Fatalf("unexpected stats %+v", data.Stats)
		}
	})

	t.Run("conflicts answer 409", func(t *testing.T) {
		t.Parallel()

		service := &companyServiceStub{err: fmt.Errorf("create: %w", application.ErrAlreadyExists)}
		router, tokens := newTestRouter(t, RouterConfig{Companies: NewCompanyHandler(service, discardLogger())})

		rec := doRequest(t, router, http.MethodPost, "/api/v1/company", issueToken(t, tokens, companyPrincipal), `{"name":"Acme Corp"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("only admins delete", func(t *testing.T) {
		t.Parallel()

		router, tokens := newTestRouter(t, RouterConfig{Companies: NewCompanyHandler(&companyServiceStub{company: company}, discardLogger())})
		if rec := doRequest(t, router, http.MethodDelete, "/api/v1/company/company-1", issueToken(t, tokens, companyPrincipal), ""); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if rec := doRequest(t, router, http.MethodDelete, "/api/v1/company/company-1", issueToken(t, tokens, adminPrincipal), ""); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestReportHandlers(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	exports := []application.ReportExport{{
		Report: application.Report{ID: "report-1", PlacementDriveID: "drive-1", ParticipantCount: 4, StartDate: start},
		Drive:  application.PlacementDrive{ID: "drive-1", Title: "Spring Campus Drive", CompanyName: "Acme Corp", StartDate: start},
	}}

	t.Run("export returns an xlsx attachment", func(t *testing.T) {
		t.Parallel()

		service := &reportServiceStub{exports: exports}
		router, tokens := newTestRouter(t, RouterConfig{Reports: NewReportHandler(service, func() time.Time { return start }, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/report/report-1/export", issueToken(t, tokens, adminPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if service.gotReportID != "report-1" {
			t.Fatalf("expected report id to be routed, got %q", service.gotReportID)
		}
		if got := rec.Header().Get("Content-Type"); got != report.ContentType {
			t.Fatalf("unexpected content type %q", got)
		}
		if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="report-spring-campus-drive.xlsx"` {
			t.Fatalf("unexpected content disposition %q", got)
		}
		if !strings.HasPrefix(rec.Body.String(), "PK") {
			t.Fatalf("expected a zip container")
		}
	})

	t.Run("export of all reports has no id", func(t *testing.T) {
		t.Parallel()

		service := &reportServiceStub{exports: exports}
		router, tokens := newTestRouter(t, RouterConfig{Reports: NewReportHandler(service, nil, discardLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/report/export", issueToken(t, tokens, adminPrincipal), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if service.gotReportID != "" {
			t.Fatalf("expected empty report id, got %q", service.gotReportID)
		}
	})

	t.Run("reports are admin only", func(t *testing.T) {
		t.Parallel()

		router, tokens := newTestRouter(t, RouterConfig{Reports: NewReportHandler(&reportServiceStub{exports: exports}, nil, discardLogger())})
		rec := doRequest(t, router, http.MethodGet, "/api/v1/report", issueToken(t, tokens, companyPrincipal), "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, RouterConfig{})
	rec := doRequest(t, router, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeEnvelope(t, rec); !body.Success {
		t.Fatalf("expected success envelope")
	}
}
