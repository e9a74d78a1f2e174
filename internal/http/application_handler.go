package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type applicationService interface {
	CreateApplication(ctx context.Context, params application.CreateApplicationParams) (application.Application, error)
	UpdateApplication(ctx context.Context, params application.UpdateApplicationParams) (application.Application, error)
	GetApplication(ctx context.Context, principal application.Principal, applicationID string) (application.Application, error)
	ListApplications(ctx context.Context, principal application.Principal) ([]application.Application, error)
	ListMyApplications(ctx context.Context, principal application.Principal) ([]application.Application, error)
	ListCompanyApplications(ctx context.Context, principal application.Principal, jobID, status string) ([]application.Application, error)
	DeleteApplication(ctx context.Context, principal application.Principal, applicationID string) error
}

type ApplicationHandler struct {
	service   applicationService
	responder responder
	logger    *slog.Logger
}

func NewApplicationHandler(service applicationService, logger *slog.Logger) *ApplicationHandler {
	base := defaultLogger(logger)
	return &ApplicationHandler{service: service, responder: newResponder(base, "Application"), logger: base}
}

func (h *ApplicationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ApplicationHandler", operation, attrs...)
}

// RegisterRoutes mounts the application endpoints. Submissions additionally
// pass through limiter when one is given.
func (h *ApplicationHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	submit := r.With(RequireRole(h.logger, application.RoleStudent, application.RoleAdmin))
	if limiter != nil {
		submit = submit.With(limiter)
	}
	submit.Post("/", h.Create)

	r.With(RequireRole(h.logger, application.RoleStudent)).Get("/my", h.ListMine)
	r.With(RequireRole(h.logger, application.RoleCompany)).Get("/company", h.ListForCompany)
	r.With(RequireRole(h.logger, application.RoleAdmin)).Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(RequireRole(h.logger, application.RoleCompany, application.RoleAdmin)).Put("/{id}", h.Update)
	r.With(RequireRole(h.logger, application.RoleStudent, application.RoleAdmin)).Delete("/{id}", h.Delete)
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req applicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode application request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "job_id", req.Job)
	app, err := h.service.CreateApplication(r.Context(), application.CreateApplicationParams{
		Principal: principal,
		Input: application.ApplicationInput{
			JobID:       strings.TrimSpace(req.Job),
			CandidateID: strings.TrimSpace(req.Candidate),
			Resume:      strings.TrimSpace(req.Resume),
			CoverLetter: strings.TrimSpace(req.CoverLetter),
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "application submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("application_id", app.ID).InfoContext(r.Context(), "application submitted")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "application submitted successfully", toApplicationDTO(app))
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	applicationID := idParam(r)
	if applicationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req applicationReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "application_id", applicationID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode application review", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "application_id", applicationID)
	app, err := h.service.UpdateApplication(r.Context(), application.UpdateApplicationParams{
		Principal:     principal,
		ApplicationID: applicationID,
		Review:        application.ApplicationReview{Status: req.Status, Notes: req.Notes},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "application review failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", app.Status).InfoContext(r.Context(), "application updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "application updated successfully", toApplicationDTO(app))
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	applicationID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	app, err := h.service.GetApplication(r.Context(), principal, applicationID)
	if err != nil {
		h.log(r.Context(), "Get", "application_id", applicationID).ErrorContext(r.Context(), "application lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toApplicationDTO(app))
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "List", func(ctx context.Context, principal application.Principal) ([]application.Application, error) {
		return h.service.ListApplications(ctx, principal)
	})
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ListMine", func(ctx context.Context, principal application.Principal) ([]application.Application, error) {
		return h.service.ListMyApplications(ctx, principal)
	})
}

// ListForCompany accepts optional jobId and status query filters.
func (h *ApplicationHandler) ListForCompany(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	jobID := strings.TrimSpace(query.Get("jobId"))
	status := strings.TrimSpace(query.Get("status"))
	h.list(w, r, "ListForCompany", func(ctx context.Context, principal application.Principal) ([]application.Application, error) {
		return h.service.ListCompanyApplications(ctx, principal, jobID, status)
	})
}

func (h *ApplicationHandler) list(w http.ResponseWriter, r *http.Request, operation string, fetch func(context.Context, application.Principal) ([]application.Application, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation)
	apps, err := fetch(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "application list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]applicationDTO, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationDTO(app))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "applications listed")
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	applicationID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "application_id", applicationID)
	if err := h.service.DeleteApplication(r.Context(), principal, applicationID); err != nil {
		logger.ErrorContext(r.Context(), "application delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "application deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "application deleted successfully", nil)
}

type applicationRequest struct {
	Job         string `json:"job"`
	Candidate   string `json:"candidate"`
	Resume      string `json:"resume"`
	CoverLetter string `json:"coverLetter"`
}

type applicationReviewRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type applicationDTO struct {
	ID          string  `json:"id"`
	Job         string  `json:"job"`
	Candidate   string  `json:"candidate"`
	Company     string  `json:"company"`
	Resume      string  `json:"resume"`
	CoverLetter string  `json:"coverLetter,omitempty"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes,omitempty"`
	UpdatedBy   *string `json:"updatedBy,omitempty"`
	AppliedAt   string  `json:"appliedAt"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toApplicationDTO(a application.Application) applicationDTO {
	return applicationDTO{
		ID:          a.ID,
		Job:         a.JobID,
		Candidate:   a.CandidateID,
		Company:     a.CompanyID,
		Resume:      a.Resume,
		CoverLetter: a.CoverLetter,
		Status:      a.Status,
		Notes:       a.Notes,
		UpdatedBy:   a.UpdatedBy,
		AppliedAt:   formatTime(a.AppliedAt),
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
}
