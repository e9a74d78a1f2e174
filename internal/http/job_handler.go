package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type jobService interface {
	CreateJob(ctx context.Context, params application.CreateJobParams) (application.Job, error)
	GetJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error)
	ListJobs(ctx context.Context, principal application.Principal, companyID string) ([]application.Job, error)
	UpdateJob(ctx context.Context, params application.UpdateJobParams) (application.Job, error)
	DeleteJob(ctx context.Context, principal application.Principal, jobID string) error
}

type JobHandler struct {
	service   jobService
	responder responder
	logger    *slog.Logger
}

func NewJobHandler(service jobService, logger *slog.Logger) *JobHandler {
	base := defaultLogger(logger)
	return &JobHandler{service: service, responder: newResponder(base, "Job"), logger: base}
}

func (h *JobHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "JobHandler", operation, attrs...)
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Group(func(posters chi.Router) {
		posters.Use(RequireRole(h.logger, application.RoleCompany, application.RoleAdmin))
		posters.Post("/", h.Create)
		posters.Put("/{id}", h.Update)
		posters.Delete("/{id}", h.Delete)
	})
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode job request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create")
	job, err := h.service.CreateJob(r.Context(), application.CreateJobParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "job creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("job_id", job.ID).InfoContext(r.Context(), "job created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "job created successfully", toJobDTO(job))
}

// List returns every job, or the jobs of one company when companyId is given.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	companyID := strings.TrimSpace(r.URL.Query().Get("companyId"))
	principal, _ := PrincipalFromContext(r.Context())
	jobs, err := h.service.ListJobs(r.Context(), principal, companyID)
	if err != nil {
		h.log(r.Context(), "List", "company_id", companyID).ErrorContext(r.Context(), "job list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobDTO(job))
	}
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	job, err := h.service.GetJob(r.Context(), principal, jobID)
	if err != nil {
		h.log(r.Context(), "Get", "job_id", jobID).ErrorContext(r.Context(), "job lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toJobDTO(job))
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID := idParam(r)
	if jobID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "job_id", jobID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode job update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "job_id", jobID)
	job, err := h.service.UpdateJob(r.Context(), application.UpdateJobParams{
		Principal: principal,
		JobID:     jobID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "job update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "job updated successfully", toJobDTO(job))
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "job_id", jobID)
	if err := h.service.DeleteJob(r.Context(), principal, jobID); err != nil {
		logger.ErrorContext(r.Context(), "job delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "job deleted successfully", nil)
}

type jobRequest struct {
	PlacementDrive      string    `json:"placementDrive"`
	Company             string    `json:"company"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Location            string    `json:"location"`
	Salary              string    `json:"salary"`
	SkillsRequired      []string  `json:"skillsRequired"`
	Openings            int       `json:"openings"`
	PostedDate          *dateTime `json:"postedDate"`
	ApplicationDeadline *dateTime `json:"applicationDeadline"`
}

func (r jobRequest) toInput() application.JobInput {
	return application.JobInput{
		PlacementDriveID:    strings.TrimSpace(r.PlacementDrive),
		CompanyID:           strings.TrimSpace(r.Company),
		Title:               strings.TrimSpace(r.Title),
		Description:         strings.TrimSpace(r.Description),
		Location:            strings.TrimSpace(r.Location),
		Salary:              strings.TrimSpace(r.Salary),
		SkillsRequired:      trimAll(r.SkillsRequired),
		Openings:            r.Openings,
		PostedDate:          r.PostedDate.ptr(),
		ApplicationDeadline: r.ApplicationDeadline.ptr(),
	}
}

type jobDTO struct {
	ID                  string   `json:"id"`
	PlacementDrive      string   `json:"placementDrive"`
	Company             string   `json:"company"`
	Title               string   `json:"title"`
	Description         string   `json:"description,omitempty"`
	Location            string   `json:"location,omitempty"`
	Salary              string   `json:"salary,omitempty"`
	SkillsRequired      []string `json:"skillsRequired"`
	Openings            int      `json:"openings"`
	PostedDate          string   `json:"postedDate"`
	ApplicationDeadline *string  `json:"applicationDeadline,omitempty"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

func toJobDTO(j application.Job) jobDTO {
	return jobDTO{
		ID:                  j.ID,
		PlacementDrive:      j.PlacementDriveID,
		Company:             j.CompanyID,
		Title:               j.Title,
		Description:         j.Description,
		Location:            j.Location,
		Salary:              j.Salary,
		SkillsRequired:      nonNil(j.SkillsRequired),
		Openings:            j.Openings,
		PostedDate:          formatTime(j.PostedDate),
		ApplicationDeadline: formatTimePtr(j.ApplicationDeadline),
		CreatedAt:           formatTime(j.CreatedAt),
		UpdatedAt:           formatTime(j.UpdatedAt),
	}
}
