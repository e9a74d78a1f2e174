package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type studentService interface {
	CreateStudent(ctx context.Context, params application.CreateStudentParams) (application.StudentProfile, error)
	GetStudent(ctx context.Context, principal application.Principal, studentID string) (application.StudentProfile, error)
	ListStudents(ctx context.Context, principal application.Principal) ([]application.StudentProfile, error)
	UpdateStudent(ctx context.Context, params application.UpdateStudentParams) (application.StudentProfile, error)
	DeleteStudent(ctx context.Context, principal application.Principal, studentID string) error
}

type StudentHandler struct {
	service   studentService
	responder responder
	logger    *slog.Logger
}

func NewStudentHandler(service studentService, logger *slog.Logger) *StudentHandler {
	base := defaultLogger(logger)
	return &StudentHandler{service: service, responder: newResponder(base, "Student profile"), logger: base}
}

func (h *StudentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StudentHandler", operation, attrs...)
}

func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.With(RequireRole(h.logger, application.RoleStudent, application.RoleAdmin)).Post("/", h.Create)
	r.With(RequireRole(h.logger, application.RoleAdmin, application.RoleCompany)).Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(RequireRole(h.logger, application.RoleStudent, application.RoleAdmin)).Put("/{id}", h.Update)
	r.With(RequireRole(h.logger, application.RoleAdmin)).Delete("/{id}", h.Delete)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req studentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create")
	student, err := h.service.CreateStudent(r.Context(), application.CreateStudentParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "student creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("student_id", student.ID).InfoContext(r.Context(), "student profile created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "student profile created successfully", toStudentDTO(student))
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	students, err := h.service.ListStudents(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "student list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]studentDTO, 0, len(students))
	for _, student := range students {
		out = append(out, toStudentDTO(student))
	}
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	student, err := h.service.GetStudent(r.Context(), principal, studentID)
	if err != nil {
		h.log(r.Context(), "Get", "student_id", studentID).ErrorContext(r.Context(), "student lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toStudentDTO(student))
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID := idParam(r)
	if studentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req studentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "student_id", studentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "student_id", studentID)
	student, err := h.service.UpdateStudent(r.Context(), application.UpdateStudentParams{
		Principal: principal,
		StudentID: studentID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "student update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student profile updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "student profile updated successfully", toStudentDTO(student))
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	studentID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "student_id", studentID)
	if err := h.service.DeleteStudent(r.Context(), principal, studentID); err != nil {
		logger.ErrorContext(r.Context(), "student delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student profile deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "student profile deleted successfully", nil)
}

type educationDTO struct {
	Institution  string `json:"institution,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    int    `json:"startYear,omitempty"`
	EndYear      int    `json:"endYear,omitempty"`
	Grade        string `json:"grade,omitempty"`
}

type experienceRequest struct {
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	StartDate   *dateTime `json:"startDate"`
	EndDate     *dateTime `json:"endDate"`
	Description string    `json:"description"`
}

type studentRequest struct {
	User           string              `json:"user"`
	Bio            string              `json:"bio"`
	Education      []educationDTO      `json:"education"`
	Experience     []experienceRequest `json:"experience"`
	Skills         []string            `json:"skills"`
	PortfolioLinks []string            `json:"portfolioLinks"`
	Resume         string              `json:"resume"`
}

func (r studentRequest) toInput() application.StudentInput {
	input := application.StudentInput{
		UserID:         strings.TrimSpace(r.User),
		Bio:            strings.TrimSpace(r.Bio),
		Skills:         trimAll(r.Skills),
		PortfolioLinks: trimAll(r.PortfolioLinks),
		ResumeURL:      strings.TrimSpace(r.Resume),
	}
	for _, e := range r.Education {
		input.Education = append(input.Education, application.Education(e))
	}
	for _, e := range r.Experience {
		input.Experience = append(input.Experience, application.Experience{
			Company:     strings.TrimSpace(e.Company),
			Role:        strings.TrimSpace(e.Role),
			StartDate:   e.StartDate.ptr(),
			EndDate:     e.EndDate.ptr(),
			Description: strings.TrimSpace(e.Description),
		})
	}
	return input
}

type experienceDTO struct {
	Company     string  `json:"company,omitempty"`
	Role        string  `json:"role,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Description string  `json:"description,omitempty"`
}

type studentDTO struct {
	ID             string          `json:"id"`
	User           string          `json:"user"`
	Bio            string          `json:"bio,omitempty"`
	Education      []educationDTO  `json:"education"`
	Experience     []experienceDTO `json:"experience"`
	Skills         []string        `json:"skills"`
	PortfolioLinks []string        `json:"portfolioLinks"`
	Resume         string          `json:"resume,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

func toStudentDTO(s application.StudentProfile) studentDTO {
	out := studentDTO{
		ID:             s.ID,
		User:           s.UserID,
		Bio:            s.Bio,
		Education:      make([]educationDTO, 0, len(s.Education)),
		Experience:     make([]experienceDTO, 0, len(s.Experience)),
		Skills:         nonNil(s.Skills),
		PortfolioLinks: nonNil(s.PortfolioLinks),
		Resume:         s.ResumeURL,
		CreatedAt:      formatTime(s.CreatedAt),
		UpdatedAt:      formatTime(s.UpdatedAt),
	}
	for _, e := range s.Education {
		out.Education = append(out.Education, educationDTO(e))
	}
	for _, e := range s.Experience {
		out.Experience = append(out.Experience, experienceDTO{
			Company:     e.Company,
			Role:        e.Role,
			StartDate:   formatTimePtr(e.StartDate),
			EndDate:     formatTimePtr(e.EndDate),
			Description: e.Description,
		})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
