package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type driveService interface {
	CreateDrive(ctx context.Context, params application.CreateDriveParams) (application.PlacementDrive, error)
	GetDrive(ctx context.Context, principal application.Principal, driveID string) (application.PlacementDrive, error)
	ListDrives(ctx context.Context, principal application.Principal) ([]application.PlacementDrive, error)
	UpdateDrive(ctx context.Context, params application.UpdateDriveParams) (application.PlacementDrive, error)
	DeleteDrive(ctx context.Context, principal application.Principal, driveID string) error
}

type DriveHandler struct {
	service   driveService
	responder responder
	logger    *slog.Logger
}

func NewDriveHandler(service driveService, logger *slog.Logger) *DriveHandler {
	base := defaultLogger(logger)
	return &DriveHandler{service: service, responder: newResponder(base, "Placement drive"), logger: base}
}

func (h *DriveHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DriveHandler", operation, attrs...)
}

func (h *DriveHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Group(func(admin chi.Router) {
		admin.Use(RequireRole(h.logger, application.RoleAdmin))
		admin.Post("/", h.Create)
		admin.Put("/{id}", h.Update)
		admin.Delete("/{id}", h.Delete)
	})
}

func (h *DriveHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req driveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode drive request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create")
	drive, err := h.service.CreateDrive(r.Context(), application.CreateDriveParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "drive creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("drive_id", drive.ID).InfoContext(r.Context(), "placement drive created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "placement drive created successfully", toDriveDTO(drive))
}

func (h *DriveHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	drives, err := h.service.ListDrives(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "drive list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]driveDTO, 0, len(drives))
	for _, drive := range drives {
		out = append(out, toDriveDTO(drive))
	}
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *DriveHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	driveID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	drive, err := h.service.GetDrive(r.Context(), principal, driveID)
	if err != nil {
		h.log(r.Context(), "Get", "drive_id", driveID).ErrorContext(r.Context(), "drive lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toDriveDTO(drive))
}

func (h *DriveHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	driveID := idParam(r)
	if driveID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req driveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "drive_id", driveID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode drive update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "drive_id", driveID)
	drive, err := h.service.UpdateDrive(r.Context(), application.UpdateDriveParams{
		Principal: principal,
		DriveID:   driveID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "drive update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "placement drive updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "placement drive updated successfully", toDriveDTO(drive))
}

func (h *DriveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	driveID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "drive_id", driveID)
	if err := h.service.DeleteDrive(r.Context(), principal, driveID); err != nil {
		logger.ErrorContext(r.Context(), "drive delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "placement drive deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "placement drive deleted successfully", nil)
}

type driveRequest struct {
	Title               string    `json:"title"`
	CompanyName         string    `json:"companyName"`
	Location            string    `json:"location"`
	StartDate           *dateTime `json:"startDate"`
	EndDate             *dateTime `json:"endDate"`
	EligibilityCriteria string    `json:"eligibilityCriteria"`
	JobDescription      string    `json:"jobDescription"`
	PackageOffered      string    `json:"packageOffered"`
	ContactPerson       string    `json:"contactPerson"`
}

func (r driveRequest) toInput() application.DriveInput {
	return application.DriveInput{
		Title:               strings.TrimSpace(r.Title),
		CompanyName:         strings.TrimSpace(r.CompanyName),
		Location:            strings.TrimSpace(r.Location),
		StartDate:           r.StartDate.value(),
		EndDate:             r.EndDate.ptr(),
		EligibilityCriteria: strings.TrimSpace(r.EligibilityCriteria),
		JobDescription:      strings.TrimSpace(r.JobDescription),
		PackageOffered:      strings.TrimSpace(r.PackageOffered),
		ContactPerson:       strings.TrimSpace(r.ContactPerson),
	}
}

type driveDTO struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title,omitempty"`
	CompanyName         string  `json:"companyName"`
	Location            string  `json:"location,omitempty"`
	StartDate           string  `json:"startDate"`
	EndDate             *string `json:"endDate,omitempty"`
	EligibilityCriteria string  `json:"eligibilityCriteria,omitempty"`
	JobDescription      string  `json:"jobDescription,omitempty"`
	PackageOffered      string  `json:"packageOffered,omitempty"`
	ContactPerson       string  `json:"contactPerson,omitempty"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

func toDriveDTO(d application.PlacementDrive) driveDTO {
	return driveDTO{
		ID:                  d.ID,
		Title:               d.Title,
		CompanyName:         d.CompanyName,
		Location:            d.Location,
		StartDate:           formatTime(d.StartDate),
		EndDate:             formatTimePtr(d.EndDate),
		EligibilityCriteria: d.EligibilityCriteria,
		JobDescription:      d.JobDescription,
		PackageOffered:      d.PackageOffered,
		ContactPerson:       d.ContactPerson,
		CreatedAt:           formatTime(d.CreatedAt),
		UpdatedAt:           formatTime(d.UpdatedAt),
	}
}
