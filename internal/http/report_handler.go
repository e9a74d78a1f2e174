package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/report"
)

type reportService interface {
	CreateReport(ctx context.Context, params application.CreateReportParams) (application.Report, error)
	UpdateReport(ctx context.Context, params application.UpdateReportParams) (application.Report, error)
	GetReport(ctx context.Context, principal application.Principal, reportID string) (application.Report, error)
	ListReports(ctx context.Context, principal application.Principal) ([]application.Report, error)
	DeleteReport(ctx context.Context, principal application.Principal, reportID string) error
	ExportReports(ctx context.Context, principal application.Principal, reportID string) ([]application.ReportExport, error)
}

type ReportHandler struct {
	service   reportService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, now func() time.Time, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{service: service, now: now, responder: newResponder(base, "Report"), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Use(RequireRole(h.logger, application.RoleAdmin))
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/export", h.Export)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode report request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "drive_id", req.PlacementDrive)
	rep, err := h.service.CreateReport(r.Context(), application.CreateReportParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "report creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("report_id", rep.ID).InfoContext(r.Context(), "report created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "report created successfully", toReportDTO(rep))
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	reports, err := h.service.ListReports(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "report list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]reportDTO, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportDTO(rep))
	}
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reportID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	rep, err := h.service.GetReport(r.Context(), principal, reportID)
	if err != nil {
		h.log(r.Context(), "Get", "report_id", reportID).ErrorContext(r.Context(), "report lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toReportDTO(rep))
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reportID := idParam(r)
	if reportID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "report_id", reportID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode report update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "report_id", reportID)
	rep, err := h.service.UpdateReport(r.Context(), application.UpdateReportParams{
		Principal: principal,
		ReportID:  reportID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "report update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "report updated successfully", toReportDTO(rep))
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reportID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "report_id", reportID)
	if err := h.service.DeleteReport(r.Context(), principal, reportID); err != nil {
		logger.ErrorContext(r.Context(), "report delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "report deleted successfully", nil)
}

// Export streams one report, or all reports when no id is routed, as an
// xlsx workbook.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reportID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Export", "report_id", reportID)

	exports, err := h.service.ExportReports(r.Context(), principal, reportID)
	if err != nil {
		logger.ErrorContext(r.Context(), "report export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, exports, h.now()); err != nil {
		logger.ErrorContext(r.Context(), "failed to render workbook", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(exports)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to write workbook", "error", err)
		return
	}
	logger.With("result_count", len(exports)).InfoContext(r.Context(), "reports exported")
}

type reportRequest struct {
	PlacementDrive string    `json:"placementDrive"`
	StartDate      *dateTime `json:"startDate"`
	EndDate        *dateTime `json:"endDate"`
	Summary        string    `json:"summary"`
}

func (r reportRequest) toInput() application.ReportInput {
	return application.ReportInput{
		PlacementDriveID: strings.TrimSpace(r.PlacementDrive),
		StartDate:        r.StartDate.ptr(),
		EndDate:          r.EndDate.ptr(),
		Summary:          strings.TrimSpace(r.Summary),
	}
}

type reportDTO struct {
	ID               string  `json:"id"`
	PlacementDrive   string  `json:"placementDrive"`
	ParticipantCount int     `json:"participantCount"`
	InterviewCount   int     `json:"interviewCount"`
	OffersMade       int     `json:"offersMade"`
	StudentsPlaced   int     `json:"studentsPlaced"`
	StartDate        string  `json:"startDate"`
	EndDate          *string `json:"endDate,omitempty"`
	Summary          string  `json:"summary,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func toReportDTO(r application.Report) reportDTO {
	return reportDTO{
		ID:               r.ID,
		PlacementDrive:   r.PlacementDriveID,
		ParticipantCount: r.ParticipantCount,
		InterviewCount:   r.InterviewCount,
		OffersMade:       r.OffersMade,
		StudentsPlaced:   r.StudentsPlaced,
		StartDate:        formatTime(r.StartDate),
		EndDate:          formatTimePtr(r.EndDate),
		Summary:          r.Summary,
		CreatedAt:        formatTime(r.CreatedAt),
		UpdatedAt:        formatTime(r.UpdatedAt),
	}
}
