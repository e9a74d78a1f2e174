package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type interviewService interface {
	CreateInterview(ctx context.Context, params application.CreateInterviewParams) (application.Interview, error)
	UpdateInterview(ctx context.Context, params application.UpdateInterviewParams) (application.Interview, error)
	GetInterview(ctx context.Context, principal application.Principal, interviewID string) (application.Interview, error)
	ListInterviews(ctx context.Context, principal application.Principal) ([]application.Interview, error)
	ListMyInterviews(ctx context.Context, principal application.Principal) ([]application.Interview, error)
	ListCompanyInterviews(ctx context.Context, principal application.Principal) ([]application.Interview, error)
	DeleteInterview(ctx context.Context, principal application.Principal, interviewID string) error
}

type InterviewHandler struct {
	service   interviewService
	responder responder
	logger    *slog.Logger
}

func NewInterviewHandler(service interviewService, logger *slog.Logger) *InterviewHandler {
	base := defaultLogger(logger)
	return &InterviewHandler{service: service, responder: newResponder(base, "Interview"), logger: base}
}

func (h *InterviewHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InterviewHandler", operation, attrs...)
}

func (h *InterviewHandler) RegisterRoutes(r chi.Router) {
	recruiters := RequireRole(h.logger, application.RoleCompany, application.RoleAdmin)

	r.With(recruiters).Post("/", h.Create)
	r.With(RequireRole(h.logger, application.RoleAdmin)).Get("/", h.List)
	r.With(RequireRole(h.logger, application.RoleStudent)).Get("/my", h.ListMine)
	r.With(RequireRole(h.logger, application.RoleCompany)).Get("/company", h.ListForCompany)
	r.Get("/{id}", h.Get)
	r.With(recruiters).Put("/{id}", h.Update)
	r.With(recruiters).Delete("/{id}", h.Delete)
}

func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req interviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode interview request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "job_id", req.Job, "candidate_id", req.Candidate)
	interview, err := h.service.CreateInterview(r.Context(), application.CreateInterviewParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview scheduling failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("interview_id", interview.ID).InfoContext(r.Context(), "interview scheduled")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "interview scheduled successfully", toInterviewDTO(interview))
}

func (h *InterviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID := idParam(r)
	if interviewID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req interviewPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "interview_id", interviewID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode interview update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "interview_id", interviewID)
	interview, err := h.service.UpdateInterview(r.Context(), application.UpdateInterviewParams{
		Principal:   principal,
		InterviewID: interviewID,
		Patch:       req.toPatch(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "interview update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", interview.Status, "result", interview.Result).InfoContext(r.Context(), "interview updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "interview updated successfully", toInterviewDTO(interview))
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	interview, err := h.service.GetInterview(r.Context(), principal, interviewID)
	if err != nil {
		h.log(r.Context(), "Get", "interview_id", interviewID).ErrorContext(r.Context(), "interview lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toInterviewDTO(interview))
}

func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "List", interviewService.ListInterviews)
}

func (h *InterviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ListMine", interviewService.ListMyInterviews)
}

func (h *InterviewHandler) ListForCompany(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ListForCompany", interviewService.ListCompanyInterviews)
}

func (h *InterviewHandler) list(w http.ResponseWriter, r *http.Request, operation string, fetch func(interviewService, context.Context, application.Principal) ([]application.Interview, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation)
	interviews, err := fetch(h.service, r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "interview list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]interviewDTO, 0, len(interviews))
	for _, interview := range interviews {
		out = append(out, toInterviewDTO(interview))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "interviews listed")
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *InterviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	interviewID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "interview_id", interviewID)
	if err := h.service.DeleteInterview(r.Context(), principal, interviewID); err != nil {
		logger.ErrorContext(r.Context(), "interview delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "interview deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "interview deleted successfully", nil)
}

type attachmentRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type reminderRequest struct {
	MinutesBefore int `json:"whenMinutesBefore"`
}

type interviewRequest struct {
	Job             string              `json:"job"`
	Candidate       string              `json:"candidate"`
	StartTime       *dateTime           `json:"startTime"`
	EndTime         *dateTime           `json:"endTime"`
	InterviewDate   *dateTime           `json:"interviewDate"`
	DurationMinutes int                 `json:"durationMinutes"`
	Timezone        string              `json:"timezone"`
	Round           string              `json:"round"`
	InterviewType   string              `json:"interviewType"`
	Location        string              `json:"location"`
	MeetingPassword string              `json:"meetingPassword"`
	Interviewers    []string            `json:"interviewers"`
	Attachments     []attachmentRequest `json:"attachments"`
	Reminders       []reminderRequest   `json:"reminders"`
}

func (r interviewRequest) toInput() application.InterviewInput {
	input := application.InterviewInput{
		JobID:           strings.TrimSpace(r.Job),
		CandidateID:     strings.TrimSpace(r.Candidate),
		StartTime:       r.StartTime.ptr(),
		EndTime:         r.EndTime.ptr(),
		InterviewDate:   r.InterviewDate.ptr(),
		DurationMinutes: r.DurationMinutes,
		Timezone:        strings.TrimSpace(r.Timezone),
		Round:           strings.TrimSpace(r.Round),
		InterviewType:   strings.TrimSpace(r.InterviewType),
		Location:        strings.TrimSpace(r.Location),
		MeetingPassword: r.MeetingPassword,
		Interviewers:    trimAll(r.Interviewers),
	}
	for _, a := range r.Attachments {
		input.Attachments = append(input.Attachments, application.Attachment{
			URL:  strings.TrimSpace(a.URL),
			Name: strings.TrimSpace(a.Name),
		})
	}
	for _, rem := range r.Reminders {
		input.Reminders = append(input.Reminders, application.Reminder{MinutesBefore: rem.MinutesBefore})
	}
	return input
}

type interviewPatchRequest struct {
	Feedback        *string   `json:"feedback"`
	Score           *int      `json:"score"`
	Result          *string   `json:"result"`
	Status          *string   `json:"status"`
	Job             *string   `json:"job"`
	Candidate       *string   `json:"candidate"`
	StartTime       *dateTime `json:"startTime"`
	EndTime         *dateTime `json:"endTime"`
	InterviewDate   *dateTime `json:"interviewDate"`
	DurationMinutes *int      `json:"durationMinutes"`
	InterviewType   *string   `json:"interviewType"`
	Location        *string   `json:"location"`
	Round           *string   `json:"round"`
	Platform        *string   `json:"platform"`
	Interviewers    []string  `json:"interviewers"`
	CancelReason    *string   `json:"cancelReason"`
}

func (r interviewPatchRequest) toPatch() application.InterviewPatch {
	patch := application.InterviewPatch{
		Feedback:        r.Feedback,
		Score:           r.Score,
		Result:          trimmedPtr(r.Result),
		Status:          trimmedPtr(r.Status),
		JobID:           trimmedPtr(r.Job),
		CandidateID:     trimmedPtr(r.Candidate),
		StartTime:       r.StartTime.ptr(),
		EndTime:         r.EndTime.ptr(),
		InterviewDate:   r.InterviewDate.ptr(),
		DurationMinutes: r.DurationMinutes,
		InterviewType:   trimmedPtr(r.InterviewType),
		Location:        r.Location,
		Round:           trimmedPtr(r.Round),
		Platform:        trimmedPtr(r.Platform),
		CancelReason:    r.CancelReason,
	}
	if r.Interviewers != nil {
		patch.Interviewers = trimAll(r.Interviewers)
		if patch.Interviewers == nil {
			patch.Interviewers = []string{}
		}
	}
	return patch
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

type attachmentDTO struct {
	URL        string `json:"url"`
	Name       string `json:"name,omitempty"`
	UploadedBy string `json:"uploadedBy,omitempty"`
	UploadedAt string `json:"uploadedAt"`
}

type reminderDTO struct {
	MinutesBefore int     `json:"whenMinutesBefore"`
	SentAt        *string `json:"sentAt,omitempty"`
}

type videoProviderDTO struct {
	ProviderName      string `json:"providerName,omitempty"`
	ExternalMeetingID string `json:"externalMeetingId,omitempty"`
	JoinURL           string `json:"joinUrl,omitempty"`
	WebhookStatus     string `json:"webhookStatus,omitempty"`
}

type interviewDTO struct {
	ID              string           `json:"id"`
	Job             string           `json:"job"`
	Candidate       string           `json:"candidate"`
	StartTime       string           `json:"startTime"`
	EndTime         *string          `json:"endTime,omitempty"`
	InterviewDate   string           `json:"interviewDate"`
	DurationMinutes int              `json:"durationMinutes"`
	Timezone        string           `json:"timezone"`
	Round           string           `json:"round"`
	InterviewType   string           `json:"interviewType"`
	Platform        string           `json:"platform,omitempty"`
	Location        string           `json:"location,omitempty"`
	MeetingID       string           `json:"meetingId"`
	MeetingPassword string           `json:"meetingPassword,omitempty"`
	Interviewers    []string         `json:"interviewers"`
	Status          string           `json:"status"`
	Feedback        string           `json:"feedback,omitempty"`
	Score           *int             `json:"score,omitempty"`
	Result          string           `json:"result"`
	Attachments     []attachmentDTO  `json:"attachments"`
	Reminders       []reminderDTO    `json:"reminders"`
	VideoProvider   videoProviderDTO `json:"videoProvider"`
	CreatedBy       *string          `json:"createdBy,omitempty"`
	CancelledBy     *string          `json:"cancelledBy,omitempty"`
	CancelReason    string           `json:"cancelReason,omitempty"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

func toInterviewDTO(i application.Interview) interviewDTO {
	out := interviewDTO{
		ID:              i.ID,
		Job:             i.JobID,
		Candidate:       i.CandidateID,
		StartTime:       formatTime(i.StartTime),
		EndTime:         formatTimePtr(i.EndTime),
		InterviewDate:   formatTime(i.InterviewDate),
		DurationMinutes: i.DurationMinutes,
		Timezone:        i.Timezone,
		Round:           i.Round,
		InterviewType:   i.InterviewType,
		Platform:        i.Platform,
		Location:        i.Location,
		MeetingID:       i.MeetingID,
		MeetingPassword: i.MeetingPassword,
		Interviewers:    nonNil(i.Interviewers),
		Status:          i.Status,
		Feedback:        i.Feedback,
		Score:           i.Score,
		Result:          i.Result,
		Attachments:     make([]attachmentDTO, 0, len(i.Attachments)),
		Reminders:       make([]reminderDTO, 0, len(i.Reminders)),
		VideoProvider:   videoProviderDTO(i.VideoProvider),
		CreatedBy:       i.CreatedBy,
		CancelledBy:     i.CancelledBy,
		CancelReason:    i.CancelReason,
		CreatedAt:       formatTime(i.CreatedAt),
		UpdatedAt:       formatTime(i.UpdatedAt),
	}
	for _, a := range i.Attachments {
		out.Attachments = append(out.Attachments, attachmentDTO{
			URL:        a.URL,
			Name:       a.Name,
			UploadedBy: a.UploadedBy,
			UploadedAt: formatTime(a.UploadedAt),
		})
	}
	for _, rem := range i.Reminders {
		out.Reminders = append(out.Reminders, reminderDTO{
			MinutesBefore: rem.MinutesBefore,
			SentAt:        formatTimePtr(rem.SentAt),
		})
	}
	return out
}
