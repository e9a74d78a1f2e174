package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type companyService interface {
	CreateCompany(ctx context.Context, params application.CreateCompanyParams) (application.CompanyProfile, error)
	GetCompany(ctx context.Context, principal application.Principal, companyID string) (application.CompanyProfile, error)
	ListCompanies(ctx context.Context, principal application.Principal) ([]application.CompanyProfile, error)
	UpdateCompany(ctx context.Context, params application.UpdateCompanyParams) (application.CompanyProfile, error)
	DeleteCompany(ctx context.Context, principal application.Principal, companyID string) error
	Dashboard(ctx context.Context, principal application.Principal) (application.CompanyDashboard, error)
}

type CompanyHandler struct {
	service   companyService
	responder responder
	logger    *slog.Logger
}

func NewCompanyHandler(service companyService, logger *slog.Logger) *CompanyHandler {
	base := defaultLogger(logger)
	return &CompanyHandler{service: service, responder: newResponder(base, "Company profile"), logger: base}
}

func (h *CompanyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CompanyHandler", operation, attrs...)
}

func (h *CompanyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.With(RequireRole(h.logger, application.RoleCompany)).Get("/dashboard", h.Dashboard)
	r.Get("/{id}", h.Get)
	r.With(RequireRole(h.logger, application.RoleCompany, application.RoleAdmin)).Post("/", h.Create)
	r.With(RequireRole(h.logger, application.RoleCompany, application.RoleAdmin)).Put("/{id}", h.Update)
	r.With(RequireRole(h.logger, application.RoleAdmin)).Delete("/{id}", h.Delete)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode company request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create")

	company, err := h.service.CreateCompany(r.Context(), application.CreateCompanyParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "company creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("company_id", company.ID).InfoContext(r.Context(), "company profile created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "company profile created successfully", toCompanyDTO(company))
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List")
	companies, err := h.service.ListCompanies(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "company list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]companyDTO, 0, len(companies))
	for _, company := range companies {
		out = append(out, toCompanyDTO(company))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "companies listed")
	h.responder.writeList(r.Context(), w, out, len(out))
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	companyID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	company, err := h.service.GetCompany(r.Context(), principal, companyID)
	if err != nil {
		h.log(r.Context(), "Get", "company_id", companyID).ErrorContext(r.Context(), "company lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toCompanyDTO(company))
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	companyID := idParam(r)
	if companyID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "company_id", companyID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode company update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "company_id", companyID)
	company, err := h.service.UpdateCompany(r.Context(), application.UpdateCompanyParams{
		Principal: principal,
		CompanyID: companyID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "company update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "company profile updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "company profile updated successfully", toCompanyDTO(company))
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	companyID := idParam(r)
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "company_id", companyID)
	if err := h.service.DeleteCompany(r.Context(), principal, companyID); err != nil {
		logger.ErrorContext(r.Context(), "company delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "company profile deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, "company profile deleted successfully", nil)
}

func (h *CompanyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	dashboard, err := h.service.Dashboard(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Dashboard").ErrorContext(r.Context(), "dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "", dashboardDTO{
		Company: toCompanyDTO(dashboard.Company),
		Stats: dashboardStatsDTO{
			JobsPosted:           dashboard.JobsPosted,
			ApplicationsReceived: dashboard.ApplicationsReceived,
			UpcomingInterviews:   dashboard.UpcomingInterviews,
		},
	})
}

type addressDTO struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

type contactDTO struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type socialLinksDTO struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

type companyRequest struct {
	User          string         `json:"user"`
	Name          string         `json:"name"`
	Industry      string         `json:"industry"`
	Size          string         `json:"size"`
	Description   string         `json:"description"`
	Logo          string         `json:"logo"`
	Website       string         `json:"website"`
	Location      addressDTO     `json:"location"`
	ContactPerson contactDTO     `json:"contactPerson"`
	SocialLinks   socialLinksDTO `json:"socialLinks"`
	Verified      bool           `json:"verified"`
}

func (r companyRequest) toInput() application.CompanyInput {
	return application.CompanyInput{
		UserID:      strings.TrimSpace(r.User),
		Name:        strings.TrimSpace(r.Name),
		Industry:    strings.TrimSpace(r.Industry),
		Size:        strings.TrimSpace(r.Size),
		Description: strings.TrimSpace(r.Description),
		Logo:        strings.TrimSpace(r.Logo),
		Website:     strings.TrimSpace(r.Website),
		Location: application.Address{
			Address: strings.TrimSpace(r.Location.Address),
			City:    strings.TrimSpace(r.Location.City),
			State:   strings.TrimSpace(r.Location.State),
			Country: strings.TrimSpace(r.Location.Country),
			Pincode: strings.TrimSpace(r.Location.Pincode),
		},
		ContactPerson: application.Contact{
			Name:  strings.TrimSpace(r.ContactPerson.Name),
			Email: strings.TrimSpace(r.ContactPerson.Email),
			Phone: strings.TrimSpace(r.ContactPerson.Phone),
		},
		SocialLinks: application.SocialLinks{
			LinkedIn: strings.TrimSpace(r.SocialLinks.LinkedIn),
			Twitter:  strings.TrimSpace(r.SocialLinks.Twitter),
			Facebook: strings.TrimSpace(r.SocialLinks.Facebook),
		},
		Verified: r.Verified,
	}
}

type companyDTO struct {
	ID            string         `json:"id"`
	User          string         `json:"user"`
	Name          string         `json:"name"`
	Industry      string         `json:"industry,omitempty"`
	Size          string         `json:"size"`
	Description   string         `json:"description,omitempty"`
	Logo          string         `json:"logo,omitempty"`
	Website       string         `json:"website,omitempty"`
	Location      addressDTO     `json:"location"`
	ContactPerson contactDTO     `json:"contactPerson"`
	SocialLinks   socialLinksDTO `json:"socialLinks"`
	Verified      bool           `json:"verified"`
	CreatedBy     *string        `json:"createdBy,omitempty"`
	UpdatedBy     *string        `json:"updatedBy,omitempty"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

func toCompanyDTO(c application.CompanyProfile) companyDTO {
	return companyDTO{
		ID:          c.ID,
		User:        c.UserID,
		Name:        c.Name,
		Industry:    c.Industry,
		Size:        c.Size,
		Description: c.Description,
		Logo:        c.Logo,
		Website:     c.Website,
		Location: addressDTO{
			Address: c.Location.Address,
			City:    c.Location.City,
			State:   c.Location.State,
			Country: c.Location.Country,
			Pincode: c.Location.Pincode,
		},
		ContactPerson: contactDTO(c.ContactPerson),
		SocialLinks:   socialLinksDTO(c.SocialLinks),
		Verified:      c.Verified,
		CreatedBy:     c.CreatedBy,
		UpdatedBy:     c.UpdatedBy,
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
}

type dashboardDTO struct {
	Company companyDTO        `json:"company"`
	Stats   dashboardStatsDTO `json:"stats"`
}

type dashboardStatsDTO struct {
	JobsPosted           int `json:"jobsPosted"`
	ApplicationsReceived int `json:"applicationsReceived"`
	UpcomingInterviews   int `json:"upcomingInterviews"`
}
