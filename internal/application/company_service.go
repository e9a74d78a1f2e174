package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

var companySizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

var companyRepoErrors = repoErrors{
	duplicate: "user already has a company profile",
	blocked:   "company profile is referenced by jobs or applications",
}

// CompanyService orchestrates validation, authorization, and persistence for company profiles.
type CompanyService struct {
	companies   CompanyRepository
	users       UserLookup
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCompanyService constructs a company service with the provided dependencies.
func NewCompanyService(companies CompanyRepository, users UserLookup, idGenerator func() string, now func() time.Time) *CompanyService {
	return NewCompanyServiceWithLogger(companies, users, idGenerator, now, nil)
}

// NewCompanyServiceWithLogger constructs a company service with a specified logger.
func NewCompanyServiceWithLogger(companies CompanyRepository, users UserLookup, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CompanyService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CompanyService{companies: companies, users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *CompanyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CompanyService", operation, attrs...)
}

// CreateCompany persists a profile. Company users always own the profile
// they create; administrators name the owning company user explicitly.
func (s *CompanyService) CreateCompany(ctx context.Context, params CreateCompanyParams) (company CompanyProfile, err error) {
	if s == nil || s.companies == nil {
		err = fmt.Errorf("company repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCompany", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create company", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("company_id", company.ID).InfoContext(ctx, "company created")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	input := normalizeCompanyInput(params.Input)
	if params.Principal.Role == RoleCompany {
		input.UserID = params.Principal.UserID
		input.Verified = false
	}

	vErr := validateCompanyInput(input)
	if isBlank(input.UserID) {
		vErr.add("user", "user is required")
	} else if params.Principal.IsAdmin() && s.users != nil {
		owner, lookupErr := s.users.GetUser(ctx, input.UserID)
		switch {
		case lookupErr != nil:
			vErr.add("user", "user does not exist")
		case owner.Role != RoleCompany:
			vErr.add("user", "user must have the company role")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	company = companyFromInput(CompanyProfile{ID: s.idGenerator(), CreatedAt: now}, input)
	company.CreatedBy = stringPtr(params.Principal.UserID)
	company.UpdatedAt = now

	company, err = s.companies.CreateCompany(ctx, company)
	err = companyRepoErrors.mapError(err)
	return
}

// GetCompany returns a single profile to any authenticated caller.
func (s *CompanyService) GetCompany(ctx context.Context, principal Principal, companyID string) (company CompanyProfile, err error) {
	if s == nil || s.companies == nil {
		err = fmt.Errorf("company repository not configured")
		return
	}

	company, err = s.companies.GetCompany(ctx, companyID)
	if err != nil {
		err = companyRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetCompany", "principal_id", principal.UserID, "company_id", companyID).
			ErrorContext(ctx, "failed to load company", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListCompanies returns every profile ordered by name.
func (s *CompanyService) ListCompanies(ctx context.Context, principal Principal) (companies []CompanyProfile, err error) {
	if s == nil || s.companies == nil {
		err = fmt.Errorf("company repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListCompanies", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list companies", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(companies)).InfoContext(ctx, "companies listed")
	}()

	companies, err = s.companies.ListCompanies(ctx)
	if err != nil {
		return
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return strings.ToLower(companies[i].Name) < strings.ToLower(companies[j].Name)
	})
	return
}

// UpdateCompany replaces the editable fields of a profile. Company users may
// only edit their own profile and cannot change its verification state.
func (s *CompanyService) UpdateCompany(ctx context.Context, params UpdateCompanyParams) (company CompanyProfile, err error) {
	if s == nil || s.companies == nil {
		err = fmt.Errorf("company repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateCompany",
		"principal_id", params.Principal.UserID,
		"company_id", params.CompanyID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update company", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "company updated")
	}()

	if !params.Principal.HasRole(RoleCompany, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing CompanyProfile
	existing, err = s.companies.GetCompany(ctx, params.CompanyID)
	if err != nil {
		err = companyRepoErrors.mapError(err)
		return
	}
	if params.Principal.Role == RoleCompany && existing.UserID != params.Principal.UserID {
		err = ErrUnauthorized
		return
	}

	input := normalizeCompanyInput(params.Input)
	if !params.Principal.IsAdmin() {
		input.Verified = existing.Verified
	}
	if vErr := validateCompanyInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := companyFromInput(existing, input)
	updated.UpdatedBy = stringPtr(params.Principal.UserID)
	updated.UpdatedAt = s.now()

	company, err = s.companies.UpdateCompany(ctx, updated)
	err = companyRepoErrors.mapError(err)
	return
}

// DeleteCompany removes a profile for administrators. Profiles that still
// have jobs or applications cannot be removed.
func (s *CompanyService) DeleteCompany(ctx context.Context, principal Principal, companyID string) error {
	if s == nil || s.companies == nil {
		return fmt.Errorf("company repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteCompany",
		"principal_id", principal.UserID,
		"company_id", companyID,
	)

	if err := s.companies.DeleteCompany(ctx, companyID); err != nil {
		err = companyRepoErrors.mapError(err)
		logger.ErrorContext(ctx, "failed to delete company", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "company deleted")
	return nil
}

// Dashboard summarises the caller's company activity.
func (s *CompanyService) Dashboard(ctx context.Context, principal Principal) (dashboard CompanyDashboard, err error) {
	if s == nil || s.companies == nil {
		err = fmt.Errorf("company repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Dashboard", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build dashboard", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if principal.Role != RoleCompany {
		err = ErrUnauthorized
		return
	}

	var company CompanyProfile
	company, err = s.companies.GetCompanyByUser(ctx, principal.UserID)
	if err != nil {
		err = companyRepoErrors.mapError(err)
		return
	}

	dashboard, err = s.companies.CompanyStats(ctx, company.ID, s.now())
	if err != nil {
		err = companyRepoErrors.mapError(err)
		return
	}
	dashboard.Company = company
	return
}

func normalizeCompanyInput(input CompanyInput) CompanyInput {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.Industry = strings.TrimSpace(input.Industry)
	input.Size = strings.TrimSpace(input.Size)
	if input.Size == "" {
		input.Size = companySizes[0]
	}
	input.Description = strings.TrimSpace(input.Description)
	input.Logo = strings.TrimSpace(input.Logo)
	input.Website = strings.TrimSpace(input.Website)
	input.ContactPerson.Name = strings.TrimSpace(input.ContactPerson.Name)
	input.ContactPerson.Email = normalizeEmail(input.ContactPerson.Email)
	input.ContactPerson.Phone = strings.TrimSpace(input.ContactPerson.Phone)
	return input
}

func validateCompanyInput(input CompanyInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "company name is required")
	}
	if !oneOf(input.Size, companySizes...) {
		vErr.add("size", "size must be one of "+strings.Join(companySizes, ", "))
	}
	if input.Website != "" && !isValidURL(input.Website) {
		vErr.add("website", "website must be a valid URL")
	}
	if input.Logo != "" && !isValidURL(input.Logo) {
		vErr.add("logo", "logo must be a valid URL")
	}
	if input.ContactPerson.Email != "" && !isValidEmail(input.ContactPerson.Email) {
		vErr.add("contactPerson.email", "contact email is invalid")
	}
	if input.ContactPerson.Phone != "" && !isValidPhone(input.ContactPerson.Phone) {
		vErr.add("contactPerson.phone", "contact phone must be 10 digits")
	}
	for field, link := range map[string]string{
		"socialLinks.linkedin": input.SocialLinks.LinkedIn,
		"socialLinks.twitter":  input.SocialLinks.Twitter,
		"socialLinks.facebook": input.SocialLinks.Facebook,
	} {
		if link != "" && !isValidURL(link) {
			vErr.add(field, "social link must be a valid URL")
		}
	}

	return vErr
}

func companyFromInput(base CompanyProfile, input CompanyInput) CompanyProfile {
	if base.UserID == "" {
		base.UserID = input.UserID
	}
	base.Name = input.Name
	base.Industry = input.Industry
	base.Size = input.Size
	base.Description = input.Description
	base.Logo = input.Logo
	base.Website = input.Website
	base.Location = input.Location
	base.ContactPerson = input.ContactPerson
	base.SocialLinks = input.SocialLinks
	base.Verified = input.Verified
	return base
}
