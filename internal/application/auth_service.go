package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// TokenIssuer signs credentials for an authenticated user.
type TokenIssuer interface {
	IssueToken(principal Principal) (token string, expiresAt time.Time, err error)
}

// AuthService coordinates registration, login and the bootstrap admin account.
type AuthService struct {
	credentials    CredentialStore
	users          UserRepository
	tokens         TokenIssuer
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, users UserRepository, tokens TokenIssuer, idGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(credentials, users, tokens, nil, nil, idGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
// Nil hash and verify functions default to argon2id.
func NewAuthServiceWithLogger(credentials CredentialStore, users UserRepository, tokens TokenIssuer, hash PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if hash == nil {
		hash = HashPassword
	}
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		credentials:    credentials,
		users:          users,
		tokens:         tokens,
		hashPassword:   hash,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates a student or company account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (result AuthResult, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if input.Role == "" {
		input.Role = RoleStudent
	}

	logger := s.loggerWith(ctx, "Register", "email", input.Email, "role", input.Role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateRegistration(input); vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	if hash, err = s.hashPassword(input.Password); err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	now := s.now()
	user := User{
		ID:        s.idGenerator(),
		Name:      input.Name,
		Email:     input.Email,
		Role:      input.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	user, err = s.users.CreateUser(ctx, user, hash)
	if err != nil {
		err = repoErrors{duplicate: "user already exists"}.mapError(err)
		return
	}

	result, err = s.issue(user)
	return
}

// Login verifies credentials and signs a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (result AuthResult, err error) {
	if s == nil || s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if err = plainRepoErrors.mapError(err); errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, password); err != nil {
		err = ErrInvalidCredentials
		return
	}
	if !creds.User.IsActive {
		err = ErrAccountDisabled
		return
	}

	result, err = s.issue(creds.User)
	return
}

// EnsureAdmin creates an active admin account for email when none exists.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (created bool, err error) {
	if s == nil || s.users == nil || s.credentials == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "EnsureAdmin", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to bootstrap admin", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if created {
			logger.InfoContext(ctx, "bootstrap admin created")
		}
	}()

	if _, err = s.credentials.GetUserCredentialsByEmail(ctx, email); err == nil {
		return false, nil
	}
	if err = plainRepoErrors.mapError(err); !errors.Is(err, ErrNotFound) {
		return false, err
	}
	err = nil

	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	input := RegisterInput{Name: strings.TrimSpace(name), Email: email, Password: password, Role: RoleAdmin}
	if vErr := validateCredentials(input); vErr.HasErrors() {
		return false, vErr
	}

	var hash string
	if hash, err = s.hashPassword(password); err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	_, err = s.users.CreateUser(ctx, User{
		ID:        s.idGenerator(),
		Name:      input.Name,
		Email:     email,
		Role:      RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, hash)
	if err != nil {
		return false, plainRepoErrors.mapError(err)
	}
	return true, nil
}

func (s *AuthService) issue(user User) (AuthResult, error) {
	result := AuthResult{User: user}
	if s.tokens == nil {
		return result, nil
	}

	principal := Principal{UserID: user.ID, Role: user.Role}
	if user.CompanyID != nil {
		principal.CompanyID = *user.CompanyID
	}
	token, expiresAt, err := s.tokens.IssueToken(principal)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	result.Token = token
	result.ExpiresAt = expiresAt
	return result, nil
}

func validateRegistration(input RegisterInput) *ValidationError {
	vErr := validateCredentials(input)
	if !oneOf(input.Role, RoleStudent, RoleCompany) {
		vErr.add("role", "role must be student or company")
	}
	return vErr
}

func validateCredentials(input RegisterInput) *ValidationError {
	vErr := &ValidationError{}

	if len([]rune(input.Name)) < 2 {
		vErr.add("name", "name must be at least 2 characters")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if !isValidEmail(input.Email) {
		vErr.add("email", "email is invalid")
	}
	if len(input.Password) < 6 {
		vErr.add("password", "password must be at least 6 characters")
	}

	return vErr
}
