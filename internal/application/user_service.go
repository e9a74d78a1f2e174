package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// UserService exposes account lookups and role administration.
type UserService struct {
	users  UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, now, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, now func() time.Time, logger *slog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// ResolvePrincipal loads the current state of userID. Role and company are
// always taken from storage, never from the presented credential.
func (s *UserService) ResolvePrincipal(ctx context.Context, userID string) (Principal, error) {
	if s == nil || s.users == nil {
		return Principal{}, fmt.Errorf("user repository not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Principal{}, ErrUnauthenticated
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if err = plainRepoErrors.mapError(err); errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{}, err
	}
	if !user.IsActive {
		return Principal{}, ErrAccountDisabled
	}

	principal := Principal{UserID: user.ID, Role: user.Role}
	if user.CompanyID != nil {
		principal.CompanyID = *user.CompanyID
	}
	return principal, nil
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, principal Principal) (User, error) {
	return s.GetUser(ctx, principal, principal.UserID)
}

// GetUser returns a single account to any authenticated caller.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (user User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load user", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if principal.UserID == "" {
		err = ErrUnauthenticated
		return
	}

	user, err = s.users.GetUser(ctx, userID)
	err = plainRepoErrors.mapError(err)
	return
}

// ListUsers returns all accounts for administrators, ordered by email.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) (users []User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListUsers", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list users", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(users)).InfoContext(ctx, "users listed")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var raw []User
	raw, err = s.users.ListUsers(ctx)
	if err != nil {
		return
	}

	users = make([]User, len(raw))
	copy(users, raw)
	sort.Slice(users, func(i, j int) bool {
		if users[i].Email == users[j].Email {
			return users[i].ID < users[j].ID
		}
		return users[i].Email < users[j].Email
	})
	return
}

// UpdateRole changes the role of userID. Only administrators may call it.
func (s *UserService) UpdateRole(ctx context.Context, principal Principal, userID, role string) (user User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	role = strings.ToLower(strings.TrimSpace(role))
	logger := s.loggerWith(ctx, "UpdateRole",
		"principal_id", principal.UserID,
		"user_id", userID,
		"role", role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role updated")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if !oneOf(role, RoleStudent, RoleCompany, RoleAdmin) {
		err = singleFieldError("role", "role must be one of student, company or admin")
		return
	}

	user, err = s.users.GetUser(ctx, userID)
	if err != nil {
		err = plainRepoErrors.mapError(err)
		return
	}

	user.Role = role
	user.UpdatedAt = s.now()
	user, err = s.users.UpdateUser(ctx, user)
	err = plainRepoErrors.mapError(err)
	return
}
