package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/placement-portal/internal/application"
)

type authService interface {
	Register(ctx context.Context, input application.RegisterInput) (application.AuthResult, error)
	Login(ctx context.Context, email, password string) (application.AuthResult, error)
}

type userService interface {
	Profile(ctx context.Context, principal application.Principal) (application.User, error)
	GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error)
	ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error)
	UpdateRole(ctx context.Context, principal application.Principal, userID, role string) (application.User, error)
}

// AuthHandler serves registration, login and account endpoints.
type AuthHandler struct {
	auth         authService
	users        userService
	cookieSecure bool
	responder    responder
	logger       *slog.Logger
}

func NewAuthHandler(auth authService, users userService, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{
		auth:         auth,
		users:        users,
		cookieSecure: cookieSecure,
		responder:    newResponder(base, "User"),
		logger:       base,
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode register request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Register", "email", email)

	result, err := h.auth.Register(r.Context(), application.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: req.Password,
		Role:     strings.TrimSpace(req.Role),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.setTokenCookie(w, result.Token, result.ExpiresAt)
	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user registered")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "user registered successfully", toAuthDTO(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		logger.ErrorContext(r.Context(), "authentication rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.setTokenCookie(w, result.Token, result.ExpiresAt)
	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user authenticated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "login successful", toAuthDTO(result))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w)
	h.log(r.Context(), "Logout").InfoContext(r.Context(), "token cookie cleared")
	h.responder.writeData(r.Context(), w, http.StatusOK, "logged out successfully", nil)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.users.Profile(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Profile").ErrorContext(r.Context(), "profile lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toUserDTO(user))
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListUsers")
	users, err := h.users.ListUsers(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "user list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(users)).InfoContext(r.Context(), "users listed")
	h.responder.writeList(r.Context(), w, toUserDTOs(users), len(users))
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := idParam(r)
	if userID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.users.GetUser(r.Context(), principal, userID)
	if err != nil {
		h.log(r.Context(), "GetUser", "user_id", userID).ErrorContext(r.Context(), "user lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", toUserDTO(user))
}

func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := idParam(r)
	if userID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "UpdateRole", "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode role update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "UpdateRole", "user_id", userID, "role", req.Role)
	user, err := h.users.UpdateRole(r.Context(), principal, userID, strings.TrimSpace(req.Role))
	if err != nil {
		logger.ErrorContext(r.Context(), "role update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user role updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "user role updated successfully", toUserDTO(user))
}

// RegisterRoutes mounts the auth endpoints. Public routes pass through
// limiter; everything else requires authenticate.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authenticate, limiter func(http.Handler) http.Handler) {
	r.Group(func(public chi.Router) {
		if limiter != nil {
			public.Use(limiter)
		}
		public.Post("/register", h.Register)
		public.Post("/login", h.Login)
	})
	r.Post("/logout", h.Logout)

	r.Group(func(private chi.Router) {
		private.Use(authenticate)
		private.Get("/profile", h.Profile)
		private.Get("/users/{id}", h.GetUser)
		private.Group(func(admin chi.Router) {
			admin.Use(RequireRole(h.logger, application.RoleAdmin))
			admin.Get("/users", h.ListUsers)
			admin.Put("/profile/role/{id}", h.UpdateRole)
		})
	})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type authDTO struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      userDTO `json:"user"`
}

type userDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	CompanyID *string `json:"companyId,omitempty"`
	IsActive  bool    `json:"isActive"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toAuthDTO(result application.AuthResult) authDTO {
	return authDTO{
		Token:     result.Token,
		ExpiresAt: formatTime(result.ExpiresAt),
		User:      toUserDTO(result.User),
	}
}

func toUserDTO(user application.User) userDTO {
	return userDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		IsActive:  user.IsActive,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

func toUserDTOs(users []application.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toUserDTO(user))
	}
	return out
}
