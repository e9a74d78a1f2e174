package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/placement-portal/internal/application"
)

var (
	errBadRequestBody      = errors.New("invalid request body")
	errMissingResourceID   = errors.New("missing resource id")
	errMissingCredential   = errors.New("authentication required")
	errInvalidCredential   = errors.New("invalid or expired token")
	errRoleNotPermitted    = errors.New("you do not have permission to perform this action")
	errRateLimitedResponse = errors.New("too many requests, please try again later")
)

// envelope is the JSON body of every API response.
type envelope struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Data     any               `json:"data,omitempty"`
	Count    *int              `json:"count,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Messages []string          `json:"messages,omitempty"`
}

type responder struct {
	logger   *slog.Logger
	resource string
}

func newResponder(logger *slog.Logger, resource string) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger, resource: resource}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeData(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	r.writeJSON(ctx, w, status, envelope{Success: true, Message: message, Data: data})
}

func (r responder) writeList(ctx context.Context, w http.ResponseWriter, data any, count int) {
	r.writeJSON(ctx, w, http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	r.writeJSON(ctx, w, status, envelope{Success: false, Message: message})
}

// handleServiceError maps application errors onto HTTP responses. Unexpected
// errors are answered with a generic message; the cause stays in the log.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, envelope{
			Success:  false,
			Message:  "validation failed",
			Errors:   vErr.FieldErrors,
			Messages: vErr.Messages(),
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusUnauthorized, errors.New("invalid credentials"))
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeError(ctx, w, http.StatusUnauthorized, errors.New("account is disabled"))
	case errors.Is(err, application.ErrUnauthenticated):
		r.writeError(ctx, w, http.StatusUnauthorized, errMissingCredential)
	case errors.Is(err, application.ErrUnauthorized):
		r.writeError(ctx, w, http.StatusForbidden, errRoleNotPermitted)
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, r.notFound())
	case errors.Is(err, application.ErrAlreadyExists), errors.Is(err, application.ErrConflict):
		r.writeError(ctx, w, http.StatusConflict, errors.New(application.UserMessage(err)))
	case errors.Is(err, application.ErrRateLimited):
		r.writeError(ctx, w, http.StatusTooManyRequests, errRateLimitedResponse)
	default:
		r.writeError(ctx, w, http.StatusInternalServerError, nil)
	}
}

func (r responder) notFound() error {
	if r.resource == "" {
		return errors.New(statusMessage(http.StatusNotFound))
	}
	return errors.New(r.resource + " not found")
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "you do not have permission to perform this action"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "the request conflicts with the current state of the resource"
	case http.StatusTooManyRequests:
		return "too many requests, please try again later"
	default:
		return "internal server error"
	}
}
