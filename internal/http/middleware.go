package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/logging"
	"github.com/example/placement-portal/internal/security"
)

const tokenCookieName = "token"

// PrincipalResolver loads the current state of an authenticated user.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (application.Principal, error)
}

// RequestLogger installs a request scoped logger carrying the chi request id.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", ww.Status(), "duration", time.Since(start))
		})
	}
}

// Authenticate verifies the bearer token, or the token cookie when no header
// is present, and re-resolves the principal from storage.
func Authenticate(auth *jwtauth.JWTAuth, resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(defaultLogger(logger), "")
	verify := jwtauth.Verify(auth, jwtauth.TokenFromHeader, tokenFromCookie)

	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := handlerLogger(ctx, logger, "Authenticate", "")

			token, claims, err := jwtauth.FromContext(ctx)
			switch {
			case errors.Is(err, jwtauth.ErrNoTokenFound):
				responder.writeError(ctx, w, http.StatusUnauthorized, errMissingCredential)
				return
			case err != nil || token == nil:
				log.WarnContext(ctx, "token rejected", "error", err, "error_kind", "unauthenticated")
				responder.writeError(ctx, w, http.StatusUnauthorized, errInvalidCredential)
				return
			}

			claimed, err := security.PrincipalFromClaims(claims)
			if err != nil {
				log.WarnContext(ctx, "token claims rejected", "error", err, "error_kind", "unauthenticated")
				responder.writeError(ctx, w, http.StatusUnauthorized, errInvalidCredential)
				return
			}

			principal, err := resolver.ResolvePrincipal(ctx, claimed.UserID)
			if err != nil {
				log.WarnContext(ctx, "principal resolution failed", "user_id", claimed.UserID, "error", err, "error_kind", application.ErrorKind(err))
				responder.handleServiceError(ctx, w, err)
				return
			}

			ctx = ContextWithPrincipal(ctx, principal)
			ctx = logging.With(ctx, "principal_id", principal.UserID, "role", principal.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}

// RequireRole admits only principals holding one of roles.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	responder := newResponder(defaultLogger(logger), "")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal.UserID == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingCredential)
				return
			}
			if !principal.HasRole(roles...) {
				handlerLogger(r.Context(), logger, "RequireRole", "", "role", principal.Role, "allowed", roles).
					WarnContext(r.Context(), "role not permitted", "error_kind", "unauthorized")
				responder.writeError(r.Context(), w, http.StatusForbidden, errRoleNotPermitted)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit rejects callers that exceed limiter's budget for scope. Callers
// are keyed by principal when authenticated and by client address otherwise.
// Limiter failures let the request through.
func RateLimit(limiter RateLimiter, scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(defaultLogger(logger), "")

	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := rateLimitKey(scope, clientKey(r))

			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				handlerLogger(ctx, logger, "RateLimit", scope).ErrorContext(ctx, "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				handlerLogger(ctx, logger, "RateLimit", scope, "key", key).WarnContext(ctx, "rate limit exceeded", "error_kind", "rate_limited")
				responder.handleServiceError(ctx, w, application.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if principal, ok := PrincipalFromContext(r.Context()); ok && principal.UserID != "" {
		return "user:" + principal.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
