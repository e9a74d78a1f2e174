package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

const defaultRequestTimeout = 60 * time.Second

type RouterConfig struct {
	Auth         *AuthHandler
	Companies    *CompanyHandler
	Students     *StudentHandler
	Drives       *DriveHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Interviews   *InterviewHandler
	Reports      *ReportHandler

	JWTAuth    *jwtauth.JWTAuth
	Principals PrincipalResolver

	// LoginLimiter guards register and login; ApplyLimiter guards
	// application submissions. Nil disables the limit.
	LoginLimiter RateLimiter
	ApplyLimiter RateLimiter

	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		newResponder(logger, "").writeData(r.Context(), w, http.StatusOK, "ok", nil)
	})

	authenticate := Authenticate(cfg.JWTAuth, cfg.Principals, logger)
	var loginLimit, applyLimit func(http.Handler) http.Handler
	if cfg.LoginLimiter != nil {
		loginLimit = RateLimit(cfg.LoginLimiter, "login", logger)
	}
	if cfg.ApplyLimiter != nil {
		applyLimit = RateLimit(cfg.ApplyLimiter, "apply", logger)
	}

	r.Route("/api/v1", func(v1 chi.Router) {
		if cfg.Auth != nil {
			v1.Route("/auth", func(ar chi.Router) {
				cfg.Auth.RegisterRoutes(ar, authenticate, loginLimit)
			})
		}

		v1.Group(func(private chi.Router) {
			private.Use(authenticate)

			if cfg.Companies != nil {
				private.Route("/company", cfg.Companies.RegisterRoutes)
			}
			if cfg.Students != nil {
				private.Route("/student", cfg.Students.RegisterRoutes)
			}
			if cfg.Drives != nil {
				private.Route("/placementDrive", cfg.Drives.RegisterRoutes)
			}
			if cfg.Jobs != nil {
				private.Route("/job", cfg.Jobs.RegisterRoutes)
			}
			if cfg.Applications != nil {
				private.Route("/application", func(ar chi.Router) {
					cfg.Applications.RegisterRoutes(ar, applyLimit)
				})
			}
			if cfg.Interviews != nil {
				private.Route("/interview", cfg.Interviews.RegisterRoutes)
			}
			if cfg.Reports != nil {
				private.Route("/report", cfg.Reports.RegisterRoutes)
			}
		})
	})

	return r
}
