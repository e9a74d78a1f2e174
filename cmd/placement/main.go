package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/config"
	httptransport "github.com/example/placement-portal/internal/http"
	"github.com/example/placement-portal/internal/logging"
	"github.com/example/placement-portal/internal/notification"
	"github.com/example/placement-portal/internal/persistence/sqlstore"
	"github.com/example/placement-portal/internal/security"
)

const (
	bootstrapAdminName = "Administrator"
	rateLimitPrefix    = "placement:ratelimit:"
	requestTimeout     = 25 * time.Second
)

func main() {
	logger := logging.New(os.Stdout, os.Getenv("PLACEMENT_LOG_FORMAT"), slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("placement API stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	storage, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.DBDriver), cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.OutboxEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.Error("failed to close redis client", "error", cerr)
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
	}

	portal, err := newApp(cfg, storage, redisClient, logger)
	if err != nil {
		return err
	}

	if cfg.BootstrapAdminEmail != "" {
		if _, err := portal.auth.EnsureAdmin(ctx, bootstrapAdminName, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	if portal.worker != nil {
		stopWorker := startBackground(ctx, portal.worker)
		defer stopWorker()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           portal.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("placement API listening",
		"addr", server.Addr,
		"db_driver", cfg.DBDriver,
		"outbox", cfg.OutboxEnabled(),
		"mail", cfg.MailEnabled(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}

type app struct {
	handler http.Handler
	auth    *application.AuthService
	// worker is nil when notifications are delivered inline.
	worker *notification.Worker
}

func newApp(cfg config.Config, storage *sqlstore.ConnectionPool, redisClient *redis.Client, logger *slog.Logger) (*app, error) {
	now := time.Now
	idGenerator := uuid.NewString

	tokens, err := security.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to configure tokens: %w", err)
	}

	userRepo := newUserRepositoryAdapter(sqlstore.NewUserRepository(storage))
	credentialStore := newCredentialStoreAdapter(sqlstore.NewUserRepository(storage))
	companyRepo := newCompanyRepositoryAdapter(sqlstore.NewCompanyRepository(storage))
	studentRepo := newStudentRepositoryAdapter(sqlstore.NewStudentRepository(storage))
	driveRepo := newDriveRepositoryAdapter(sqlstore.NewDriveRepository(storage))
	jobRepo := newJobRepositoryAdapter(sqlstore.NewJobRepository(storage))
	applicationRepo := newApplicationRepositoryAdapter(sqlstore.NewApplicationRepository(storage))
	interviewRepo := newInterviewRepositoryAdapter(sqlstore.NewInterviewRepository(storage))
	reportRepo := newReportRepositoryAdapter(sqlstore.NewReportRepository(storage))

	var mailer notification.Mailer = notification.LogMailer{Logger: logger}
	if cfg.MailEnabled() {
		mailer = notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	var (
		queue  notification.Queue
		worker *notification.Worker
	)
	if redisClient != nil {
		redisQueue := notification.NewRedisQueue(redisClient, cfg.NotifyQueue)
		queue = redisQueue
		worker = notification.NewWorker(redisQueue, mailer, cfg.NotifyMaxAttempts, cfg.MailTimeout, logger)
	}
	dispatcher := notification.NewDispatcher(mailer, queue, cfg.MailTimeout, logger)
	composer := application.NotificationComposer{BaseURL: cfg.AppBaseURL}

	userService := application.NewUserServiceWithLogger(userRepo, now, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, userRepo, tokens, nil, nil, idGenerator, now, logger)
	companyService := application.NewCompanyServiceWithLogger(companyRepo, userRepo, idGenerator, now, logger)
	studentService := application.NewStudentServiceWithLogger(studentRepo, userRepo, idGenerator, now, logger)
	driveService := application.NewDriveServiceWithLogger(driveRepo, idGenerator, now, logger)
	jobService := application.NewJobServiceWithLogger(jobRepo, driveRepo, companyRepo, idGenerator, now, logger)
	applicationService := application.NewApplicationServiceWithLogger(applicationRepo, jobRepo, userRepo, dispatcher, composer, idGenerator, now, logger)
	interviewService := application.NewInterviewServiceWithLogger(interviewRepo, jobRepo, userRepo, companyRepo, dispatcher, composer, idGenerator, now, logger)
	reportService := application.NewReportServiceWithLogger(reportRepo, driveRepo, idGenerator, now, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(authService, userService, cfg.CookieSecure, logger),
		Companies:      httptransport.NewCompanyHandler(companyService, logger),
		Students:       httptransport.NewStudentHandler(studentService, logger),
		Drives:         httptransport.NewDriveHandler(driveService, logger),
		Jobs:           httptransport.NewJobHandler(jobService, logger),
		Applications:   httptransport.NewApplicationHandler(applicationService, logger),
		Interviews:     httptransport.NewInterviewHandler(interviewService, logger),
		Reports:        httptransport.NewReportHandler(reportService, now, logger),
		JWTAuth:        tokens.JWTAuth(),
		Principals:     userService,
		LoginLimiter:   newRateLimiter(redisClient, cfg.LoginRateLimit, cfg.RateLimitWindow),
		ApplyLimiter:   newRateLimiter(redisClient, cfg.ApplyRateLimit, cfg.RateLimitWindow),
		RequestTimeout: requestTimeout,
		Logger:         logger,
	})

	return &app{handler: handler, auth: authService, worker: worker}, nil
}

type backgroundRunner interface {
	Run(ctx context.Context)
}

// startBackground runs r in its own goroutine. The returned stop function
// cancels r and blocks until Run has returned.
func startBackground(ctx context.Context, r backgroundRunner) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// newRateLimiter returns nil when limit is zero so the router skips the
// middleware entirely.
func newRateLimiter(client *redis.Client, limit int, window time.Duration) httptransport.RateLimiter {
	if limit <= 0 {
		return nil
	}
	if client != nil {
		return httptransport.NewRedisRateLimiter(client, rateLimitPrefix, limit, window)
	}
	return httptransport.NewMemoryRateLimiter(limit, window, time.Now)
}
