package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers understood by the persistence layer.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the placement service.
type Config struct {
	HTTPPort     int
	DBDriver     string
	DatabaseDSN  string
	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool
	AppBaseURL   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailTimeout  time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	NotifyQueue       string
	NotifyMaxAttempts int
	LoginRateLimit    int
	ApplyRateLimit    int
	RateLimitWindow   time.Duration

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// OutboxEnabled reports whether notifications are buffered through Redis.
func (c Config) OutboxEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// MailEnabled reports whether SMTP credentials were supplied.
func (c Config) MailEnabled() bool {
	return strings.TrimSpace(c.SMTPUsername) != "" && strings.TrimSpace(c.SMTPPassword) != ""
}

// Load reads an optional .env file and parses configuration values from the
// process environment. Variables already present in the environment win over
// values from the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration values from the current process environment.
//
// Defaults are applied for optional fields. Every missing and every invalid
// variable is reported in a single error.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPPort:          3001,
		DBDriver:          DriverSQLite,
		DatabaseDSN:       "file:placement.db",
		JWTTTL:            24 * time.Hour,
		CookieSecure:      true,
		AppBaseURL:        "http://localhost:5173",
		SMTPHost:          "smtp.gmail.com",
		SMTPPort:          587,
		MailTimeout:       10 * time.Second,
		NotifyQueue:       "placement:notifications",
		NotifyMaxAttempts: 5,
		LoginRateLimit:    10,
		ApplyRateLimit:    20,
		RateLimitWindow:   time.Minute,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	parseInt := func(key string, min int, dst *int) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < min {
			invalid = append(invalid, key)
			return
		}
		*dst = n
	}
	parseDuration := func(key string, dst *time.Duration) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return
		}
		*dst = d
	}
	parseString := func(key string, dst *string) {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*dst = value
		}
	}

	parseInt("PLACEMENT_HTTP_PORT", 1, &cfg.HTTPPort)

	if driver := strings.ToLower(strings.TrimSpace(os.Getenv("PLACEMENT_DB_DRIVER"))); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres:
			cfg.DBDriver = driver
		default:
			invalid = append(invalid, "PLACEMENT_DB_DRIVER")
		}
	}
	parseString("PLACEMENT_DATABASE_DSN", &cfg.DatabaseDSN)

	if secret := strings.TrimSpace(os.Getenv("PLACEMENT_JWT_SECRET")); secret == "" {
		missing = append(missing, "PLACEMENT_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}
	parseDuration("PLACEMENT_JWT_TTL", &cfg.JWTTTL)

	if value := strings.TrimSpace(os.Getenv("PLACEMENT_COOKIE_SECURE")); value != "" {
		secure, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "PLACEMENT_COOKIE_SECURE")
		} else {
			cfg.CookieSecure = secure
		}
	}
	parseString("PLACEMENT_APP_BASE_URL", &cfg.AppBaseURL)
	cfg.AppBaseURL = strings.TrimRight(cfg.AppBaseURL, "/")

	parseString("PLACEMENT_SMTP_HOST", &cfg.SMTPHost)
	parseInt("PLACEMENT_SMTP_PORT", 1, &cfg.SMTPPort)
	parseString("PLACEMENT_SMTP_USERNAME", &cfg.SMTPUsername)
	cfg.SMTPPassword = os.Getenv("PLACEMENT_SMTP_PASSWORD")
	parseString("PLACEMENT_MAIL_FROM", &cfg.MailFrom)
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUsername
	}
	parseDuration("PLACEMENT_MAIL_TIMEOUT", &cfg.MailTimeout)

	parseString("PLACEMENT_REDIS_ADDR", &cfg.RedisAddr)
	cfg.RedisPassword = os.Getenv("PLACEMENT_REDIS_PASSWORD")
	parseInt("PLACEMENT_REDIS_DB", 0, &cfg.RedisDB)
	parseString("PLACEMENT_NOTIFY_QUEUE", &cfg.NotifyQueue)
	parseInt("PLACEMENT_NOTIFY_MAX_ATTEMPTS", 1, &cfg.NotifyMaxAttempts)
	parseInt("PLACEMENT_LOGIN_RATE_LIMIT", 0, &cfg.LoginRateLimit)
	parseInt("PLACEMENT_APPLY_RATE_LIMIT", 0, &cfg.ApplyRateLimit)
	parseDuration("PLACEMENT_RATE_LIMIT_WINDOW", &cfg.RateLimitWindow)

	parseString("PLACEMENT_BOOTSTRAP_ADMIN_EMAIL", &cfg.BootstrapAdminEmail)
	cfg.BootstrapAdminPassword = os.Getenv("PLACEMENT_BOOTSTRAP_ADMIN_PASSWORD")
	if cfg.BootstrapAdminEmail != "" && len(cfg.BootstrapAdminPassword) < 6 {
		invalid = append(invalid, "PLACEMENT_BOOTSTRAP_ADMIN_PASSWORD")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
