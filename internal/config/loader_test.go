package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"PLACEMENT_HTTP_PORT",
	"PLACEMENT_DB_DRIVER",
	"PLACEMENT_DATABASE_DSN",
	"PLACEMENT_JWT_SECRET",
	"PLACEMENT_JWT_TTL",
	"PLACEMENT_COOKIE_SECURE",
	"PLACEMENT_APP_BASE_URL",
	"PLACEMENT_SMTP_HOST",
	"PLACEMENT_SMTP_PORT",
	"PLACEMENT_SMTP_USERNAME",
	"PLACEMENT_SMTP_PASSWORD",
	"PLACEMENT_MAIL_FROM",
	"PLACEMENT_MAIL_TIMEOUT",
	"PLACEMENT_REDIS_ADDR",
	"PLACEMENT_REDIS_PASSWORD",
	"PLACEMENT_REDIS_DB",
	"PLACEMENT_NOTIFY_QUEUE",
	"PLACEMENT_NOTIFY_MAX_ATTEMPTS",
	"PLACEMENT_LOGIN_RATE_LIMIT",
	"PLACEMENT_APPLY_RATE_LIMIT",
	"PLACEMENT_RATE_LIMIT_WINDOW",
	"PLACEMENT_BOOTSTRAP_ADMIN_EMAIL",
	"PLACEMENT_BOOTSTRAP_ADMIN_PASSWORD",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		// Setenv registers restoration of the previous value on cleanup.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "super-secret")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv returned error: %v", err)
		}

		if cfg.HTTPPort != 3001 {
			t.Fatalf("expected default HTTP port 3001, got %d", cfg.HTTPPort)
		}
		if cfg.DBDriver != DriverSQLite {
			t.Fatalf("expected sqlite driver by default, got %q", cfg.DBDriver)
		}
		if cfg.JWTTTL != 24*time.Hour {
			t.Fatalf("expected 24h token lifetime, got %v", cfg.JWTTTL)
		}
		if cfg.SMTPHost != "smtp.gmail.com" || cfg.SMTPPort != 587 {
			t.Fatalf("unexpected smtp defaults: %s:%d", cfg.SMTPHost, cfg.SMTPPort)
		}
		if cfg.OutboxEnabled() {
			t.Fatalf("expected outbox to be disabled without redis address")
		}
		if cfg.MailEnabled() {
			t.Fatalf("expected mail to be disabled without credentials")
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)

		_, err := FromEnv()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: PLACEMENT_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports every invalid variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "secret")
		t.Setenv("PLACEMENT_HTTP_PORT", "abc")
		t.Setenv("PLACEMENT_DB_DRIVER", "oracle")
		t.Setenv("PLACEMENT_JWT_TTL", "-1h")

		_, err := FromEnv()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{"PLACEMENT_HTTP_PORT", "PLACEMENT_DB_DRIVER", "PLACEMENT_JWT_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in error, got %q", key, err.Error())
			}
		}
	})

	t.Run("parses overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "secret")
		t.Setenv("PLACEMENT_HTTP_PORT", "9090")
		t.Setenv("PLACEMENT_DB_DRIVER", "POSTGRES")
		t.Setenv("PLACEMENT_DATABASE_DSN", "postgres://localhost/placement")
		t.Setenv("PLACEMENT_COOKIE_SECURE", "false")
		t.Setenv("PLACEMENT_APP_BASE_URL", "https://portal.example.com/")
		t.Setenv("PLACEMENT_SMTP_USERNAME", "mailer@example.com")
		t.Setenv("PLACEMENT_SMTP_PASSWORD", "pw")
		t.Setenv("PLACEMENT_REDIS_ADDR", "localhost:6379")
		t.Setenv("PLACEMENT_NOTIFY_MAX_ATTEMPTS", "3")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.DBDriver != DriverPostgres {
			t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
		}
		if cfg.CookieSecure {
			t.Fatalf("expected insecure cookies")
		}
		if cfg.AppBaseURL != "https://portal.example.com" {
			t.Fatalf("expected trailing slash trimmed, got %q", cfg.AppBaseURL)
		}
		if cfg.MailFrom != "mailer@example.com" {
			t.Fatalf("expected mail from to default to smtp username, got %q", cfg.MailFrom)
		}
		if !cfg.OutboxEnabled() || !cfg.MailEnabled() {
			t.Fatalf("expected outbox and mail to be enabled")
		}
		if cfg.NotifyMaxAttempts != 3 {
			t.Fatalf("expected 3 attempts, got %d", cfg.NotifyMaxAttempts)
		}
	})

	t.Run("rejects short bootstrap password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "secret")
		t.Setenv("PLACEMENT_BOOTSTRAP_ADMIN_EMAIL", "admin@example.com")
		t.Setenv("PLACEMENT_BOOTSTRAP_ADMIN_PASSWORD", "123")

		if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "PLACEMENT_BOOTSTRAP_ADMIN_PASSWORD") {
			t.Fatalf("expected bootstrap password error, got %v", err)
		}
	})
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "PLACEMENT_JWT_SECRET=from-file\nPLACEMENT_HTTP_PORT=4000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.JWTSecret != "from-file" || cfg.HTTPPort != 4000 {
		t.Fatalf("expected values from env file, got secret=%q port=%d", cfg.JWTSecret, cfg.HTTPPort)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLACEMENT_JWT_SECRET", "secret")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}
