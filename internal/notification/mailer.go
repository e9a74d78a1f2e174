package notification

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/application"
)

// Mailer delivers a rendered notification.
type Mailer interface {
	Send(ctx context.Context, notification application.Notification) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPConfig holds the relay settings used by SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
	now      func() time.Time
}

// NewSMTPMailer constructs a mailer for cfg. From defaults to the username.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail, now: time.Now}
}

// Send writes the message to the relay. The context bounds how long the
// caller waits; an in-flight SMTP exchange is not interrupted.
func (m *SMTPMailer) Send(ctx context.Context, n application.Notification) error {
	if m == nil || m.sendMail == nil {
		return fmt.Errorf("smtp mailer not configured")
	}
	if strings.TrimSpace(n.To) == "" {
		return fmt.Errorf("notification %s has no recipient", n.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.cfg.From, n, m.now())
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- m.sendMail(addr, auth, m.cfg.From, []string{n.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", n.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, n application.Notification, now time.Time) []byte {
	var b bytes.Buffer
	writeHeader := func(key, value string) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	writeHeader("From", from)
	writeHeader("To", n.To)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", n.Subject))
	writeHeader("Date", now.Format(time.RFC1123Z))
	if n.ID != "" {
		domain := "placement.local"
		if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
			domain = from[at+1:]
		}
		writeHeader("Message-ID", "<"+n.ID+"@"+domain+">")
	}
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/plain; charset="utf-8"`)
	writeHeader("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(n.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.Bytes()
}

// LogMailer records notifications in the log instead of sending them. It is
// used when no SMTP credentials are configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, n application.Notification) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail delivery disabled; notification logged",
		"notification_id", n.ID,
		"notification_kind", string(n.Kind),
		"to", n.To,
		"subject", n.Subject,
	)
	return nil
}
