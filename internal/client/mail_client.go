package client

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	appConfig "forum-api/internal/config"
	"forum-api/internal/metrics"
)

// Mailer sends rendered HTML messages
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTPMailer delivers mail through an SMTP relay
type SMTPMailer struct {
	addr    string
	host    string
	auth    smtp.Auth
	from    string
	metrics *metrics.Metrics
}

// NewMailer returns an SMTPMailer, or a LogMailer when no SMTP host is configured
func NewMailer(cfg *appConfig.SMTPConfig, m *metrics.Metrics, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{logger: logger}
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &SMTPMailer{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:    cfg.Host,
		auth:    auth,
		from:    from,
		metrics: m,
	}
}

// Send delivers one HTML message. smtp.SendMail has no context support, so
// cancellation only prevents the send from starting.
func (s *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, buildMessage(s.from, to, subject, html))
	if s.metrics != nil {
		s.metrics.RecordExternalAPICall("smtp:"+s.host, "SEND", 0, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer logs messages instead of sending them (local development)
type LogMailer struct {
	logger *zap.Logger
}

func (l *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	l.logger.Info("Mail delivery disabled, message not sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(html)),
	)
	return nil
}

// MockMailer records sent messages for tests
type MockMailer struct {
	SendFunc func(ctx context.Context, to, subject, html string) error
	Sent     chan SentMail
}

// SentMail is one message captured by MockMailer
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// NewMockMailer creates a MockMailer buffering up to 16 messages
func NewMockMailer() *MockMailer {
	return &MockMailer{Sent: make(chan SentMail, 16)}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, html)
	}
	m.Sent <- SentMail{To: to, Subject: subject, HTML: html}
	return nil
}

var resetPasswordTemplate = template.Must(template.New("reset-password").Parse(`<div style="font-family:Arial,sans-serif;max-width:500px;margin:0 auto;background:#fff;padding:24px 32px 32px 32px;border-radius:8px;">
  <h2 style="color:#4CAF50;margin-bottom:8px;">Reset your password</h2>
  <p style="color:#333;">Hi{{if .Username}}, <b>{{.Username}}</b>{{end}},</p>
  <p style="color:#333;">
    We received a request to reset your forum account password.
    Click the button below to set a new password. This link is valid for <b>{{.ExpireMins}} minutes</b>.
  </p>
  <div style="text-align:center;margin:30px 0;">
    <a href="{{.ResetURL}}" style="background:#4CAF50;color:#fff;text-decoration:none;padding:12px 32px;border-radius:6px;font-size:16px;display:inline-block;">Reset password</a>
  </div>
  <p style="color:#888;font-size:13px;">If you didn't request this, please ignore this email.</p>
  <hr style="margin:32px 0 18px 0;">
  <div style="color:#b6b6b6;font-size:12px;text-align:center;">&copy; {{.Year}} Forum. Please do not reply to this email.</div>
</div>`))

// ResetPasswordEmail renders the password reset message
func ResetPasswordEmail(username, resetURL string, expires time.Duration) (string, error) {
	var buf bytes.Buffer
	err := resetPasswordTemplate.Execute(&buf, struct {
		Username   string
		ResetURL   string
		ExpireMins int
		Year       int
	}{
		Username:   username,
		ResetURL:   resetURL,
		ExpireMins: int(expires.Minutes()),
		Year:       time.Now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render reset email: %w", err)
	}
	return buf.String(), nil
}
