// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Mailer sends emails via SMTP.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	log      *zap.Logger
}

// Config holds the configuration for creating a Mailer.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Enabled reports whether enough is configured to send mail.
func (c Config) Enabled() bool {
	return c.Host != "" && c.Port > 0 && c.From != ""
}

// New creates a new Mailer with the given configuration.
func New(cfg Config, log *zap.Logger) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	if cfg.User == "" {
		d.Auth = nil
	}
	return &Mailer{
		dialer:   d,
		from:     cfg.From,
		fromName: cfg.FromName,
		log:      log,
	}
}

// Email represents an email to be sent.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Send sends an email. If HTMLBody is set the message is multipart with both
// plain text and HTML versions.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	if m.fromName != "" {
		msg.SetAddressHeader("From", m.from, m.fromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.TextBody)
	if email.HTMLBody != "" {
		msg.AddAlternative("text/html", email.HTMLBody)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("failed to send email",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}
