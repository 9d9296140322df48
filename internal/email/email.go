// Package email delivers rendered newsletters and reply mails over SMTP.
package email

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"newsly/internal/config"
	"newsly/internal/core"
	"newsly/internal/logger"
)

// Mailer sends mail through the configured SMTP relay. Without an SMTP host
// it runs in log-only mode: sends succeed but only produce a log line, which
// is the demo behavior for local setups.
type Mailer struct {
	cfg config.Email
	log *slog.Logger
}

// New creates a Mailer from email configuration.
func New(cfg config.Email) *Mailer {
	return &Mailer{cfg: cfg, log: logger.Get()}
}

// Enabled reports whether a real SMTP relay is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.SMTPHost != ""
}

// SendNewsletter delivers a rendered issue to a recipient.
func (m *Mailer) SendNewsletter(to string, content core.NewsletterContent) error {
	return m.send(to, content.Subject, "text/html", content.Content)
}

// SendReply delivers a plain-text reply mail.
func (m *Mailer) SendReply(to, subject, body string) error {
	return m.send(to, subject, "text/plain", body)
}

func (m *Mailer) send(to, subject, contentType, body string) error {
	if !m.Enabled() {
		m.log.Info("SMTP not configured, logging mail instead of sending",
			"to", to, "subject", subject, "bytes", len(body))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody(contentType, body)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.log.Info("Mail sent", "to", to, "subject", subject)
	return nil
}
