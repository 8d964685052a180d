package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
)

// Mailer sends compliance update notifications with PDF attachments
// over SMTP. It is an optional capability; when unconfigured, passes
// complete without notification.
type Mailer struct {
	config *config.SMTPConfig
	// send is swapped in tests to avoid a real SMTP dialer.
	send func(m *gomail.Message) error
}

func NewMailer(cfg *config.SMTPConfig) *Mailer {
	m := &Mailer{config: cfg}
	m.send = func(msg *gomail.Message) error {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
		return d.DialAndSend(msg)
	}
	return m
}

// Available reports whether SMTP is configured.
func (m *Mailer) Available() bool {
	return m.config.Host != "" && m.config.Sender != ""
}

// SendComplianceUpdate mails the generated artifacts to the recipient.
// Attachment paths that do not exist or are empty files are skipped;
// sending with zero valid attachments is refused.
func (m *Mailer) SendComplianceUpdate(recipient, contractTitle, regulationName, version string, attachments []string) error {
	if !m.Available() {
		return ErrMailerUnavailable
	}
	if recipient == "" {
		return fmt.Errorf("no recipient configured")
	}

	valid := make([]string, 0, len(attachments))
	for _, p := range attachments {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || info.Size() == 0 {
			slog.Warn("skipping invalid or empty attachment", "path", p)
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return ErrNoAttachments
	}

	names := make([]string, 0, len(valid))
	for _, p := range valid {
		names = append(names, filepath.Base(p))
	}

	body := fmt.Sprintf(`Hello,

This is an automated notification from your regulatory compliance checker.

A compliance update was triggered for:
Contract: %s
Regulation: %s (Version %s)

We have analyzed the contract and applied necessary rectifications.

Attached Documents:
-------------------
%s

1. Compliance Analysis Report: Explains the risks and missing clauses.
2. Rectified Contract: The updated legal document (if auto-fix was successful).

Best regards,
Compliance Bot
`, contractTitle, regulationName, version, strings.Join(names, "\n"))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.Sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", fmt.Sprintf("Regulatory Update: '%s' (Reg: %s)", contractTitle, regulationName))
	msg.SetBody("text/plain", body)
	for _, p := range valid {
		msg.Attach(p)
	}

	if err := m.send(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("compliance update sent", "recipient", recipient, "attachments", len(valid))
	return nil
}
