package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/gomail.v2"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
)

func newTestMailer(t *testing.T) (*Mailer, *[]*gomail.Message) {
	t.Helper()
	var sent []*gomail.Message
	m := NewMailer(&config.SMTPConfig{
		Host:   "smtp.example.com",
		Port:   587,
		Sender: "bot@example.com",
	})
	m.send = func(msg *gomail.Message) error {
		sent = append(sent, msg)
		return nil
	}
	return m, &sent
}

func writeAttachment(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestMailerAvailable(t *testing.T) {
	m := NewMailer(&config.SMTPConfig{})
	if m.Available() {
		t.Error("Unconfigured mailer should be unavailable")
	}

	m = NewMailer(&config.SMTPConfig{Host: "h", Sender: "s@x"})
	if !m.Available() {
		t.Error("Configured mailer should be available")
	}
}

func TestSendComplianceUpdate(t *testing.T) {
	m, sent := newTestMailer(t)
	dir := t.TempDir()

	a1 := writeAttachment(t, dir, "suggestions.pdf", "pdf bytes")
	a2 := writeAttachment(t, dir, "rectified.pdf", "pdf bytes")

	err := m.SendComplianceUpdate("legal@example.com", "nda", "GDPR + Indian Data Laws", "20260115100000", []string{a1, a2})
	if err != nil {
		t.Fatalf("SendComplianceUpdate failed: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("Expected 1 message sent, got %d", len(*sent))
	}
}

func TestSendSkipsMissingAndEmptyAttachments(t *testing.T) {
	m, sent := newTestMailer(t)
	dir := t.TempDir()

	present := writeAttachment(t, dir, "present.pdf", "pdf bytes")
	empty := writeAttachment(t, dir, "empty.pdf", "")
	missing := filepath.Join(dir, "missing.pdf")

	err := m.SendComplianceUpdate("legal@example.com", "nda", "GDPR", "v1", []string{missing, empty, present})
	if err != nil {
		t.Fatalf("Expected send with the one valid attachment, got %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(*sent))
	}
}

func TestSendRefusesZeroValidAttachments(t *testing.T) {
	m, sent := newTestMailer(t)
	dir := t.TempDir()

	empty := writeAttachment(t, dir, "empty.pdf", "")

	err := m.SendComplianceUpdate("legal@example.com", "nda", "GDPR", "v1", []string{empty, filepath.Join(dir, "nope.pdf")})
	if !errors.Is(err, ErrNoAttachments) {
		t.Errorf("Expected ErrNoAttachments, got %v", err)
	}
	if len(*sent) != 0 {
		t.Error("Mailer must never be invoked with zero valid attachments")
	}
}

func TestSendUnavailableMailer(t *testing.T) {
	m := NewMailer(&config.SMTPConfig{})
	err := m.SendComplianceUpdate("legal@example.com", "nda", "GDPR", "v1", nil)
	if !errors.Is(err, ErrMailerUnavailable) {
		t.Errorf("Expected ErrMailerUnavailable, got %v", err)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	m, _ := newTestMailer(t)
	dir := t.TempDir()
	a := writeAttachment(t, dir, "a.pdf", "x")

	if err := m.SendComplianceUpdate("", "nda", "GDPR", "v1", []string{a}); err == nil {
		t.Error("Expected error for empty recipient")
	}
}
