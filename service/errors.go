package service

import "errors"

var (
	// ErrNoAttachments means the mailer was asked to send with zero valid attachments.
	ErrNoAttachments = errors.New("no valid attachments to send")
	// ErrMailerUnavailable means SMTP is not configured.
	ErrMailerUnavailable = errors.New("mailer not configured")
)
