package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer records sends instead of delivering them. Used when no SMTP
// server is configured and as a substitutable fake in tests.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendVerificationEmail(_ context.Context, toEmail, username, token string, kind Kind) error {
	logrus.WithFields(logrus.Fields{
		"to":       toEmail,
		"username": username,
		"kind":     string(kind),
	}).Info("Verification email suppressed (no SMTP configured)")
	_ = token
	return nil
}

func (m *LogMailer) SendPasswordChangedNotice(_ context.Context, toEmail, username string) error {
	logrus.WithFields(logrus.Fields{
		"to":       toEmail,
		"username": username,
	}).Info("Password change notice suppressed (no SMTP configured)")
	return nil
}
