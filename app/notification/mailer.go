// Package notification is the outbound email port. The verification flow
// depends on the Mailer interface only; the SMTP implementation lives here
// so tests can substitute a fake.
package notification

import "context"

type Kind string

const (
	KindRegistration   Kind = "registration"
	KindPasswordChange Kind = "password_change"
)

type Mailer interface {
	// SendVerificationEmail delivers a verification link for either the
	// registration or the password-change track.
	SendVerificationEmail(ctx context.Context, toEmail, username, token string, kind Kind) error
	// SendPasswordChangedNotice tells the user their password was changed.
	SendPasswordChangedNotice(ctx context.Context, toEmail, username string) error
}
