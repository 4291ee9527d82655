package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/posturease/ms-go-account/config"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #007AFF; text-align: center;">PosturEase</h1>
    <div style="background-color: #f9f9f9; padding: 30px; border-radius: 10px;">
      <h2 style="color: #007AFF;">{{.Heading}}</h2>
      <p>Hi {{.Username}},</p>
      <p>{{.Intro}}</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.URL}}" style="background-color: #007AFF; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px;">{{.Action}}</a>
      </div>
      <p>If the button doesn't work, copy and paste this link into your browser:</p>
      <p style="word-break: break-all; color: #666;">{{.URL}}</p>
      <p>{{.Expiry}}</p>
      <p>{{.IgnoreNote}}</p>
    </div>
  </div>
</body>
</html>`))

var changedNoticeTemplate = template.Must(template.New("changed").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #007AFF; text-align: center;">PosturEase</h1>
    <div style="background-color: #f9f9f9; padding: 30px; border-radius: 10px;">
      <h2 style="color: #34C759;">Password Changed Successfully</h2>
      <p>Hi {{.Username}},</p>
      <p>Your PosturEase password has been successfully changed.</p>
      <p>If you did not make this change, please contact our support team immediately.</p>
    </div>
  </div>
</body>
</html>`))

// SMTPMailer delivers mail over an implicit-TLS SMTP connection.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	baseURL string
}

func NewSMTPMailer(cfg config.SMTPConfig, baseURL string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, baseURL: baseURL}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, toEmail, username, token string, kind Kind) error {
	data := struct {
		Username, Heading, Intro, URL, Action, Expiry, IgnoreNote string
	}{Username: username}

	var subject string
	switch kind {
	case KindPasswordChange:
		subject = "PosturEase - Password Change Verification"
		data.Heading = "Password Change Request"
		data.Intro = "We received a request to change your password. To proceed, click the button below:"
		data.URL = fmt.Sprintf("%s/verify-password-change?token=%s", m.baseURL, token)
		data.Action = "Change Password"
		data.Expiry = "This verification link will expire in 1 hour."
		data.IgnoreNote = "If you didn't request a password change, please ignore this email and your password will remain unchanged."
	default:
		subject = "PosturEase - Verify Your Email Address"
		data.Heading = "Welcome to PosturEase!"
		data.Intro = "Thank you for registering with PosturEase! To complete your registration, please verify your email address by clicking the button below:"
		data.URL = fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
		data.Action = "Verify Email Address"
		data.Expiry = "This verification link will expire in 24 hours."
		data.IgnoreNote = "If you didn't create an account with PosturEase, please ignore this email."
	}

	var body bytes.Buffer
	if err := verificationTemplate.Execute(&body, data); err != nil {
		return err
	}

	if err := m.send(ctx, toEmail, subject, body.Bytes()); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"to": toEmail, "kind": string(kind)}).Info("Verification email sent")
	return nil
}

func (m *SMTPMailer) SendPasswordChangedNotice(ctx context.Context, toEmail, username string) error {
	var body bytes.Buffer
	data := struct{ Username string }{Username: username}
	if err := changedNoticeTemplate.Execute(&body, data); err != nil {
		return err
	}

	if err := m.send(ctx, toEmail, "PosturEase - Password Changed Successfully", body.Bytes()); err != nil {
		return err
	}
	logrus.WithField("to", toEmail).Info("Password change notification sent")
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, toEmail, subject string, htmlBody []byte) error {
	addr := net.JoinHostPort(m.cfg.Server, strconv.Itoa(m.cfg.Port))

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: m.cfg.Server}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, m.cfg.Server)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.FromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(htmlBody)

	if _, err := w.Write(msg.Bytes()); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
