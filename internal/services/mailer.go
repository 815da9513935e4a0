package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email through SendGrid. Only the password-reset
// flow uses it; when no API key is configured the server runs without it and
// forgot-password requests fail with 500.
type Mailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewMailer(apiKey, fromEmail string) *Mailer {
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail("Tracker", fromEmail),
	}
}

// SendPasswordReset emails the reset link. The link expires in one hour.
func (m *Mailer) SendPasswordReset(toEmail, resetURL string) error {
	to := sgmail.NewEmail("", toEmail)
	subject := "Password Reset Request"
	plain := fmt.Sprintf("You requested a password reset. Open %s to choose a new password. The link expires in 1 hour.", resetURL)
	html := fmt.Sprintf(`<p>You requested a password reset.</p><p>Click this <a href="%s">link</a> to reset your password. This link will expire in 1 hour.</p>`, resetURL)

	message := sgmail.NewSingleEmail(m.from, subject, to, plain, html)
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected reset email: status %d", resp.StatusCode)
	}
	return nil
}
