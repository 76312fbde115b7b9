// Package mailer delivers verification codes over SMTP. Mail is best-effort:
// callers dispatch sends in a goroutine and log failures instead of surfacing
// them.
package mailer

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends HTML mail through a single SMTP account.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and
// SMTP_FROM from the environment.
func NewFromEnv() *Mailer {
	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			port = p
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}
	return &Mailer{
		dialer: gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD")),
		from:   from,
	}
}

// SendVerificationCode mails the activation code issued at registration.
func (m *Mailer) SendVerificationCode(to, username, code string) error {
	subject := "Registration successful! Welcome, " + username
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; padding: 20px;">
<h2>Welcome, <strong>%s</strong></h2>
<p>Your account has been created. Before using the service, please verify it with the code below.</p>
<p style="font-size: 24px; letter-spacing: 4px;"><strong>%s</strong></p>
<p>The code expires in two hours.</p>
</body></html>`, username, code)
	return m.send(to, subject, body)
}

// SendPasswordCode mails the code used to set a new password.
func (m *Mailer) SendPasswordCode(to, username, code string) error {
	subject := "Password reset code"
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; padding: 20px;">
<h2>Hello, <strong>%s</strong></h2>
<p>Use the code below to set a new password.</p>
<p style="font-size: 24px; letter-spacing: 4px;"><strong>%s</strong></p>
</body></html>`, username, code)
	return m.send(to, subject, body)
}

// SendDeliveryCode mails the one-time delivery code to the distributor when a
// driver picks the cargo up.
func (m *Mailer) SendDeliveryCode(to, username, code string, cargoID uint) error {
	subject := fmt.Sprintf("Cargo #%d has been picked up", cargoID)
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; padding: 20px;">
<h2>Hello, <strong>%s</strong></h2>
<p>Your cargo #%d was picked up by a driver. Share the code below with the recipient; the driver needs it to confirm delivery.</p>
<p style="font-size: 24px; letter-spacing: 4px;"><strong>%s</strong></p>
</body></html>`, username, cargoID, code)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
