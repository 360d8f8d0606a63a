// Package mailer delivers transactional email over SMTP. Delivery is
// best-effort: callers that issue reset tokens must not fail when the mail
// does not go out.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/orthoflow/clinic-api/internal/config"
)

type Mailer struct {
	cfg         config.SMTPConfig
	frontendURL string
	log         *zap.Logger
}

func New(cfg config.SMTPConfig, frontendURL string, log *zap.Logger) *Mailer {
	return &Mailer{
		cfg:         cfg,
		frontendURL: frontendURL,
		log:         log,
	}
}

// SendPasswordResetEmail returns false on any failure; it never errors.
func (m *Mailer) SendPasswordResetEmail(toAddress, rawToken, displayName string) bool {
	if !m.cfg.Configured() {
		m.log.Warn("smtp not configured, skipping reset email")
		return false
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, rawToken)

	msg := m.buildMessage(
		toAddress,
		"Password Recovery - OrthoFlow",
		resetTextBody(displayName, resetURL),
		resetHTMLBody(displayName, resetURL),
	)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{toAddress}, msg); err != nil {
		m.log.Warn("failed to send reset email", zap.String("to", toAddress), zap.Error(err))
		return false
	}

	return true
}

func (m *Mailer) buildMessage(to, subject, textBody, htmlBody string) []byte {
	const boundary = "orthoflow-alt"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func resetTextBody(name, resetURL string) string {
	return fmt.Sprintf(`OrthoFlow - Password Recovery

Hello %s,

We received a request to reset the password of your OrthoFlow account.

To choose a new password, open the link below:
%s

This link is valid for 1 hour. If you did not request this change, ignore
this message and never share the link with anyone.

This is an automated email, do not reply.`, name, resetURL)
}

func resetHTMLBody(name, resetURL string) string {
	return fmt.Sprintf(`<html><body>
<h2>OrthoFlow - Password Recovery</h2>
<p>Hello <strong>%s</strong>,</p>
<p>We received a request to reset the password of your OrthoFlow account.</p>
<p><a href="%s">Reset password</a></p>
<p>This link is valid for <strong>1 hour</strong>. If you did not request
this change, ignore this message and never share the link with anyone.</p>
<p>This is an automated email, do not reply.</p>
</body></html>`, name, resetURL)
}
