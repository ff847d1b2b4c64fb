// Package notify delivers bill reminders by email.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"

	"ledger/internal/log"
)

// Config is the SMTP relay used for outgoing mail.
type Config struct {
	Host        string
	Port        string
	Username    string
	Password    string
	SenderEmail string
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg  Config
	send func(e *email.Email, addr string, a smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg Config) *Sender {
	return &Sender{
		cfg: cfg,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

// Send mails a plain-text message. The relay call itself cannot be
// cancelled; ctx is checked before dialing.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(reminderBody(body))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		slog.ErrorContext(ctx, "Failed to send email", log.FieldComponent, log.ComponentNotify, "subject", subject, log.FieldError, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.InfoContext(ctx, "Email sent", log.FieldComponent, log.ComponentNotify, "subject", subject)
	return nil
}

func reminderBody(message string) string {
	return "Hello,\n\n" + message + "\n\nYou can review your bills in the ledger.\n"
}
