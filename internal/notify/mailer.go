// Package notify delivers rendered receipts to the client's email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	mail "github.com/wneessen/go-mail"
)

const attachmentName = "receipt.pdf"

// Config holds SMTP connection and message settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
	Body     string
}

// Mailer sends receipt documents over SMTP with STARTTLS.
type Mailer struct {
	cfg Config
	log *slog.Logger
}

// NewMailer creates a Mailer with the given SMTP settings.
func NewMailer(cfg Config, log *slog.Logger) *Mailer {
	if log == nil {
		log = slog.Default()
	}

	return &Mailer{
		cfg: cfg,
		log: log,
	}
}

// Send emails the receipt as a PDF attachment to the given address.
func (m *Mailer) Send(ctx context.Context, email string, document []byte) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set recipient address: %w", err)
	}

	msg.Subject(m.cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.cfg.Body)
	if err := msg.AttachReader(attachmentName, bytes.NewReader(document)); err != nil {
		return fmt.Errorf("attach receipt: %w", err)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("failed to send receipt email", slog.Any("error", err))
		return fmt.Errorf("send receipt email: %w", err)
	}

	return nil
}
