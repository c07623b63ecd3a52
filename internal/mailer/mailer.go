// Package mailer is the outbound email transport.
package mailer

import (
	"context"
	"fmt"

	"Newsroom/internal/config"

	"github.com/wneessen/go-mail"
)

// Mailer sends one message to one recipient. Each call reports its own
// success or failure; the publisher treats failures as per-recipient events.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// SMTPMailer implements Mailer over SMTP.
type SMTPMailer struct {
	client *mail.Client
	sender string
}

// NewSMTP builds an SMTPMailer from config.
func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout.Duration()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, sender: cfg.Sender}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, text, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.sender); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	if html != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}
