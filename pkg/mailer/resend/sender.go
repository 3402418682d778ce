// Package resend adapts the Resend API to the mailer.Sender interface.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/briefly/pkg/mailer"
)

// Config holds Resend provider settings.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

// Sender delivers emails through Resend.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a Resend sender.
func New(cfg Config) *Sender {
	return &Sender{client: resend.NewClient(cfg.APIKey), config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    mailer.Recipient(s.config.SenderName, s.config.SenderEmail),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}

	for name, value := range email.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	return nil
}
