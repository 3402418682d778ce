package mailer

import (
	"context"
	"fmt"
)

// Email is a fully-prepared message ready for delivery.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	// Tags label the message for provider-side analytics, e.g.
	// {"category": "credentials"}.
	Tags map[string]string
}

// Sender delivers prepared emails. Provider adapters implement it.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Recipient formats a name and address per RFC 5322: "Name <email>",
// or just the address when no name is given.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
