package mailer

import (
	"bytes"
	"context"
	"errors"
	texttemplate "text/template"

	"github.com/dmitrymomot/briefly/pkg/resilience"
)

// Config holds mailer settings shared by all templated sends.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
}

// Mailer renders templated emails and delivers them through a Sender,
// retrying transient provider failures with the shared invoker.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
	retry    []resilience.Option
}

// New creates a Mailer. Retry options apply to every delivery.
func New(sender Sender, renderer *Renderer, cfg Config, retry ...resilience.Option) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, config: cfg, retry: retry}
}

// SendParams describes one templated email.
type SendParams struct {
	To       string
	Template string // template filename, e.g. "calendar_connected.md"
	Data     any

	Subject string // overrides frontmatter subject
	Layout  string // overrides the default layout
	ReplyTo string
	Tags    map[string]string
}

// Send renders the template and delivers the email. Subject resolution:
// params override, then frontmatter, then the configured fallback; the
// winner is itself executed as a template against params.Data.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		if s, ok := result.Metadata["subject"].(string); ok {
			subject = s
		} else {
			subject = m.config.FallbackSubject
		}
	}
	subject, err = executeSubject(subject, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	email := &Email{
		To:      []string{params.To},
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
		ReplyTo: params.ReplyTo,
		Tags:    params.Tags,
	}

	_, err = resilience.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.sender.Send(ctx, email)
	}, m.retry...)
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func executeSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
