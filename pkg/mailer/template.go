package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a parsed email template: YAML frontmatter metadata plus a
// markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

var frontmatterDelim = []byte("---")

// ParseTemplate splits optional YAML frontmatter from the markdown body.
// Content without a leading delimiter is treated as all body.
func ParseTemplate(content []byte) (*Template, error) {
	if !bytes.HasPrefix(content, frontmatterDelim) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, frontmatterDelim), "\r\n")
	end := bytes.Index(rest, frontmatterDelim)
	if end == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	meta := map[string]any{}
	if raw := bytes.TrimSpace(rest[:end]); len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+len(frontmatterDelim):]
	body = bytes.TrimPrefix(body, []byte("\r\n"))
	body = bytes.TrimPrefix(body, []byte("\n"))

	return &Template{Metadata: meta, Body: string(body)}, nil
}
