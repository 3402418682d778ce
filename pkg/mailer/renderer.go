package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Renderer turns markdown templates with YAML frontmatter into HTML
// wrapped in an HTML layout. Parsed templates are cached; rendering with
// fresh data is cheap.
type Renderer struct {
	fs fs.FS
	md goldmark.Markdown

	mu        sync.RWMutex
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
}

type parsedTemplate struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
}

// NewRenderer creates a renderer over a filesystem containing templates
// at the root and layouts under layouts/.
func NewRenderer(filesystem fs.FS) *Renderer {
	return &Renderer{
		fs:        filesystem,
		md:        goldmark.New(),
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
	}
}

// RenderResult holds the rendered HTML, the plain-text alternative, and
// the template's frontmatter metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

// Render executes the named markdown template with data, converts it to
// HTML, and wraps it in the named layout. The plain-text alternative is
// the executed markdown before conversion.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	parsed, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := parsed.tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}

	var body bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("%w: convert %s: %v", ErrRenderFailed, name, err)
	}

	layoutTmpl, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	err = layoutTmpl.Execute(&html, map[string]any{
		"Content":  template.HTML(body.String()),
		"Metadata": parsed.metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{
		Metadata: parsed.metadata,
		HTML:     html.String(),
		Text:     markdown.String(),
	}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.templates[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, err
	}

	tmpl, err := texttemplate.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}

	cached = &parsedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.templates[name] = cached
	return cached, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	cached, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.layouts[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join("layouts", name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
	}

	r.layouts[name] = tmpl
	return tmpl, nil
}
