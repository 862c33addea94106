package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.txt templates/*.html
var templatesFS embed.FS

var funcs = map[string]any{
	"comma": func(v any) string {
		switch n := v.(type) {
		case int:
			return humanize.Comma(int64(n))
		case int64:
			return humanize.Comma(n)
		case float64:
			return humanize.Comma(int64(n))
		}
		return fmt.Sprint(v)
	},
}

// Renderer renders messages from the embedded templates. Each text template
// defines a "subject" block alongside its body.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	html, err := htmltemplate.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// Render fills Subject, TextContent and HTMLContent from the message's
// template. Messages without a template are left unchanged.
func (r *Renderer) Render(msg *Message) error {
	if msg.TemplateName == "" {
		return nil
	}
	name := msg.TemplateName

	var subject, text, html bytes.Buffer
	if err := r.text.ExecuteTemplate(&subject, name+"_subject", msg.TemplateData); err != nil {
		return fmt.Errorf("failed to render subject of %q: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", msg.TemplateData); err != nil {
		return fmt.Errorf("failed to render text of %q: %w", name, err)
	}
	if err := r.html.ExecuteTemplate(&html, name+".html", msg.TemplateData); err != nil {
		return fmt.Errorf("failed to render html of %q: %w", name, err)
	}

	msg.Subject = strings.TrimSpace(subject.String())
	msg.TextContent = text.String()
	msg.HTMLContent = html.String()
	return nil
}
