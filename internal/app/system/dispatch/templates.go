package dispatch

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/dalemusser/papilloncast/internal/domain/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateGenerator renders a fixed text template. It stands in for real
// feed summarization.
type TemplateGenerator struct {
	contentType string
	tmpl        *template.Template
}

// NewTemplateGenerator parses templates/<contentType>.tmpl.
func NewTemplateGenerator(contentType string) (*TemplateGenerator, error) {
	name := contentType + ".tmpl"
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &TemplateGenerator{contentType: contentType, tmpl: tmpl}, nil
}

// DefaultGenerators returns a template generator for every content type.
func DefaultGenerators() ([]Generator, error) {
	types := models.AllContentTypes()
	gens := make([]Generator, 0, len(types))
	for _, t := range types {
		g, err := NewTemplateGenerator(t)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}

func (g *TemplateGenerator) Type() string { return g.contentType }

func (g *TemplateGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
