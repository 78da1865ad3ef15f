package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dgenny/propostas/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer собирает HTML документа предложения из записи.
type Renderer struct {
	tmpl *template.Template
}

// New разбирает встроенный шаблон документа.
func New() (*Renderer, error) {
	tmpl, err := template.New("proposta.html").
		Funcs(template.FuncMap{
			"field": func(p models.Proposal, key string) string { return p.String(key) },
			"flag":  func(p models.Proposal, key string) bool { return p.Bool(key) },
		}).
		ParseFS(templatesFS, "templates/proposta.html")
	if err != nil {
		return nil, fmt.Errorf("render: не удалось разобрать шаблон: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render пишет документ в w. Отсутствующие поля выводятся пустыми.
func (r *Renderer) Render(w io.Writer, p models.Proposal) error {
	// Буфер, чтобы при ошибке шаблона клиент не получил половину страницы.
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render: ошибка рендеринга предложения %s: %w", p.ID(), err)
	}
	_, err := buf.WriteTo(w)
	return err
}
