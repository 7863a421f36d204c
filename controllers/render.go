package controllers

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/blogem/contacts/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer writes a view to the response
type Renderer interface {
	Render(w http.ResponseWriter, status int, view string, page *models.PageData) error
}

// HTMLRenderer renders pages wrapped in the shared layout
type HTMLRenderer struct {
	templates map[string]*template.Template
}

var views = []string{"users", "user", "audit", "audit_entry", "error"}

// NewHTMLRenderer parses the layout together with every page template
func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcs := template.FuncMap{
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
		"formatDateTime": func(t time.Time) string { return models.FormatDateTime(t) },
	}

	templates := make(map[string]*template.Template, len(views))
	for _, view := range views {
		tmpl, err := template.New(view).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+view+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", view, err)
		}
		templates[view] = tmpl
	}

	return &HTMLRenderer{templates: templates}, nil
}

// Render executes the layout with page
func (h *HTMLRenderer) Render(w http.ResponseWriter, status int, view string, page *models.PageData) error {
	tmpl, ok := h.templates[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "layout.html", page); err != nil {
		return fmt.Errorf("failed to render template %s: %w", view, err)
	}
	return nil
}

// JSONRenderer writes the page data as a JSON document
type JSONRenderer struct{}

// Render encodes page.Data
func (JSONRenderer) Render(w http.ResponseWriter, status int, _ string, page *models.PageData) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(page.Data); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}
