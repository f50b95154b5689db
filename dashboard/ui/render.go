package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"aerosafety/rbo/internal/logging"
)

//go:embed templates
var templateFS embed.FS

var (
	pagesMu sync.Mutex
	pages   = make(map[string]*template.Template)
)

var funcMap = template.FuncMap{
	// only ever fed the fixed tier palette
	"safeCSS": func(s string) template.CSS {
		return template.CSS(s)
	},
}

// page parses the base layout, the shared partials and one page template
func page(name string) (*template.Template, error) {
	pagesMu.Lock()
	defer pagesMu.Unlock()

	if t, ok := pages[name]; ok {
		return t, nil
	}

	t, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS,
		"templates/layouts/base.html",
		"templates/operators/form_fields.html",
		"templates/"+name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	pages[name] = t
	return t, nil
}

// RenderTemplate renders a template with the base layout
func RenderTemplate(w http.ResponseWriter, status int, templateName string, data map[string]interface{}) error {
	t, err := page(templateName)
	if err != nil {
		logging.Error("Error loading template", "template", templateName, "error", err)
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return err
	}

	// render into a buffer so a failing template never sends a half page
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		logging.Error("Error rendering template", "template", templateName, "error", err)
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
