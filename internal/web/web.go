// Package web renders HTML pages from embedded templates.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
)

//go:embed templates
var templatesFS embed.FS

// Renderer holds the parsed page templates. Each page is parsed
// together with the shared base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all embedded page templates.
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.ParseFS(templatesFS, "templates/base.html", name)
		if err != nil {
			return nil, err
		}
		pages[path.Base(name)] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named page with the given context. Rendering goes
// through a buffer so a template fault never produces a half-written
// page.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data map[string]any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		slog.Error("unknown template", slog.String("name", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template execution failed", slog.String("name", name), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
