package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"time"
)

//go:embed templates
var templateFS embed.FS

// Renderer turns a page name and its context into HTML.
type Renderer interface {
	Render(w io.Writer, name string, data map[string]any) error
}

// HTMLRenderer holds one template set per page, each sharing the layout and partials.
type HTMLRenderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"pageURL": func(n int) string { return fmt.Sprintf("?page=%d", n) },
	"date":    func(t time.Time) string { return t.Format("02 Jan 2006") },
	"mediaURL": func(p string) string {
		return "/media/" + p
	},
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &HTMLRenderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := path.Base(page)
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/base.html",
			"templates/partials.html",
			page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *HTMLRenderer) Render(w io.Writer, name string, data map[string]any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// render adds the caller to the context and writes the page only once it rendered fully.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["user"] = CallerFrom(r.Context())

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "template rendering failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
