package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"wellnesstracker/internal/models"
)

//go:embed *.tmpl components/*.tmpl
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

const baseTemplate = "base.tmpl"

// Templates holds all page templates, keyed by file name.
type Templates struct {
	pages map[string]*template.Template
}

// FuncMap is shared by every page.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"lowScore":      models.IsLowScore,
		"formatAverage": func(f float64) string { return fmt.Sprintf("%.2f", f) },
		"metrics":       func() []models.Metric { return models.Metrics },
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// Load parses the embedded templates. Each page gets its own clone of the
// layout and components so every page can define "content".
func Load() (*Templates, error) {
	base, err := template.New(baseTemplate).Funcs(FuncMap()).ParseFS(templateFiles, baseTemplate, "components/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(templateFiles, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to glob page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		if name == baseTemplate {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFiles, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Templates{pages: pages}, nil
}

// Has reports whether a page named name was loaded.
func (t *Templates) Has(name string) bool {
	_, ok := t.pages[name]
	return ok
}

// Render executes the layout of page name into w. Output is buffered so a
// failing template writes nothing.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded assets; mount it under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("embedded static directory missing: " + err.Error())
	}
	fileServer := http.FileServerFS(sub)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No directory listings.
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") || path.Ext(r.URL.Path) == "" {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
