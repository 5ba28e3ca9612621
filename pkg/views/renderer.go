// Package views renders the catalog pages from the embedded templates.
package views

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/display"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer is an echo.Renderer holding one parsed template set per view. Every
// view is the layout plus the blocks defined in the view's own file.
type Renderer struct {
	views map[string]*template.Template
}

// New parses every view found in the embedded templates directory.
func New() (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(Funcs()).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse layout")
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	views := map[string]*template.Template{}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		tmpl, err := base.Clone()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		tmpl, err = tmpl.ParseFS(templateFS, file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", file)
		}
		views[strings.TrimSuffix(path.Base(file), ".html")] = tmpl
	}

	return &Renderer{views}, nil
}

// Render writes the named view with data to w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.views[name]
	if !ok {
		return errors.Errorf("unknown view %q", name)
	}
	return errors.WithStack(tmpl.ExecuteTemplate(w, "layout", data))
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"authorName":      display.AuthorName,
		"authorLifespan":  display.AuthorLifespan,
		"authorURL":       display.AuthorURL,
		"bookURL":         display.BookURL,
		"genreURL":        display.GenreURL,
		"bookInstanceURL": display.BookInstanceURL,
		"dueBack":         display.DueBack,
		"dueBackShort":    display.DueBackShort,
		"date":            display.Date,
		"dateShort":       display.DateShort,
		"catalogPath":     func() string { return display.CatalogPath },
		"authorsPath":     func() string { return display.AuthorsPath },
		"booksPath":       func() string { return display.BooksPath },
		"genresPath":      func() string { return display.GenresPath },
		"instancesPath":   func() string { return display.BookInstancesPath },
		"sanitized":       sanitized,
		"contains":        contains,
	}
}

// sanitized marks a value that was HTML escaped when it was submitted, so it
// is written out as is instead of being escaped a second time.
func sanitized(s string) template.HTML {
	return template.HTML(s) //nolint:gosec
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
