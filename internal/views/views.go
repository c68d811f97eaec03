// Package views renders the HTML pages of the todo app from templates
// embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/sbilibin2017/gw-todo-web/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names.
const (
	Index    = "index"
	Login    = "login"
	Register = "register"
	Account  = "account"
	Todos    = "todos"
	Edit     = "edit"
	Info     = "info"
	Error    = "error"
)

var pageNames = []string{Index, Login, Register, Account, Todos, Edit, Info, Error}

// Page is the data passed to every template.
type Page struct {
	Principal *models.Principal
	Message   string
	Todos     []models.TodoDB
	Todo      *models.TodoDB
	Error     string
}

// Renderer executes a named page into w.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. Every page shares layout.html.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}

	layout, err := template.ParseFS(sub, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tmpl.ParseFS(sub, name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
