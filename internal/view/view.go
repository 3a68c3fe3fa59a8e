// Package view renders the server-side HTML pages. Templates are embedded
// into the binary; every page receives the current identity (for the nav
// bar) and the flash messages consumed for this render.
package view

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/miniblog/internal/logger"
	"github.com/patric-chuzhbe/miniblog/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Identity is the logged-in user shown in the navigation bar.
type Identity struct {
	ID       int64
	Username string
}

// Data is the payload every template render receives. Page-specific
// fields stay nil for pages that do not use them.
type Data struct {
	Title   string
	User    *Identity
	Flashes []models.Flash
	Post    *models.Post
	Posts   []models.PostWithAuthor
	Message string
}

// View holds the parsed template set.
type View struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*View, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &View{templates: templates}, nil
}

// Render writes the named page with the given status code. A template
// failure after the header is written can only be logged.
func (v *View) Render(w http.ResponseWriter, status int, name string, data Data) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := v.templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Log.Errorln("Error rendering template: ", zap.String("template", name), zap.Error(err))
	}
}
