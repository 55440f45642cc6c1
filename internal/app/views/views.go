// Package views embeds the HTML templates, Markdown pages and static assets.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template with funcs available
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Content returns the Markdown source of a content page
func Content(name string) ([]byte, error) {
	return contentFS.ReadFile("content/" + name + ".md")
}

// Static serves the stylesheet and other assets
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
