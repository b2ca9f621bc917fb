// Package assets embeds the browser side of the game: the page template
// plus the script and stylesheet that draw the grid and report clicks.
package assets

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl static/*
var FS embed.FS

// Page is the data rendered into index.tmpl.
type Page struct {
	GridSize      int
	DefaultLength int
	MaxLength     int
	DisplayMs     int64
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(FS, "templates/*.tmpl")
}

// StaticFS serves the files under static/.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		// Only possible if the embed pattern above changes.
		panic(err)
	}
	return http.FS(sub)
}
