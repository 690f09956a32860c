// Package web serves the landing, failure and main pages plus the JSON routes.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
)

//go:embed public/*.html
var publicFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

const (
	indexFile    = "index.html"
	failureFile  = "failure.html"
	mainPageName = "main_page.html"
)

// Assets holds the pages loaded at startup.
type Assets struct {
	Index     []byte
	Failure   []byte
	Templates *template.Template
}

// LoadAssets reads the static pages from dir, or from the embedded copies
// when dir is empty. A missing page is an error so the server never starts
// without it.
func LoadAssets(dir string) (*Assets, error) {
	var public fs.FS
	if dir != "" {
		public = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(publicFS, "public")
		if err != nil {
			return nil, fmt.Errorf("web: embedded assets: %w", err)
		}
		public = sub
	}

	index, err := fs.ReadFile(public, indexFile)
	if err != nil {
		return nil, fmt.Errorf("web: read %s: %w", indexFile, err)
	}
	failure, err := fs.ReadFile(public, failureFile)
	if err != nil {
		return nil, fmt.Errorf("web: read %s: %w", failureFile, err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	return &Assets{Index: index, Failure: failure, Templates: tmpl}, nil
}
