// Package web holds the dashboard and public site templates and assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

//go:embed static/css/*
var static embed.FS

// TemplatePatterns lists the template globs in parse order: layouts and
// partials come before the pages that reference them.
var TemplatePatterns = []string{
	"templates/layouts/*.html",
	"templates/partials/*.html",
	"templates/pages/*.html",
}

// Static returns the assets served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}
