// Package web embeds the console's HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

// Templates holds layouts, partials, pages and PDF report documents.
//
//go:embed templates/**/*.html
var Templates embed.FS

//go:embed static/**/*
var static embed.FS

// Static returns the asset tree rooted at static/, as served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}
