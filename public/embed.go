// Package public embeds the storefront's templates, static assets, markdown pages and
// message catalogs.
package public

import (
	"embed"
	"io/fs"
)

//go:embed templates static content locales
var files embed.FS

// TemplatesFS returns the template tree (layouts/, partials/, pages/).
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(files, "templates")
}

// StaticFS returns the files served under /static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(files, "static")
}

// ContentFS returns the markdown pages laid out as <lang>/<slug>.md.
func ContentFS() (fs.FS, error) {
	return fs.Sub(files, "content")
}

// LocalesFS returns the <lang>.yaml message catalogs.
func LocalesFS() (fs.FS, error) {
	return fs.Sub(files, "locales")
}
