// Package view parses the storefront templates and renders pages and htmx fragments.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
)

// ErrUnknownPage is returned when no template exists for a page name.
var ErrUnknownPage = errors.New("view: unknown page")

const (
	layoutsDir  = "layouts"
	partialsDir = "partials"
	pagesDir    = "pages"
	baseLayout  = "base"
)

// Renderer executes templates parsed from an fs.FS laid out as layouts/, partials/ and
// pages/. Pages are parsed on top of a clone of the shared layouts and partials so each page
// can define its own "content" block.
type Renderer struct {
	fsys  fs.FS
	funcs template.FuncMap
	dev   bool

	mu  sync.RWMutex
	set *templateSet
}

type templateSet struct {
	shared *template.Template
	pages  map[string]*template.Template
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithDevReload reparses templates on every render.
func WithDevReload(dev bool) Option {
	return func(r *Renderer) { r.dev = dev }
}

// WithFuncs adds template functions on top of the defaults.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		for k, v := range funcs {
			r.funcs[k] = v
		}
	}
}

// New parses the templates in fsys.
func New(fsys fs.FS, opts ...Option) (*Renderer, error) {
	r := &Renderer{fsys: fsys, funcs: DefaultFuncs()}
	for _, opt := range opts {
		opt(r)
	}
	set, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.set = set
	return r, nil
}

func (r *Renderer) templates() (*templateSet, error) {
	if r.dev {
		return r.parse()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set, nil
}

func (r *Renderer) parse() (*templateSet, error) {
	shared := template.New("_root").Funcs(r.funcs)
	for _, dir := range []string{layoutsDir, partialsDir} {
		files, err := templateFiles(r.fsys, dir)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		if shared, err = shared.ParseFS(r.fsys, files...); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", dir, err)
		}
	}

	pageFiles, err := templateFiles(r.fsys, pagesDir)
	if err != nil {
		return nil, err
	}
	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("view: no templates found under %s", pagesDir)
	}
	set := &templateSet{shared: shared, pages: make(map[string]*template.Template, len(pageFiles))}
	for _, file := range pageFiles {
		clone, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("view: clone for %s: %w", file, err)
		}
		page, err := clone.ParseFS(r.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", file, err)
		}
		set.pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = page
	}
	return set, nil
}

func templateFiles(fsys fs.FS, dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == dir {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view: walk %s: %w", dir, err)
	}
	return files, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(page string) bool {
	set, err := r.templates()
	if err != nil {
		return false
	}
	_, ok := set.pages[page]
	return ok
}

// ExecutePage renders the base layout for page into w.
func (r *Renderer) ExecutePage(w io.Writer, page string, data any) error {
	set, err := r.templates()
	if err != nil {
		return err
	}
	t, ok := set.pages[page]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	return t.ExecuteTemplate(w, baseLayout, data)
}

// ExecuteFragment renders a named template defined in partials/.
func (r *Renderer) ExecuteFragment(w io.Writer, name string, data any) error {
	set, err := r.templates()
	if err != nil {
		return err
	}
	return set.shared.ExecuteTemplate(w, name, data)
}

// Page writes a full HTML page with the given status. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Page(w http.ResponseWriter, status int, page string, data any) error {
	var buf bytes.Buffer
	if err := r.ExecutePage(&buf, page, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	return writeHTML(w, status, buf.Bytes())
}

// Fragment writes one or more named partials back to back, as used for htmx swaps that carry
// out-of-band sections.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, parts ...Part) error {
	var buf bytes.Buffer
	for _, p := range parts {
		if err := r.ExecuteFragment(&buf, p.Name, p.Data); err != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
			return err
		}
	}
	return writeHTML(w, status, buf.Bytes())
}

// Part is a named partial and its data.
type Part struct {
	Name string
	Data any
}

func writeHTML(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}
