package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eknkc/pug"

	"portfolio/pkg/gallery"
	"portfolio/pkg/models"
)

// views compiles pug templates from a directory. Templates are compiled on
// every render so edits show up without a restart.
type views struct {
	dir string
}

func newViews(dir string) *views {
	if dir == "" {
		dir = "./views"
	}
	return &views{dir: dir}
}

// compiledView is a compiled template.
type compiledView interface {
	Execute(w io.Writer, data any) error
}

func (v *views) compile(name string) (compiledView, error) {
	tpl, err := pug.CompileFile(filepath.Join(v.dir, name+".pug"), pug.Options{})
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return tpl, nil
}

// render writes the named page, or a plain 500 if the template fails.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tpl, err := h.views.compile(name)
	if err != nil {
		h.log.Error("template error", "view", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		h.log.Error("template execution error", "view", name, "path", r.URL.Path, "error", err)
	}
}

// IndexHandler handles requests for the home page
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ListAll()
	if err != nil {
		h.log.Error("loading content", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "index", gallery.BuildIndex(doc))
}

// GalleryHandler handles /photos, /drawings and /music. The optional
// category query filters by entry tag and view opens the lightbox.
func (h *Handler) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	section := strings.Trim(r.URL.Path, "/")
	category, err := models.CategoryFromDir(section)
	if err != nil || !category.IsList() {
		http.NotFound(w, r)
		return
	}

	doc, err := h.svc.ListAll()
	if err != nil {
		h.log.Error("loading content", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	view := -1
	if raw := r.URL.Query().Get("view"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			view = n
		}
	}
	page := gallery.BuildGallery(category, doc, r.URL.Query().Get("category"), view)

	name := "gallery"
	if category == models.CategoryMusic {
		name = "music"
	}
	h.render(w, r, name, page)
}

// AboutHandler handles requests for the about page
func (h *Handler) AboutHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ListAll()
	if err != nil {
		h.log.Error("loading content", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	page, err := gallery.BuildAbout(doc)
	if err != nil {
		h.log.Error("building about page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "about", page)
}
