package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"portfolio/pkg/auth"
	"portfolio/pkg/models"
)

// HealthHandler is the liveness probe
func (h *Handler) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListContentHandler returns the whole content document
func (h *Handler) ListContentHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ListAll()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// AddContentHandler appends an entry, or updates about, from {type, entry}
func (h *Handler) AddContentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string          `json:"type"`
		Entry json.RawMessage `json:"entry"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	payload, err := models.DecodeEntryPayload(req.Type, req.Entry)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Add(r.Context(), payload); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w)
}

// UpdateContentHandler edits the entries identified by {type, path}
func (h *Handler) UpdateContentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string          `json:"type"`
		Path  string          `json:"path"`
		Entry json.RawMessage `json:"entry"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := models.ParseListCategory(req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}
	update, err := models.DecodeEntryUpdate(req.Entry)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.UpdateEntry(r.Context(), category, req.Path, update); err != nil {
		h.failNotFound(w, r, err, "Entry not found")
		return
	}
	writeSuccess(w)
}

// DeleteContentHandler removes the entries identified by {type, path}.
// Deleting a path no entry has still succeeds.
func (h *Handler) DeleteContentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := models.ParseListCategory(req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}
	if _, err := h.svc.DeleteEntry(r.Context(), category, req.Path); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w)
}

// UploadHandler stores the multipart file of an upload?type= request.
// Registering the file as an entry is a separate call.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.fail(w, r, models.ErrPayloadTooLarge)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			h.fail(w, r, models.ErrNoFileProvided)
		default:
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh := firstFile(r.MultipartForm)
	if fh == nil {
		h.fail(w, r, models.ErrNoFileProvided)
		return
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		h.fail(w, r, models.ErrPayloadTooLarge)
		return
	}

	src, err := fh.Open()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer src.Close()

	stored, err := h.svc.Upload(r.Context(), category, fh.Filename, src)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filePath": stored.Path,
		"fileName": stored.Name,
	})
}

// firstFile prefers the "file" field and otherwise takes the first file
// field by name.
func firstFile(mf *multipart.Form) *multipart.FileHeader {
	if mf == nil || len(mf.File) == 0 {
		return nil
	}
	if v := mf.File["file"]; len(v) > 0 {
		return v[0]
	}
	keys := make([]string, 0, len(mf.File))
	for k := range mf.File {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := mf.File[k]; len(v) > 0 {
			return v[0]
		}
	}
	return nil
}

// ListFilesHandler lists the stored files of a category
func (h *Handler) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.svc.ListFiles(r.Context(), category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteFileHandler removes one stored file
func (h *Handler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.DeleteFile(r.Context(), category, chi.URLParam(r, "filename")); err != nil {
		h.failNotFound(w, r, err, "File not found")
		return
	}
	writeSuccess(w)
}

// UploadedFileHandler streams /uploads/{dir}/{name} from the file store
func (h *Handler) UploadedFileHandler(w http.ResponseWriter, r *http.Request) {
	category, err := models.CategoryFromDir(chi.URLParam(r, "dir"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	name := chi.URLParam(r, "name")

	rc, err := h.svc.OpenFile(r.Context(), category, name)
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("opening upload", "category", category, "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		w.Header().Set("Content-Type", t)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, time.Time{}, rs)
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn("streaming upload", "name", name, "error", err)
	}
}

// LoginHandler exchanges {username, password} for a token
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.log.Warn("failed login", "username", req.Username, "remote", r.RemoteAddr)
		h.fail(w, r, err)
		return
	}
	h.log.Info("admin logged in", "username", req.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  models.User{Username: req.Username, IsAuthenticated: true},
	})
}

// VerifyHandler echoes the user of a valid token
func (h *Handler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrNoToken)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": models.User{Username: username, IsAuthenticated: true},
	})
}
