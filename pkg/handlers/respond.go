package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"portfolio/pkg/auth"
	"portfolio/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// errorResponse maps a service error onto a status and a short message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidCategory):
		return http.StatusBadRequest, "Invalid content type"
	case errors.Is(err, models.ErrNoFileProvided):
		return http.StatusBadRequest, "No file uploaded"
	case errors.Is(err, models.ErrInvalidEntry):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrNoToken):
		return http.StatusUnauthorized, "No token provided"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// fail writes err as a JSON error, logging anything that is not the
// caller's fault.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, msg)
}

// failNotFound is fail with a route-specific message for ErrNotFound.
func (h *Handler) failNotFound(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, msg)
		return
	}
	h.fail(w, r, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return models.ErrPayloadTooLarge
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidEntry, err)
	}
	return nil
}
