package handlers

import (
	"net/http"
	"time"

	"portfolio/pkg/gallery"
)

// CMSHandler handles requests for the content manager page. The page is
// public; its script logs in and sends the token with every write.
func (h *Handler) CMSHandler(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("generating cms page")
	h.render(w, r, "cms", gallery.BuildCMS())
}

// SweepHandler handles API requests to reclaim orphaned uploads
func (h *Handler) SweepHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DryRun bool   `json:"dryRun"`
		Grace  string `json:"grace"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	grace := h.orphanGrace
	if req.Grace != "" {
		d, err := time.ParseDuration(req.Grace)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "Invalid grace period")
			return
		}
		grace = d
	}

	h.log.Info("sweeping orphans", "grace", grace.String(), "dryRun", req.DryRun)
	report, err := h.svc.SweepOrphans(r.Context(), grace, req.DryRun)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"dryRun":    req.DryRun,
		"adopted":   nonNil(report.Adopted),
		"reclaimed": nonNil(report.Reclaimed),
		"failed":    nonNil(report.Failed),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
