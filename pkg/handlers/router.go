package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"portfolio/pkg/auth"
	"portfolio/pkg/services"
)

// jsonBodyLimit caps the body of every non-upload request.
const jsonBodyLimit = 1 << 20

// multipartOverhead is allowed on top of the upload ceiling for headers and
// boundaries.
const multipartOverhead = 1 << 20

// Options configures the HTTP surface.
type Options struct {
	Service        *services.Service
	Auth           *auth.Service
	Logger         *slog.Logger
	ViewsDir       string
	MaxUploadBytes int64
	ProtectWrites  bool
	CORSOrigin     string
	OrphanGrace    time.Duration
}

// Handler serves the JSON API, the uploaded files and the pages.
type Handler struct {
	svc         *services.Service
	auth        *auth.Service
	log         *slog.Logger
	views       *views
	maxUpload   int64
	orphanGrace time.Duration
}

// NewRouter builds the routing table.
func NewRouter(opts Options) http.Handler {
	h := &Handler{
		svc:         opts.Service,
		auth:        opts.Auth,
		log:         opts.Logger,
		views:       newViews(opts.ViewsDir),
		maxUpload:   opts.MaxUploadBytes,
		orphanGrace: opts.OrphanGrace,
	}
	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(opts.Logger))
	r.Use(recoverer(opts.Logger))
	r.Use(cors(origin))

	// write guards mutating routes when writes are protected.
	write := func(r chi.Router) chi.Router {
		if opts.ProtectWrites {
			return r.With(h.auth.Middleware)
		}
		return r
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		r.Group(func(r chi.Router) {
			r.Use(limitBody(jsonBodyLimit))

			r.Get("/content", h.ListContentHandler)
			write(r).Post("/content", h.AddContentHandler)
			write(r).Put("/content", h.UpdateContentHandler)
			write(r).Delete("/content", h.DeleteContentHandler)

			r.Get("/files/{type}", h.ListFilesHandler)
			write(r).Delete("/files/{type}/{filename}", h.DeleteFileHandler)

			r.Post("/auth/login", h.LoginHandler)
			r.With(h.auth.Middleware).Get("/auth/verify", h.VerifyHandler)

			r.With(h.auth.Middleware).Post("/admin/sweep", h.SweepHandler)
		})

		write(r).With(limitBody(opts.MaxUploadBytes+multipartOverhead)).Post("/upload", h.UploadHandler)
	})

	r.Get("/uploads/{dir}/{name}", h.UploadedFileHandler)

	r.Get("/", h.IndexHandler)
	r.Get("/photos", h.GalleryHandler)
	r.Get("/drawings", h.GalleryHandler)
	r.Get("/music", h.GalleryHandler)
	r.Get("/about", h.AboutHandler)
	r.Get("/cms", h.CMSHandler)

	return r
}
