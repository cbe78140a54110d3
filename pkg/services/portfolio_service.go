package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"portfolio/pkg/clock"
	"portfolio/pkg/content"
	"portfolio/pkg/files"
	"portfolio/pkg/ledger"
	"portfolio/pkg/models"
)

// Options wires a Service to its stores.
type Options struct {
	Content  *content.Store
	Files    files.Store
	Ledger   *ledger.Ledger
	Clock    clock.Clock
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Service mediates between requests and the content and file stores.
//
// Uploading a file and registering it as an entry are separate calls with no
// transaction between them. Files that are never registered stay pending in
// the ledger until SweepOrphans reclaims them.
type Service struct {
	content   *content.Store
	files     files.Store
	ledger    *ledger.Ledger
	clock     clock.Clock
	log       *slog.Logger
	fileCache *cache.Cache
}

// NewService creates a Service from opts.
func NewService(opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		content:   opts.Content,
		files:     opts.Files,
		ledger:    opts.Ledger,
		clock:     clk,
		log:       opts.Logger,
		fileCache: cache.New(ttl, 2*ttl),
	}
}

// ListAll returns the whole content document.
func (s *Service) ListAll() (*models.ContentDocument, error) {
	return s.content.Load()
}

// Add registers a validated payload: list entries are appended, about
// updates are merged. Registered paths are marked in the ledger.
func (s *Service) Add(ctx context.Context, p models.EntryPayload) error {
	switch {
	case p.Category == models.CategoryAbout && p.About != nil:
		about, err := s.content.UpdateAbout(*p.About)
		if err != nil {
			return err
		}
		if p.About.BackgroundImage != nil {
			s.markRegistered(ctx, about.BackgroundImage)
		}
		s.log.Info("updated about", "dateUpdated", about.DateUpdated.Format(time.RFC3339))
		return nil

	case p.Category.IsList() && p.Entry != nil:
		entry := *p.Entry
		if entry.Date.IsZero() {
			entry.Date = s.clock.Now().UTC()
		}
		if err := s.content.AppendEntry(p.Category, entry); err != nil {
			return err
		}
		s.markRegistered(ctx, entry.Path)
		s.log.Info("added entry", "category", p.Category, "path", entry.Path)
		return nil
	}
	return models.ErrInvalidEntry
}

// UpdateEntry edits the entries of category identified by path.
func (s *Service) UpdateEntry(_ context.Context, category models.Category, path string, update models.EntryUpdate) error {
	if update.IsEmpty() {
		return models.ErrInvalidEntry
	}
	n, err := s.content.UpdateEntry(category, path, update)
	if err != nil {
		return err
	}
	s.log.Info("updated entry", "category", category, "path", path, "count", n)
	return nil
}

// DeleteEntry removes the entries of category with the given path, then
// tries to remove the file named by the path's last segment. Metadata goes
// first; a failed file removal is logged and otherwise ignored. Deleting a
// path that no entry has is a no-op.
func (s *Service) DeleteEntry(ctx context.Context, category models.Category, path string) (int, error) {
	n, err := s.content.RemoveEntry(category, path)
	if err != nil || n == 0 {
		return n, err
	}
	s.log.Info("removed entry", "category", category, "path", path, "count", n)

	name := lastSegment(path)
	existed, err := s.files.Remove(ctx, category, name)
	switch {
	case err != nil:
		s.log.Warn("failed to remove file for deleted entry", "category", category, "name", name, "error", err)
	case existed:
		s.log.Info("removed file", "category", category, "name", name)
		s.fileCache.Delete(string(category))
	}
	if s.ledger != nil {
		if err := s.ledger.Forget(ctx, path); err != nil {
			s.log.Warn("failed to forget ledger row", "path", path, "error", err)
		}
	}
	return n, nil
}

// Upload stores a file and records it as pending registration. It does not
// touch the content document.
func (s *Service) Upload(ctx context.Context, category models.Category, filename string, r io.Reader) (models.StoredFile, error) {
	f, err := s.files.Put(ctx, category, filename, r)
	if err != nil {
		return models.StoredFile{}, err
	}
	s.fileCache.Delete(string(category))
	s.log.Info("stored upload", "category", category, "name", f.Name, "size", f.Size)

	if s.ledger != nil {
		if err := s.ledger.RecordUpload(ctx, f, s.clock.Now()); err != nil {
			s.log.Warn("failed to record upload", "path", f.Path, "error", err)
		}
	}
	return f, nil
}

// ListFiles returns the stored files of a category.
func (s *Service) ListFiles(ctx context.Context, category models.Category) ([]models.StoredFile, error) {
	if cached, found := s.fileCache.Get(string(category)); found {
		s.log.Debug("using cached file list", "category", category)
		return cached.([]models.StoredFile), nil
	}
	list, err := s.files.List(ctx, category)
	if err != nil {
		return nil, err
	}
	s.fileCache.Set(string(category), list, cache.DefaultExpiration)
	return list, nil
}

// DeleteFile removes one stored file, failing with ErrNotFound when absent.
func (s *Service) DeleteFile(ctx context.Context, category models.Category, name string) error {
	existed, err := s.files.Remove(ctx, category, name)
	if err != nil {
		return err
	}
	if !existed {
		return models.ErrNotFound
	}
	s.fileCache.Delete(string(category))
	s.log.Info("deleted file", "category", category, "name", name)

	if s.ledger != nil {
		if err := s.ledger.Forget(ctx, models.PublicPath(category, name)); err != nil {
			s.log.Warn("failed to forget ledger row", "name", name, "error", err)
		}
	}
	return nil
}

// OpenFile streams a stored file.
func (s *Service) OpenFile(ctx context.Context, category models.Category, name string) (io.ReadCloser, error) {
	return s.files.Open(ctx, category, name)
}

// SweepReport lists what a sweep did, or would do in a dry run.
type SweepReport struct {
	Adopted   []string
	Reclaimed []string
	Failed    []string
}

// SweepOrphans reclaims uploads that stayed unregistered for longer than
// grace. Pending uploads that an entry references after all are adopted
// instead. With dryRun nothing is changed.
func (s *Service) SweepOrphans(ctx context.Context, grace time.Duration, dryRun bool) (SweepReport, error) {
	var report SweepReport
	if s.ledger == nil {
		return report, errors.New("sweep requires an upload ledger")
	}

	now := s.clock.Now()
	pending, err := s.ledger.Pending(ctx, now.Add(-grace))
	if err != nil {
		return report, err
	}
	if len(pending) == 0 {
		return report, nil
	}

	doc, err := s.content.Load()
	if err != nil {
		return report, err
	}

	for _, e := range pending {
		if doc.References(e.Path) {
			report.Adopted = append(report.Adopted, e.Path)
			if !dryRun {
				if _, err := s.ledger.MarkRegistered(ctx, e.Path, now); err != nil {
					return report, err
				}
			}
			continue
		}

		if dryRun {
			report.Reclaimed = append(report.Reclaimed, e.Path)
			continue
		}
		if _, err := s.files.Remove(ctx, e.Category, e.Name); err != nil {
			s.log.Warn("failed to reclaim orphan", "path", e.Path, "error", err)
			report.Failed = append(report.Failed, e.Path)
			continue
		}
		if err := s.ledger.Forget(ctx, e.Path); err != nil {
			return report, fmt.Errorf("forgetting %s: %w", e.Path, err)
		}
		s.fileCache.Delete(string(e.Category))
		report.Reclaimed = append(report.Reclaimed, e.Path)
	}

	s.log.Info("swept orphans", "adopted", len(report.Adopted), "reclaimed", len(report.Reclaimed), "failed", len(report.Failed), "dryRun", dryRun)
	return report, nil
}

func (s *Service) markRegistered(ctx context.Context, path string) {
	if s.ledger == nil || path == "" {
		return
	}
	if _, err := s.ledger.MarkRegistered(ctx, path, s.clock.Now()); err != nil {
		s.log.Warn("failed to mark upload registered", "path", path, "error", err)
	}
}

// lastSegment returns what follows the final slash of path.
func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
