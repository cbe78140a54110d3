// Package content persists the portfolio's single JSON document.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/patrickmn/go-cache"

	"portfolio/pkg/clock"
	"portfolio/pkg/models"
)

const documentKey = "document"

// Store reads and writes the content document at a fixed path.
//
// Every load-modify-save runs under one mutex so concurrent requests cannot
// lose each other's writes. Save overwrites the file in place and is not
// atomic: a crash mid-write can leave a truncated document behind.
type Store struct {
	path  string
	clock clock.Clock
	log   *slog.Logger
	cache *cache.Cache
	mu    sync.Mutex
}

// NewStore creates a store for the document at path. Parsed documents are
// kept in memory for ttl.
func NewStore(path string, clk clock.Clock, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		path:  filepath.Clean(path),
		clock: clk,
		log:   logger,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load returns a copy of the document, creating the default one on first use.
func (s *Store) Load() (*models.ContentDocument, error) {
	if cached, found := s.cache.Get(documentKey); found {
		return cached.(*models.ContentDocument).Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Save replaces the whole document on disk.
func (s *Store) Save(doc *models.ContentDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(doc.Clone())
}

// AppendEntry adds entry at the tail of the category's list.
func (s *Store) AppendEntry(category models.Category, entry models.ContentEntry) error {
	if !category.IsList() {
		return models.ErrInvalidCategory
	}
	return s.mutate(func(doc *models.ContentDocument) (bool, error) {
		entries := append(doc.Entries(category), entry)
		return true, doc.SetEntries(category, entries)
	})
}

// RemoveEntry drops every entry of the category whose path equals path and
// returns how many were dropped. Nothing is written when none match.
func (s *Store) RemoveEntry(category models.Category, path string) (int, error) {
	if !category.IsList() {
		return 0, models.ErrInvalidCategory
	}
	removed := 0
	err := s.mutate(func(doc *models.ContentDocument) (bool, error) {
		current := doc.Entries(category)
		kept := make([]models.ContentEntry, 0, len(current))
		for _, e := range current {
			if e.Path == path {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if removed == 0 {
			return false, nil
		}
		return true, doc.SetEntries(category, kept)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// UpdateEntry merges the non-nil fields of update into every entry of the
// category with the given path.
func (s *Store) UpdateEntry(category models.Category, path string, update models.EntryUpdate) (int, error) {
	if !category.IsList() {
		return 0, models.ErrInvalidCategory
	}
	updated := 0
	err := s.mutate(func(doc *models.ContentDocument) (bool, error) {
		entries := doc.Entries(category)
		for i := range entries {
			if entries[i].Path != path {
				continue
			}
			if update.Title != nil {
				entries[i].Title = *update.Title
			}
			if update.Description != nil {
				entries[i].Description = *update.Description
			}
			if update.Category != nil {
				entries[i].Category = *update.Category
			}
			updated++
		}
		if updated == 0 {
			return false, models.ErrNotFound
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// UpdateAbout merges update into the about record and stamps dateUpdated.
// The stamp never moves backwards, even if the clock does.
func (s *Store) UpdateAbout(update models.AboutUpdate) (models.AboutRecord, error) {
	var about models.AboutRecord
	err := s.mutate(func(doc *models.ContentDocument) (bool, error) {
		if update.Text != nil {
			doc.About.Text = *update.Text
		}
		if update.BackgroundImage != nil {
			doc.About.BackgroundImage = *update.BackgroundImage
		}
		now := s.clock.Now().UTC()
		if now.After(doc.About.DateUpdated) {
			doc.About.DateUpdated = now
		}
		about = doc.About
		return true, nil
	})
	return about, err
}

// Invalidate drops the cached document so the next Load reads the file.
func (s *Store) Invalidate() {
	s.cache.Delete(documentKey)
}

// Watch drops the cache whenever the document changes on disk, so hand edits
// are served without a restart. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating content directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	s.log.Debug("watching content document", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.log.Debug("content document changed", "op", event.Op.String())
				s.Invalidate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", "error", err)
		}
	}
}

// mutate runs fn on a copy of a fresh read of the document and saves the
// copy when fn reports a change. The cached document is never modified;
// only a copy that has been written replaces it.
func (s *Store) mutate(fn func(doc *models.ContentDocument) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readFileLocked()
	if err != nil {
		return err
	}
	doc := current.Clone()
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.writeLocked(doc)
}

// readLocked prefers the cache and falls back to the file.
func (s *Store) readLocked() (*models.ContentDocument, error) {
	if cached, found := s.cache.Get(documentKey); found {
		return cached.(*models.ContentDocument), nil
	}
	return s.readFileLocked()
}

func (s *Store) readFileLocked() (*models.ContentDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := models.NewContentDocument(s.clock.Now().UTC())
		if err := s.writeLocked(doc); err != nil {
			return nil, err
		}
		s.log.Info("created content document", "path", s.path)
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", models.ErrStorageUnavailable, s.path, err)
	}

	doc := &models.ContentDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", models.ErrStorageUnavailable, s.path, err)
	}
	doc.Normalize()
	s.cache.Set(documentKey, doc, cache.DefaultExpiration)
	return doc, nil
}

func (s *Store) writeLocked(doc *models.ContentDocument) error {
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding document: %v", models.ErrStorageUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", models.ErrStorageUnavailable, filepath.Dir(s.path), err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.cache.Delete(documentKey)
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, s.path, err)
	}
	s.cache.Set(documentKey, doc, cache.DefaultExpiration)
	return nil
}
