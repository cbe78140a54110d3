package models

import (
	"strings"
	"time"
)

// Category identifies a content partition: one list in the content document
// and one directory in the file store.
type Category string

const (
	CategoryPhoto   Category = "photo"
	CategoryDrawing Category = "drawing"
	CategoryMusic   Category = "music"
	CategoryAbout   Category = "about"
)

// Categories lists every recognized category in display order.
var Categories = []Category{CategoryPhoto, CategoryDrawing, CategoryMusic, CategoryAbout}

// ListCategories are the categories backed by an ordered list of entries.
var ListCategories = []Category{CategoryPhoto, CategoryDrawing, CategoryMusic}

// ParseCategory validates a category tag coming from a request or flag.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	switch c {
	case CategoryPhoto, CategoryDrawing, CategoryMusic, CategoryAbout:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// ParseListCategory is ParseCategory restricted to list-backed categories.
func ParseListCategory(s string) (Category, error) {
	c, err := ParseCategory(s)
	if err != nil {
		return "", err
	}
	if !c.IsList() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Dir returns the uploads subdirectory for the category.
func (c Category) Dir() string {
	switch c {
	case CategoryPhoto:
		return "photos"
	case CategoryDrawing:
		return "drawings"
	case CategoryMusic:
		return "music"
	case CategoryAbout:
		return "about"
	}
	return ""
}

// CategoryFromDir is the inverse of Dir.
func CategoryFromDir(dir string) (Category, error) {
	for _, c := range Categories {
		if c.Dir() == dir {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// IsList reports whether the category holds a list of entries.
func (c Category) IsList() bool {
	return c == CategoryPhoto || c == CategoryDrawing || c == CategoryMusic
}

// ContentEntry is one gallery item: a photo, a drawing or a music track.
type ContentEntry struct {
	Path        string    `json:"path" yaml:"path" toml:"path"`
	Title       string    `json:"title" yaml:"title" toml:"title"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	Date        time.Time `json:"date" yaml:"date" toml:"date"`
	// Category is an optional free-form tag used to filter a gallery page
	// (e.g. "Pencils" within drawings).
	Category string `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
}

// AboutRecord is the singleton about page.
type AboutRecord struct {
	Text            string    `json:"text" yaml:"text" toml:"text"`
	BackgroundImage string    `json:"backgroundImage" yaml:"backgroundImage" toml:"backgroundImage"`
	DateUpdated     time.Time `json:"dateUpdated" yaml:"dateUpdated" toml:"dateUpdated"`
}

// ContentDocument is the root of the persisted content.
type ContentDocument struct {
	Photos   []ContentEntry `json:"photos" yaml:"photos" toml:"photos"`
	Drawings []ContentEntry `json:"drawings" yaml:"drawings" toml:"drawings"`
	Music    []ContentEntry `json:"music" yaml:"music" toml:"music"`
	About    AboutRecord    `json:"about" yaml:"about" toml:"about"`
}

// NewContentDocument returns the default document: empty lists and an empty
// about record stamped with now.
func NewContentDocument(now time.Time) *ContentDocument {
	return &ContentDocument{
		Photos:   []ContentEntry{},
		Drawings: []ContentEntry{},
		Music:    []ContentEntry{},
		About:    AboutRecord{DateUpdated: now},
	}
}

// Entries returns the list for a category, or nil for about/unknown.
func (d *ContentDocument) Entries(c Category) []ContentEntry {
	switch c {
	case CategoryPhoto:
		return d.Photos
	case CategoryDrawing:
		return d.Drawings
	case CategoryMusic:
		return d.Music
	}
	return nil
}

// SetEntries replaces the list for a category.
func (d *ContentDocument) SetEntries(c Category, entries []ContentEntry) error {
	if entries == nil {
		entries = []ContentEntry{}
	}
	switch c {
	case CategoryPhoto:
		d.Photos = entries
	case CategoryDrawing:
		d.Drawings = entries
	case CategoryMusic:
		d.Music = entries
	default:
		return ErrInvalidCategory
	}
	return nil
}

// Normalize replaces nil lists with empty ones so they serialize as [].
func (d *ContentDocument) Normalize() {
	if d.Photos == nil {
		d.Photos = []ContentEntry{}
	}
	if d.Drawings == nil {
		d.Drawings = []ContentEntry{}
	}
	if d.Music == nil {
		d.Music = []ContentEntry{}
	}
}

// Clone returns a deep copy of the document.
func (d *ContentDocument) Clone() *ContentDocument {
	return &ContentDocument{
		Photos:   append([]ContentEntry{}, d.Photos...),
		Drawings: append([]ContentEntry{}, d.Drawings...),
		Music:    append([]ContentEntry{}, d.Music...),
		About:    d.About,
	}
}

// References reports whether any entry, or the about background, uses path.
func (d *ContentDocument) References(path string) bool {
	if path == "" {
		return false
	}
	if d.About.BackgroundImage == path {
		return true
	}
	for _, c := range ListCategories {
		for _, e := range d.Entries(c) {
			if e.Path == path {
				return true
			}
		}
	}
	return false
}

// StoredFile describes an uploaded blob in the file store.
type StoredFile struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Size     int64    `json:"size,omitempty"`
	Category Category `json:"-"`
}

// PublicPath returns the URL path under which a stored file is served.
func PublicPath(c Category, name string) string {
	return "/uploads/" + c.Dir() + "/" + name
}

// User is the identity returned by the auth endpoints.
type User struct {
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}
