package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EntryPayload is the validated body of an add request. Exactly one of Entry
// and About is set, selected by Category.
type EntryPayload struct {
	Category Category
	Entry    *ContentEntry
	About    *AboutUpdate
}

// AboutUpdate carries the about fields to merge. Nil fields are left alone.
type AboutUpdate struct {
	Text            *string `json:"text,omitempty"`
	BackgroundImage *string `json:"backgroundImage,omitempty"`
}

// EntryUpdate carries the entry fields to merge. The path is the entry's
// identity and cannot be changed.
type EntryUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u EntryUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil
}

type entryInput struct {
	Path        string     `json:"path"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	Category    string     `json:"category"`
}

// DecodeEntryPayload turns the loosely typed {type, entry} pair of the HTTP
// API into an EntryPayload. Unknown types fail with ErrInvalidCategory and
// malformed entries with ErrInvalidEntry. A missing date is left zero for the
// caller to stamp.
func DecodeEntryPayload(kind string, raw json.RawMessage) (EntryPayload, error) {
	category, err := ParseCategory(kind)
	if err != nil {
		return EntryPayload{}, err
	}
	if !isObject(raw) {
		return EntryPayload{}, fmt.Errorf("%w: entry must be an object", ErrInvalidEntry)
	}

	if category == CategoryAbout {
		var about AboutUpdate
		if err := json.Unmarshal(raw, &about); err != nil {
			return EntryPayload{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		return EntryPayload{Category: category, About: &about}, nil
	}

	var in entryInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return EntryPayload{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if strings.TrimSpace(in.Path) == "" {
		return EntryPayload{}, fmt.Errorf("%w: path is required", ErrInvalidEntry)
	}
	entry := &ContentEntry{
		Path:        in.Path,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
	}
	if in.Date != nil {
		entry.Date = in.Date.UTC()
	}
	return EntryPayload{Category: category, Entry: entry}, nil
}

// DecodeEntryUpdate validates the body of an edit request.
func DecodeEntryUpdate(raw json.RawMessage) (EntryUpdate, error) {
	if !isObject(raw) {
		return EntryUpdate{}, fmt.Errorf("%w: entry must be an object", ErrInvalidEntry)
	}
	var u EntryUpdate
	if err := json.Unmarshal(raw, &u); err != nil {
		return EntryUpdate{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if u.IsEmpty() {
		return EntryUpdate{}, fmt.Errorf("%w: nothing to update", ErrInvalidEntry)
	}
	return u, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
