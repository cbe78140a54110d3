// Package gallery turns the content document into page view models:
// tag filtering, lightbox navigation and music embeds.
package gallery

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"portfolio/pkg/models"
)

const dateLayout = "Jan 2, 2006"

// NavLink is one entry of the site navigation.
type NavLink struct {
	Title  string
	URL    string
	Active bool
}

// Item is one rendered entry.
type Item struct {
	Index       int
	Path        string
	Title       string
	Description string
	Date        string
	Tag         string
	ViewURL     string
	EmbedURL    string
}

// Viewer is the lightbox state for ?view=N.
type Viewer struct {
	Item     Item
	Position int
	Total    int
	PrevURL  string
	NextURL  string
	CloseURL string
}

// TagLink is a filter choice on a gallery page.
type TagLink struct {
	Name   string
	URL    string
	Active bool
}

// GalleryPage is the view model of /photos, /drawings and /music.
type GalleryPage struct {
	Title     string
	Section   string
	Nav       []NavLink
	Items     []Item
	Tags      []TagLink
	ActiveTag string
	Viewer    *Viewer
	Empty     bool
}

// Section summarizes one category on the home page.
type Section struct {
	Title string
	URL   string
	Count int
	Cover string
}

// IndexPage is the view model of /.
type IndexPage struct {
	Title           string
	Nav             []NavLink
	Sections        []Section
	BackgroundImage string
}

// AboutPage is the view model of /about.
type AboutPage struct {
	Title           string
	Nav             []NavLink
	HTML            template.HTML
	BackgroundImage string
	DateUpdated     string
}

// CMSPage is the view model of /cms.
type CMSPage struct {
	Title      string
	Nav        []NavLink
	Categories []string
}

// Title title-cases a heading. A cases.Caser holds state, so each call
// builds its own.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Nav returns the site navigation with active marking the current section.
func Nav(active string) []NavLink {
	links := []NavLink{{Title: "Home", URL: "/"}}
	for _, c := range models.Categories {
		links = append(links, NavLink{Title: Title(c.Dir()), URL: "/" + c.Dir()})
	}
	for i := range links {
		links[i].Active = links[i].URL == active
	}
	return links
}

// Filter returns the entries whose tag matches tag, ignoring case.
// An empty tag matches everything.
func Filter(entries []models.ContentEntry, tag string) []models.ContentEntry {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return entries
	}
	var out []models.ContentEntry
	for _, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Category), tag) {
			out = append(out, e)
		}
	}
	return out
}

// Tags returns the distinct entry tags in order of first appearance.
func Tags(entries []models.ContentEntry) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range entries {
		tag := strings.TrimSpace(e.Category)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

// Wrap maps any index onto [0, n), so stepping past either end wraps around.
func Wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// BuildGallery builds the page for a list category. view is the lightbox
// index, or negative for none; out-of-range values wrap.
func BuildGallery(category models.Category, doc *models.ContentDocument, tag string, view int) GalleryPage {
	base := "/" + category.Dir()
	all := doc.Entries(category)
	entries := Filter(all, tag)

	page := GalleryPage{
		Title:     Title(category.Dir()),
		Section:   category.Dir(),
		Nav:       Nav(base),
		ActiveTag: strings.TrimSpace(tag),
		Empty:     len(entries) == 0,
	}

	page.Tags = append(page.Tags, TagLink{Name: "All", URL: pageURL(base, "", -1), Active: page.ActiveTag == ""})
	for _, t := range Tags(all) {
		page.Tags = append(page.Tags, TagLink{
			Name:   t,
			URL:    pageURL(base, t, -1),
			Active: strings.EqualFold(t, page.ActiveTag),
		})
	}

	for i, e := range entries {
		item := Item{
			Index:       i,
			Path:        e.Path,
			Title:       e.Title,
			Description: e.Description,
			Tag:         e.Category,
			ViewURL:     pageURL(base, page.ActiveTag, i),
		}
		if !e.Date.IsZero() {
			item.Date = e.Date.Format(dateLayout)
		}
		if category == models.CategoryMusic {
			if id, ok := YouTubeID(e.Path); ok {
				item.EmbedURL = "https://www.youtube.com/embed/" + id
			}
		}
		page.Items = append(page.Items, item)
	}

	if view >= 0 && len(page.Items) > 0 {
		n := len(page.Items)
		i := Wrap(view, n)
		page.Viewer = &Viewer{
			Item:     page.Items[i],
			Position: i + 1,
			Total:    n,
			PrevURL:  pageURL(base, page.ActiveTag, Wrap(i-1, n)),
			NextURL:  pageURL(base, page.ActiveTag, Wrap(i+1, n)),
			CloseURL: pageURL(base, page.ActiveTag, -1),
		}
	}
	return page
}

// BuildIndex builds the home page.
func BuildIndex(doc *models.ContentDocument) IndexPage {
	page := IndexPage{
		Title:           "Portfolio",
		Nav:             Nav("/"),
		BackgroundImage: doc.About.BackgroundImage,
	}
	for _, c := range models.ListCategories {
		entries := doc.Entries(c)
		s := Section{Title: Title(c.Dir()), URL: "/" + c.Dir(), Count: len(entries)}
		if c != models.CategoryMusic && len(entries) > 0 {
			s.Cover = entries[len(entries)-1].Path
		}
		page.Sections = append(page.Sections, s)
	}
	return page
}

// BuildAbout builds the about page, rendering its text as Markdown.
func BuildAbout(doc *models.ContentDocument) (AboutPage, error) {
	html, err := RenderMarkdown(doc.About.Text)
	if err != nil {
		return AboutPage{}, err
	}
	page := AboutPage{
		Title:           "About",
		Nav:             Nav("/about"),
		HTML:            html,
		BackgroundImage: doc.About.BackgroundImage,
	}
	if !doc.About.DateUpdated.IsZero() {
		page.DateUpdated = doc.About.DateUpdated.Format(dateLayout)
	}
	return page, nil
}

// BuildCMS builds the admin page shell; the page script does the rest.
func BuildCMS() CMSPage {
	page := CMSPage{Title: "Content Manager", Nav: Nav("/cms")}
	for _, c := range models.Categories {
		page.Categories = append(page.Categories, string(c))
	}
	return page
}

// RenderMarkdown converts Markdown to HTML. Raw HTML in the source is
// omitted by the renderer.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// YouTubeID extracts the video id from the usual YouTube URL shapes.
func YouTubeID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	}
	if !validVideoID(id) {
		return "", false
	}
	return id, true
}

func validVideoID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func pageURL(base, tag string, view int) string {
	q := url.Values{}
	if tag != "" {
		q.Set("category", tag)
	}
	if view >= 0 {
		q.Set("view", fmt.Sprint(view))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}
