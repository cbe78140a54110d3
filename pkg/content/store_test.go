package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/pkg/models"
	"portfolio/pkg/testutil"
)

func newTestStore(t *testing.T) (*Store, *testutil.StubClock) {
	t.Helper()
	clk := testutil.FixedClock()
	path := filepath.Join(t.TempDir(), "data", "content.json")
	return NewStore(path, clk, time.Minute, testutil.DiscardLogger()), clk
}

func TestLoadCreatesDefaultDocument(t *testing.T) {
	store, clk := newTestStore(t)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Photos)
	assert.NotNil(t, doc.Photos)
	assert.Empty(t, doc.About.Text)
	assert.Equal(t, clk.Now(), doc.About.DateUpdated)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"photos":[],"drawings":[],"music":[],"about":{"text":"","backgroundImage":"","dateUpdated":"2024-01-15T10:30:00Z"}}`, string(raw))
	assert.Contains(t, string(raw), "\n  \"photos\"")
}

func TestLoadUnwritablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewStore(filepath.Join(blocker, "content.json"), testutil.FixedClock(), time.Minute, testutil.DiscardLogger())
	_, err := store.Load()
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestLoadCorruptDocument(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"photos":[`), 0644))

	_, err := store.Load()
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestLoadDropsUnknownKeys(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"photos":[{"path":"a"}],"musics":[{"path":"b"}]}`), 0644))

	require.NoError(t, store.AppendEntry(models.CategoryMusic, models.ContentEntry{Path: "c"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "musics")
	assert.Contains(t, string(raw), `"drawings": []`)
}

func TestAppendEntryKeepsOrder(t *testing.T) {
	store, _ := newTestStore(t)

	for _, c := range models.ListCategories {
		for i := 0; i < 3; i++ {
			entry := models.ContentEntry{Path: fmt.Sprintf("/uploads/%s/%d.jpg", c.Dir(), i), Title: "t"}
			require.NoError(t, store.AppendEntry(c, entry))

			doc, err := store.Load()
			require.NoError(t, err)
			list := doc.Entries(c)
			assert.Equal(t, entry, list[len(list)-1])
		}
	}
}

func TestAppendEntryRejectsAbout(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.AppendEntry(models.CategoryAbout, models.ContentEntry{Path: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
	err = store.AppendEntry(models.Category("musics"), models.ContentEntry{Path: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestRemoveEntry(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AppendEntry(models.CategoryPhoto, models.ContentEntry{Path: "a"}))
	require.NoError(t, store.AppendEntry(models.CategoryPhoto, models.ContentEntry{Path: "b"}))
	require.NoError(t, store.AppendEntry(models.CategoryPhoto, models.ContentEntry{Path: "a"}))

	n, err := store.RemoveEntry(models.CategoryPhoto, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Len(t, doc.Photos, 1)
	assert.Equal(t, "b", doc.Photos[0].Path)
}

func TestRemoveEntryMissingIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AppendEntry(models.CategoryDrawing, models.ContentEntry{Path: "a"}))
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	n, err := store.RemoveEntry(models.CategoryDrawing, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateEntry(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AppendEntry(models.CategoryPhoto, models.ContentEntry{Path: "a", Title: "old", Description: "keep"}))

	title := "new"
	n, err := store.UpdateEntry(models.CategoryPhoto, "a", models.EntryUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", doc.Photos[0].Title)
	assert.Equal(t, "keep", doc.Photos[0].Description)

	_, err = store.UpdateEntry(models.CategoryPhoto, "missing", models.EntryUpdate{Title: &title})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateAboutMergesAndAdvancesDate(t *testing.T) {
	store, clk := newTestStore(t)

	text := "hello"
	about, err := store.UpdateAbout(models.AboutUpdate{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "hello", about.Text)
	first := about.DateUpdated

	bg := "/uploads/about/bg.jpg"
	clk.Advance(time.Minute)
	about, err = store.UpdateAbout(models.AboutUpdate{BackgroundImage: &bg})
	require.NoError(t, err)
	assert.Equal(t, "hello", about.Text)
	assert.Equal(t, bg, about.BackgroundImage)
	assert.True(t, about.DateUpdated.After(first))

	clk.Advance(-time.Hour)
	again, err := store.UpdateAbout(models.AboutUpdate{})
	require.NoError(t, err)
	assert.False(t, again.DateUpdated.Before(about.DateUpdated))
}

func TestLoadReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AppendEntry(models.CategoryPhoto, models.ContentEntry{Path: "a", Title: "t"}))

	doc, err := store.Load()
	require.NoError(t, err)
	doc.Photos[0].Title = "mutated"

	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "t", again.Photos[0].Title)
}

func TestConcurrentAppends(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.AppendEntry(models.CategoryPhoto, models.ContentEntry{Path: fmt.Sprintf("p%d", i)}))
		}(i)
	}
	wg.Wait()

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, doc.Photos, 40)
}

func TestLoadDuringWrites(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AppendEntry(models.CategoryDrawing, models.ContentEntry{Path: "d", Title: "v0"}))

	const rounds = 50
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				text := fmt.Sprintf("writer %d round %d", w, i)
				_, err := store.UpdateAbout(models.AboutUpdate{Text: &text})
				assert.NoError(t, err)
				title := fmt.Sprintf("v%d-%d", w, i)
				_, err = store.UpdateEntry(models.CategoryDrawing, "d", models.EntryUpdate{Title: &title})
				assert.NoError(t, err)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				doc, err := store.Load()
				if !assert.NoError(t, err) {
					return
				}
				assert.Len(t, doc.Drawings, 1)
			}
		}()
	}
	wg.Wait()

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, doc.About.Text, "round 49")
	assert.Regexp(t, `^v\d-49$`, doc.Drawings[0].Title)
}

func TestWatchPicksUpHandEdits(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	edited := models.NewContentDocument(time.Now().UTC())
	edited.Photos = append(edited.Photos, models.ContentEntry{Path: "hand-edited"})
	raw, err := json.Marshal(edited)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), raw, 0644))

	assert.Eventually(t, func() bool {
		doc, err := store.Load()
		return err == nil && len(doc.Photos) == 1 && doc.Photos[0].Path == "hand-edited"
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
