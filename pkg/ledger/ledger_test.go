package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/pkg/models"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func file(name string) models.StoredFile {
	return models.StoredFile{
		Name:     name,
		Path:     models.PublicPath(models.CategoryPhoto, name),
		Size:     42,
		Category: models.CategoryPhoto,
	}
}

func TestLedger_PendingLifecycle(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	t0 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, l.RecordUpload(ctx, file("a.jpg"), t0))
	require.NoError(t, l.RecordUpload(ctx, file("b.jpg"), t0.Add(time.Minute)))

	pending, err := l.Pending(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "/uploads/photos/a.jpg", pending[0].Path)
	assert.Equal(t, models.CategoryPhoto, pending[0].Category)
	assert.Equal(t, int64(42), pending[0].Size)
	assert.Equal(t, t0, pending[0].UploadedAt)
	assert.Nil(t, pending[0].RegisteredAt)

	pending, err = l.Pending(ctx, t0.Add(30*time.Second))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	ok, err := l.MarkRegistered(ctx, "/uploads/photos/a.jpg", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.MarkRegistered(ctx, "/uploads/photos/a.jpg", t0.Add(3*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "already registered")

	ok, err = l.MarkRegistered(ctx, "https://youtu.be/x", t0)
	require.NoError(t, err)
	assert.False(t, ok, "unknown path")

	e, err := l.Get(ctx, "/uploads/photos/a.jpg")
	require.NoError(t, err)
	require.NotNil(t, e.RegisteredAt)
	assert.Equal(t, t0.Add(2*time.Minute), *e.RegisteredAt)

	pending, err = l.Pending(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "/uploads/photos/b.jpg", pending[0].Path)

	require.NoError(t, l.Forget(ctx, "/uploads/photos/b.jpg"))
	_, err = l.Get(ctx, "/uploads/photos/b.jpg")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLedger_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "uploads.db")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.RecordUpload(ctx, file("a.jpg"), time.Now()))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	_, err = l.Get(ctx, "/uploads/photos/a.jpg")
	assert.NoError(t, err)
}
