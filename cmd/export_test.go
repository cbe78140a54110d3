package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"portfolio/pkg/models"
)

func sampleDocument() *models.ContentDocument {
	doc := models.NewContentDocument(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	doc.Photos = append(doc.Photos, models.ContentEntry{
		Path:  "/uploads/photos/1705314600000-abc.jpg",
		Title: "Sunset & sea",
		Date:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	})
	doc.About.Text = "Hello"
	return doc
}

func TestExportFormats(t *testing.T) {
	doc := sampleDocument()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportData(&buf, "json", doc))
		assert.Contains(t, buf.String(), `"Sunset & sea"`)
		var back models.ContentDocument
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, doc.Photos, back.Photos)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportData(&buf, "yaml", doc))
		var back models.ContentDocument
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		require.Len(t, back.Photos, 1)
		assert.Equal(t, "Sunset & sea", back.Photos[0].Title)
		assert.Equal(t, "Hello", back.About.Text)
	})

	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportData(&buf, "toml", doc))
		var back models.ContentDocument
		_, err := toml.Decode(buf.String(), &back)
		require.NoError(t, err)
		require.Len(t, back.Photos, 1)
		assert.Equal(t, doc.Photos[0].Path, back.Photos[0].Path)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, exportData(&bytes.Buffer{}, "xml", doc))
	})
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "list-content", "list-files", "export", "sweep", "token"} {
		assert.True(t, names[want], want)
	}
}
