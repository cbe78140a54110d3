package files

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter stands in for a storage.Writer: it notes whether its
// context was already cancelled when Close was called.
type recordingWriter struct {
	ctx              context.Context
	buf              bytes.Buffer
	closed           bool
	cancelledAtClose bool
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *recordingWriter) Close() error {
	w.closed = true
	w.cancelledAtClose = w.ctx.Err() != nil
	return nil
}

func TestCopyAndCommit(t *testing.T) {
	var w *recordingWriter
	open := func(ctx context.Context) io.WriteCloser {
		w = &recordingWriter{ctx: ctx}
		return w
	}

	t.Run("commits a complete copy", func(t *testing.T) {
		require.NoError(t, copyAndCommit(context.Background(), open, strings.NewReader("payload")))
		assert.True(t, w.closed)
		assert.False(t, w.cancelledAtClose)
		assert.Equal(t, "payload", w.buf.String())
	})

	t.Run("abandons a failed copy", func(t *testing.T) {
		readErr := errors.New("connection reset")
		r := io.MultiReader(strings.NewReader("part"), iotest.ErrReader(readErr))
		err := copyAndCommit(context.Background(), open, r)
		require.ErrorIs(t, err, readErr)
		assert.True(t, w.closed)
		assert.True(t, w.cancelledAtClose, "writer context must be cancelled before Close")
	})
}
