package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	locator, err := s.Put(ctx, "k1-notes.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/k1-notes.pdf", locator)

	data, err := os.ReadFile(filepath.Join(dir, "k1-notes.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	_, err = s.Put(ctx, "k1-notes.pdf", strings.NewReader("again"), 5, "application/pdf")
	assert.Error(t, err, "existing keys are never overwritten")

	require.NoError(t, s.Delete(ctx, locator))
	_, err = os.Stat(filepath.Join(dir, "k1-notes.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, locator), "deleting a missing file is not an error")
	assert.ErrorIs(t, s.Delete(ctx, "https://cdn.example.com/k1-notes.pdf"), ErrInvalidLocator)
}

func TestLocalStore_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"), "/uploads")
	require.NoError(t, err)

	locator, err := s.Put(context.Background(), "../escape.pdf", strings.NewReader("x"), 1, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.pdf", locator)
	assert.FileExists(t, filepath.Join(dir, "uploads", "escape.pdf"))
}
