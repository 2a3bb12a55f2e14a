package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("../../etc/Lecture 1 (final).pdf")
	assert.True(t, strings.HasSuffix(key, "-Lecture_1_final_.pdf"), key)
	assert.NotContains(t, key, "/")

	assert.NotEqual(t, NewKey("a.pdf"), NewKey("a.pdf"))
	assert.True(t, strings.HasSuffix(NewKey(""), "-file.pdf"))
	assert.True(t, strings.HasSuffix(NewKey(`C:\docs\notes.pdf`), "-notes.pdf"))
}

func TestKeyFromLocator(t *testing.T) {
	key, err := keyFromLocator("/uploads/123-abc-notes.pdf", "/uploads/")
	require.NoError(t, err)
	assert.Equal(t, "123-abc-notes.pdf", key)

	_, err = keyFromLocator("https://elsewhere/x.pdf", "/uploads/")
	assert.ErrorIs(t, err, ErrInvalidLocator)

	_, err = keyFromLocator("/uploads/", "/uploads/")
	assert.ErrorIs(t, err, ErrInvalidLocator)
}
