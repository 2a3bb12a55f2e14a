// Package blob stores uploaded note files. Files are addressed by the locator
// returned from Put, which is what a note records as its fileUrl.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidLocator is returned when a locator does not belong to the store.
var ErrInvalidLocator = errors.New("invalid blob locator")

// Store persists opaque file contents.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, locator string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewKey derives a unique object key from a client-supplied file name.
func NewKey(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file.pdf"
	}
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), base)
}

// keyFromLocator returns the final path segment of locator, which is the key
// both backends hand out.
func keyFromLocator(locator, prefix string) (string, error) {
	trimmed := strings.TrimSpace(locator)
	if prefix != "" {
		if !strings.HasPrefix(trimmed, prefix) {
			return "", fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
		}
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	key := path.Base("/" + strings.TrimLeft(trimmed, "/"))
	if key == "/" || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}
	return key, nil
}
