// Package objectstore stores raw resource bytes and hands back durable URLs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// DefaultFolder receives uploads that name no folder.
const DefaultFolder = "uploads"

// ErrObjectStore wraps every failure reported by a backend.
var ErrObjectStore = errors.New("object store failure")

// Object is a single upload. Body must be rewindable so retries can resend it.
type Object struct {
	Key         string
	Body        io.ReadSeeker
	Size        int64
	ContentType string
}

// Store is the contract the ingestion path depends on.
type Store interface {
	// Put uploads the object and returns its durable URL.
	Put(ctx context.Context, obj Object) (string, error)
	// Remove deletes the object. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// Key builds the object key for an upload: <folder>/<id>-<file name>.
func Key(folder string, id uuid.UUID, filename string) string {
	folder = cleanSegment(folder)
	if folder == "" {
		folder = DefaultFolder
	}
	name := cleanSegment(filename)
	if name == "" {
		name = "file"
	}
	return path.Join(folder, fmt.Sprintf("%s-%s", id.String(), name))
}

// PublicURL joins a public base URL and an object key, escaping each segment.
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

func cleanSegment(s string) string {
	s = strings.TrimSpace(path.Base(strings.ReplaceAll(s, "\\", "/")))
	if s == "." || s == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, s)
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrObjectStore, op, err)
}
