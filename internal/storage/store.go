// Package storage holds the bytes behind uploaded case documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("object not found")

// Store is a bucket of document objects addressed by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a per-case key: case/<caseID>/<random>_<filename>.
// The random part keeps every version of a same-named document apart.
func ObjectKey(caseID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return path.Join("case", caseID, fmt.Sprintf("%s_%s", uuid.NewString()[:8], name))
}
