// Package storage puts media objects into a bucket and removes them again.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned by Delete when the key is unknown to the store.
var ErrObjectNotFound = errors.New("object not found")

// Object is a blob to upload.
type Object struct {
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
}

// StoredObject is where an uploaded object can be fetched and deleted.
type StoredObject struct {
	Key string
	URL string
}

// ObjectStore is implemented by every storage driver.
type ObjectStore interface {
	Upload(ctx context.Context, obj Object) (StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// BuildKey returns "<prefix>/<uuid>-<filename>" using only the base name of filename.
func BuildKey(prefix, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		name = "file"
	}

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%s-%s", uuid.NewString(), name)
	}
	return fmt.Sprintf("%s/%s-%s", prefix, uuid.NewString(), name)
}

// publicURL joins a base URL and an object key.
func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
