// Package upload stores user images on the local filesystem.
//
// The file type is decided by sniffing the bytes, never by the client's
// filename or Content-Type. Stored files are named image-<xid><ext> and are
// served read-only under PublicPrefix.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/xid"

	"github.com/sakif/minisocial/internal/apperror"
)

// PublicPrefix is the URL path the server mounts the upload directory on.
const PublicPrefix = "/uploads/"

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates dir if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating %s: %w", dir, err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir is the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// MaxBytes is the per-file size cap.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// SaveImage reads r, checks the size cap and the sniffed type, writes the
// file and returns its public reference, e.g. "/uploads/image-abc.png".
func (s *Store) SaveImage(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("upload: reading image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperror.ValidationFailed("image",
			fmt.Sprintf("image must be %d bytes or smaller", s.maxBytes))
	}
	if len(data) == 0 {
		return "", apperror.ValidationFailed("image", "image is empty")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", apperror.ValidationFailed("image", "only image files are allowed")
	}

	name := "image-" + xid.New().String() + mtype.Extension()
	if err := writeFile(filepath.Join(s.dir, name), data); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

// writeFile creates path exclusively so an existing upload is never
// overwritten.
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("upload: creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("upload: writing %s: %w", path, err)
	}
	return f.Close()
}
