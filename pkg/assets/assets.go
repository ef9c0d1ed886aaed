// Package assets stores uploaded product images on local disk and hands
// back the URL path they are served under. The product row only ever holds
// the URL; serving the bytes is the HTTP layer's job.
package assets

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is the path uploaded images are served under.
const URLPrefix = "/uploads"

// allowedExtensions is the set of accepted image file extensions.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store writes uploaded images into a single directory with random names,
// so original filenames never reach the filesystem.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the upload directory if needed and returns a store over it.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}

	return &Store{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes one uploaded file to disk and returns its public URL path.
// Files with an extension outside the allow-list are rejected.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := uuid.NewString() + ext

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing image file: %w", err)
	}

	s.logger.Debug("stored image", zap.String("name", name))

	return URLPrefix + "/" + name, nil
}

// Remove deletes the image behind a previously returned URL. Unknown URLs
// and already-deleted files are not errors; image cleanup is best effort.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix+"/") {
		return nil
	}

	// Base strips any path traversal out of the stored URL.
	name := filepath.Base(url)

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image %s: %w", name, err)
	}
	return nil
}
