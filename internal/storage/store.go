// Package storage persists uploaded images (book covers, avatars) on local
// disk. Files are written under server-controlled names; the client-supplied
// filename only contributes its extension, and only if allow-listed.
//
// Writes here are best-effort side effects of a database mutation: callers
// save the file first and remove it again if the commit fails.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var (
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFormat = errors.New("file format is not allowed")
)

// Store writes and removes uploaded files in a single directory.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// SaveImage validates and persists an uploaded image, returning the stored
// filename. The name is prefix + timestamp + random suffix, so concurrent
// uploads cannot collide and the client name is never used verbatim.
func (s *Store) SaveImage(file *multipart.FileHeader, prefix string) (string, error) {
	if file.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedFormat
	}

	name := fmt.Sprintf("%s_%s_%s%s",
		prefix,
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		ext,
	)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file by name. Path separators are stripped so a
// crafted name cannot escape the upload directory. Missing files are not
// an error: removal is cleanup, not bookkeeping.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

// URL maps a stored filename to its public path.
func (s *Store) URL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}
