package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrUnsafePath   = errors.New("path escapes storage root")
	ErrFileNotFound = errors.New("file not found")
)

// FileStore persists uploaded bytes. Paths returned by Save are opaque to
// callers and must be handed back unchanged to Open and Delete.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op when the file is already gone.
	Delete(ctx context.Context, path string) error
}

var dangerousChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f\x7f]`)

// SanitizeFileName strips directory components and characters that are
// unsafe on common filesystems.
func SanitizeFileName(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = dangerousChars.ReplaceAllString(filename, "_")
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." || filename == ".." || filename == "/" {
		filename = "file"
	}
	return filename
}

// HasTraversal reports whether name contains a parent-directory sequence.
func HasTraversal(name string) bool {
	return strings.Contains(name, "..")
}
