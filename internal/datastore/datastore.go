// Package datastore persists the whole bookmark collection in a single
// gzip-compressed JSON file with atomic replace semantics.
package datastore

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/seywald/marque/internal/apperr"
	"github.com/seywald/marque/internal/bookmark"
)

// ErrNotInitialized is returned by ReadAll when the datastore file does
// not exist yet (or is empty). Callers treat this as a first run and seed
// the collection instead of failing.
var ErrNotInitialized = errors.New("datastore not initialized")

// Provider is the persistence collaborator consumed by the store.
type Provider interface {
	// ReadAll loads the whole collection. A missing file is ErrNotInitialized.
	ReadAll() ([]*bookmark.Bookmark, error)
	// WriteAll atomically replaces the whole collection on disk.
	WriteAll(bookmarks []*bookmark.Bookmark) error
	// Exists reports whether the backing file has been created.
	Exists() bool
	// Path returns the backing file path.
	Path() string
}

// File implements Provider backed by a local file.
type File struct {
	path string
}

// NewFile creates a file-backed datastore at path. The parent directory
// is created if needed.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("datastore: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create datastore dir: %v", apperr.ErrPersistence, err)
	}
	return &File{path: abs}, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Exists reports whether the backing file has been created.
func (f *File) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

// ReadAll loads and decodes the collection from disk.
func (f *File) ReadAll() ([]*bookmark.Bookmark, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrPersistence, f.path, err)
	}
	if len(data) == 0 {
		return nil, ErrNotInitialized
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %v", apperr.ErrPersistence, f.path, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %v", apperr.ErrPersistence, f.path, err)
	}

	var bookmarks []*bookmark.Bookmark
	if err := json.Unmarshal(raw, &bookmarks); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", apperr.ErrPersistence, f.path, err)
	}
	return bookmarks, nil
}

// WriteAll serializes the collection and atomically replaces the backing
// file: tmp file → fsync → rename. Readers never observe a partial write.
func (f *File) WriteAll(bookmarks []*bookmark.Bookmark) error {
	payload, err := encode(bookmarks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".marque-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", apperr.ErrPersistence, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(payload); err != nil {
		return fmt.Errorf("%w: write temp: %v", apperr.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: fsync: %v", apperr.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", apperr.ErrPersistence, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", apperr.ErrPersistence, err)
	}
	success = true
	return nil
}

// encode produces the gzip-compressed JSON payload. The output is
// deterministic for identical input, so saving twice without mutation
// yields byte-identical files.
func encode(bookmarks []*bookmark.Bookmark) ([]byte, error) {
	if bookmarks == nil {
		bookmarks = []*bookmark.Bookmark{}
	}
	raw, err := json.Marshal(bookmarks)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", apperr.ErrPersistence, err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("%w: compress: %v", apperr.ErrPersistence, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: compress: %v", apperr.ErrPersistence, err)
	}
	return buf.Bytes(), nil
}
