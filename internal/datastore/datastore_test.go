package datastore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seywald/marque/internal/bookmark"
)

func testFile(t *testing.T) *File {
	t.Helper()
	ds, err := NewFile(filepath.Join(t.TempDir(), "datastore.gz"))
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func link(id int, url string) *bookmark.Bookmark {
	b := &bookmark.Bookmark{
		ID:      id,
		URL:     url,
		Title:   url,
		Tags:    []string{"test"},
		Created: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
	b.Finalize()
	return b
}

func TestReadAll_MissingFileIsNotInitialized(t *testing.T) {
	ds := testFile(t)
	if ds.Exists() {
		t.Fatal("fresh datastore should not exist yet")
	}
	if _, err := ds.ReadAll(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("error = %v, want ErrNotInitialized", err)
	}
}

func TestReadAll_EmptyFileIsNotInitialized(t *testing.T) {
	ds := testFile(t)
	if err := os.WriteFile(ds.Path(), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.ReadAll(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("error = %v, want ErrNotInitialized", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	ds := testFile(t)
	in := []*bookmark.Bookmark{link(0, "https://a.example"), link(1, "https://b.example")}
	if err := ds.WriteAll(in); err != nil {
		t.Fatal(err)
	}
	if !ds.Exists() {
		t.Fatal("datastore should exist after a write")
	}

	out, err := ds.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("read %d bookmarks, want 2", len(out))
	}
	if out[0].URL != "https://a.example" || out[1].ID != 1 {
		t.Errorf("round trip altered content: %+v", out)
	}
	if out[0].Tags[0] != "test" {
		t.Errorf("tags lost in round trip: %+v", out[0].Tags)
	}
}

func TestWriteAll_NilCollection(t *testing.T) {
	ds := testFile(t)
	if err := ds.WriteAll(nil); err != nil {
		t.Fatal(err)
	}
	out, err := ds.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty collection, got %d", len(out))
	}
}

func TestWriteAll_Deterministic(t *testing.T) {
	ds := testFile(t)
	in := []*bookmark.Bookmark{link(0, "https://a.example"), link(1, "https://b.example")}

	if err := ds.WriteAll(in); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatal(err)
	}

	if err := ds.WriteAll(in); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("saving an unchanged collection should produce byte-identical files")
	}
}

func TestWriteAll_LeavesNoTempFiles(t *testing.T) {
	ds := testFile(t)
	if err := ds.WriteAll([]*bookmark.Bookmark{link(0, "https://a.example")}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Dir(ds.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the datastore file, found %d entries", len(entries))
	}
}

func TestReadAll_CorruptFile(t *testing.T) {
	ds := testFile(t)
	if err := os.WriteFile(ds.Path(), []byte("not gzip at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.ReadAll(); err == nil {
		t.Fatal("corrupt datastore should fail to load")
	}
}
