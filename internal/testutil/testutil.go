// Package testutil provides shared test helpers for setting up datastores
// and history databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/seywald/marque/internal/bookmark"
	"github.com/seywald/marque/internal/datastore"
	"github.com/seywald/marque/internal/history"
	"github.com/seywald/marque/internal/store"
)

// TestDatastore creates a file provider in a temporary directory.
func TestDatastore(t *testing.T) *datastore.File {
	t.Helper()
	ds, err := datastore.NewFile(t.TempDir() + "/datastore.gz")
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

// TestStore creates an owner store over a temporary datastore. When
// bookmarks are given they are written first, so the store loads them
// instead of seeding demo content.
func TestStore(t *testing.T, bookmarks ...*bookmark.Bookmark) *store.Store {
	t.Helper()
	ds := TestDatastore(t)
	if len(bookmarks) > 0 {
		if err := ds.WriteAll(bookmarks); err != nil {
			t.Fatal(err)
		}
	}
	s, err := store.New(ds, store.Options{IsOwner: true})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// TestHistory creates a temporary history database that is automatically
// cleaned up.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "marque-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name(), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Link builds a finalized bookmark for fixtures.
func Link(id int, url, title, tags string, private bool) *bookmark.Bookmark {
	b := &bookmark.Bookmark{
		ID:      id,
		URL:     url,
		Title:   title,
		Private: private,
		Created: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
	b.SetTagsString(tags)
	b.Finalize()
	return b
}
