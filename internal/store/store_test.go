package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/seywald/marque/internal/apperr"
	"github.com/seywald/marque/internal/bookmark"
	"github.com/seywald/marque/internal/datastore"
)

func testProvider(t *testing.T) *datastore.File {
	t.Helper()
	ds, err := datastore.NewFile(filepath.Join(t.TempDir(), "datastore.gz"))
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func link(id int, url, tags string, private bool) *bookmark.Bookmark {
	b := &bookmark.Bookmark{
		ID:      id,
		URL:     url,
		Title:   url,
		Private: private,
		Created: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
	b.SetTagsString(tags)
	b.Finalize()
	return b
}

func seedProvider(t *testing.T, bookmarks ...*bookmark.Bookmark) *datastore.File {
	t.Helper()
	ds := testProvider(t)
	if err := ds.WriteAll(bookmarks); err != nil {
		t.Fatal(err)
	}
	return ds
}

func ownerStore(t *testing.T, ds datastore.Provider) *Store {
	t.Helper()
	s, err := New(ds, Options{IsOwner: true})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew_SeedsOwnerOnFirstRun(t *testing.T) {
	ds := testProvider(t)
	s := ownerStore(t, ds)

	if got := s.Count(bookmark.VisibilityAll); got != 2 {
		t.Fatalf("seeded store holds %d bookmarks, want 2", got)
	}
	if got := s.Count(bookmark.VisibilityPrivate); got != 1 {
		t.Errorf("seeded store holds %d private bookmarks, want 1", got)
	}
	if !ds.Exists() {
		t.Error("seeding should persist the datastore")
	}
}

func TestNew_NonOwnerMissingDatastoreStaysEmpty(t *testing.T) {
	ds := testProvider(t)
	s, err := New(ds, Options{IsOwner: false})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Count(bookmark.VisibilityAll); got != 0 {
		t.Errorf("non-owner store holds %d bookmarks, want 0", got)
	}
	if ds.Exists() {
		t.Error("non-owner must never write the datastore")
	}
}

func TestNew_NonOwnerExcludesPrivate(t *testing.T) {
	ds := seedProvider(t,
		link(0, "https://a.example", "public .secret", false),
		link(1, "https://b.example", "work", true),
	)
	s, err := New(ds, Options{IsOwner: false})
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Count(bookmark.VisibilityAll); got != 1 {
		t.Fatalf("non-owner sees %d bookmarks, want 1", got)
	}
	if _, err := s.Get(1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("private bookmark should be invisible, got %v", err)
	}
	b, err := s.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.TagsString(); got != "public" {
		t.Errorf("private tag markers not stripped: %q", got)
	}
}

func TestNew_HidePublicLinks(t *testing.T) {
	ds := seedProvider(t, link(0, "https://a.example", "", false))
	s, err := New(ds, Options{IsOwner: false, HidePublicLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Count(bookmark.VisibilityAll); got != 0 {
		t.Errorf("hidden collection exposes %d bookmarks", got)
	}

	// The owner still sees everything.
	owner, err := New(ds, Options{IsOwner: true, HidePublicLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := owner.Count(bookmark.VisibilityAll); got != 1 {
		t.Errorf("owner sees %d bookmarks, want 1", got)
	}
}

func TestNextID_MonotonicNoReuse(t *testing.T) {
	s := ownerStore(t, seedProvider(t,
		link(0, "https://a.example", "", false),
		link(5, "https://b.example", "", false),
	))

	if got := s.NextID(); got != 6 {
		t.Fatalf("next id = %d, want 6", got)
	}

	// Deleting the max-id bookmark frees its id for the next creation;
	// lower gaps are never refilled.
	b, err := s.Get(5)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(b, false); err != nil {
		t.Fatal(err)
	}
	if got := s.NextID(); got != 1 {
		t.Fatalf("next id after removing max = %d, want 1", got)
	}
}

func TestNextID_EmptyStoreStartsAtZero(t *testing.T) {
	s := ownerStore(t, seedProvider(t))
	if got := s.NextID(); got != 0 {
		t.Errorf("next id = %d, want 0", got)
	}
}

func TestAddOrSet_AssignsDraftID(t *testing.T) {
	s := ownerStore(t, seedProvider(t))

	draft := bookmark.New()
	draft.URL = "https://a.example"
	if err := s.AddOrSet(draft, false); err != nil {
		t.Fatal(err)
	}
	if draft.ID != 0 {
		t.Errorf("first id = %d, want 0", draft.ID)
	}
	if len(draft.ShortHash) != bookmark.HashLength {
		t.Errorf("finalize should assign the permalink hash")
	}

	second := bookmark.New()
	second.URL = "https://b.example"
	if err := s.AddOrSet(second, false); err != nil {
		t.Fatal(err)
	}
	if second.ID != 1 {
		t.Errorf("second id = %d, want 1", second.ID)
	}
}

func TestSet_RejectsDraft(t *testing.T) {
	s := ownerStore(t, seedProvider(t))
	if err := s.Set(bookmark.New(), false); !errors.Is(err, apperr.ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestMutations_RequireOwner(t *testing.T) {
	ds := seedProvider(t, link(0, "https://a.example", "", false))
	s, err := New(ds, Options{IsOwner: false})
	if err != nil {
		t.Fatal(err)
	}

	b := link(0, "https://a.example", "", false)
	if err := s.Set(b, false); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Set error = %v, want ErrUnauthorized", err)
	}
	if err := s.AddOrSet(bookmark.New(), false); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("AddOrSet error = %v, want ErrUnauthorized", err)
	}
	if err := s.Remove(b, false); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Remove error = %v, want ErrUnauthorized", err)
	}
	if err := s.Save(); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Save error = %v, want ErrUnauthorized", err)
	}
}

func TestRemove_MissingIsNotFound(t *testing.T) {
	s := ownerStore(t, seedProvider(t))
	if err := s.Remove(link(9, "https://x.example", "", false), false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFindByURL_LastWriteWins(t *testing.T) {
	s := ownerStore(t, seedProvider(t))

	first := link(0, "https://dup.example", "", false)
	second := link(1, "https://dup.example", "", false)
	if err := s.Set(first, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(second, false); err != nil {
		t.Fatal(err)
	}

	if got := s.FindByURL("https://dup.example"); got == nil || got.ID != 1 {
		t.Errorf("url index should point at the last writer, got %+v", got)
	}
	if got := s.FindByURL("https://unknown.example"); got != nil {
		t.Errorf("unknown url should yield nil, got %+v", got)
	}

	// Both records remain retrievable by id regardless of the url index.
	if _, err := s.Get(0); err != nil {
		t.Errorf("duplicate-url bookmark lost: %v", err)
	}
}

func TestAll_SortedSnapshot(t *testing.T) {
	s := ownerStore(t, seedProvider(t,
		link(0, "https://a.example", "", false),
		link(2, "https://b.example", "", false),
		link(1, "https://c.example", "", false),
	))
	all := s.All(bookmark.OrderDesc)
	if len(all) != 3 {
		t.Fatalf("snapshot holds %d bookmarks, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Created.Before(all[i].Created) {
			t.Fatalf("snapshot not newest-first at %d", i)
		}
	}
}

func TestSaveReloadRoundTrip(t *testing.T) {
	ds := seedProvider(t, link(0, "https://a.example", "golang", false))
	s := ownerStore(t, ds)

	b, err := s.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	b.Title = "renamed"
	if err := s.Set(b, true); err != nil {
		t.Fatal(err)
	}

	reopened := ownerStore(t, ds)
	got, err := reopened.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "renamed" {
		t.Errorf("title = %q, want renamed", got.Title)
	}
}

func TestReload_PicksUpExternalChanges(t *testing.T) {
	ds := seedProvider(t, link(0, "https://a.example", "", false))
	s := ownerStore(t, ds)

	// Another process replaces the datastore.
	if err := ds.WriteAll([]*bookmark.Bookmark{
		link(0, "https://a.example", "", false),
		link(1, "https://b.example", "", false),
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := s.Count(bookmark.VisibilityAll); got != 2 {
		t.Errorf("reloaded store holds %d bookmarks, want 2", got)
	}
}

func TestLastChecksum_TracksWrites(t *testing.T) {
	ds := seedProvider(t, link(0, "https://a.example", "", false))
	s := ownerStore(t, ds)

	before := s.LastChecksum()
	if before == "" {
		t.Fatal("checksum should be set after load")
	}

	b, err := s.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	b.Title = "changed"
	if err := s.Set(b, true); err != nil {
		t.Fatal(err)
	}
	if s.LastChecksum() == before {
		t.Error("checksum should change after a save")
	}
}
