// Package store holds the authoritative in-memory bookmark collection,
// its lookup indexes and the persistence round-trip.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/seywald/marque/internal/apperr"
	"github.com/seywald/marque/internal/bookmark"
	"github.com/seywald/marque/internal/checksum"
	"github.com/seywald/marque/internal/datastore"
	"github.com/seywald/marque/internal/pagecache"
)

// Options configure a Store at construction time. Ownership is decided
// once per store instance and never flips afterwards: the session layer
// constructs a fresh store per caller.
type Options struct {
	// IsOwner grants mutation rights and access to private bookmarks.
	IsOwner bool
	// HidePublicLinks loads an empty collection for non-owners.
	HidePublicLinks bool
	// Cache receives an invalidation signal on every save.
	Cache pagecache.Invalidator
	Logger *slog.Logger
}

// Store is the bookmark collection with stable-id indexing.
//
// Two explicit maps back every lookup: id → record (authoritative) and
// url → id (advisory reverse index, last write wins on duplicate URLs).
// Positional order is never exposed; All() computes a fresh sorted view.
//
// The mutex only guards against watcher-driven reloads racing readers;
// write arbitration across processes is the atomic file replace plus the
// external advisory lock held around Save.
type Store struct {
	io      datastore.Provider
	cache   pagecache.Invalidator
	isOwner bool
	logger  *slog.Logger

	mu      sync.RWMutex
	byID    map[int]*bookmark.Bookmark
	byURL   map[string]int
	lastSum string
}

// New loads a store from the datastore. A missing or empty datastore is
// not an error: for the owner it is seeded with demo content, for
// non-owners it stays empty.
func New(io datastore.Provider, opts Options) (*Store, error) {
	if opts.Cache == nil {
		opts.Cache = pagecache.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Store{
		io:      io,
		cache:   opts.Cache,
		isOwner: opts.IsOwner,
		logger:  opts.Logger,
	}

	if opts.HidePublicLinks && !opts.IsOwner {
		s.byID = map[int]*bookmark.Bookmark{}
		s.byURL = map[string]int{}
		return s, nil
	}

	if err := s.load(true); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the collection from disk and rebuilds the indexes. seedable
// marks the initial load, where a missing datastore triggers seeding
// instead of an error; on later reloads the same condition is a
// persistence failure.
func (s *Store) load(seedable bool) error {
	list, err := s.io.ReadAll()
	switch {
	case err == nil:
	case seedable && err == datastore.ErrNotInitialized:
		s.byID = map[int]*bookmark.Bookmark{}
		s.byURL = map[string]int{}
		if s.isOwner {
			return s.seed()
		}
		return nil
	case err == datastore.ErrNotInitialized:
		return fmt.Errorf("%w: datastore vanished after initial load", apperr.ErrPersistence)
	default:
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[int]*bookmark.Bookmark, len(list))
	s.byURL = make(map[string]int, len(list))
	for _, b := range list {
		if !s.isOwner && b.Private {
			continue
		}
		if !s.isOwner {
			b.SetTagsString(bookmark.StripPrivateTags(b.TagsString()))
		}
		b.Finalize()
		s.index(b)
	}
	s.lastSum = checksum.SumFile(s.io.Path())
	return nil
}

// Reload re-reads the collection from disk, typically after the watcher
// saw the datastore file change under us.
func (s *Store) Reload() error {
	return s.load(false)
}

// index registers a bookmark in both lookup maps. Caller holds the lock.
func (s *Store) index(b *bookmark.Bookmark) {
	s.byID[b.ID] = b
	s.byURL[b.URL] = b.ID
}

// IsOwner reports whether this store instance holds mutation rights.
func (s *Store) IsOwner() bool { return s.isOwner }

// Get returns the bookmark with the given id.
func (s *Store) Get(id int) (*bookmark.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return b, nil
}

// Exists reports whether a bookmark with the given id is present.
func (s *Store) Exists(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// FindByURL returns the bookmark currently indexed under url, or nil.
// The URL index is advisory: with duplicate URLs the last write owns the
// index slot.
func (s *Store) FindByURL(url string) *bookmark.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byURL[url]
	if !ok {
		return nil
	}
	return s.byID[id]
}

// Set upserts a bookmark by id. With persist the collection is saved
// immediately (write-through); without it the caller batches mutations
// and calls Save once.
func (s *Store) Set(b *bookmark.Bookmark, persist bool) error {
	if !s.isOwner {
		return fmt.Errorf("%w: set requires owner rights", apperr.ErrUnauthorized)
	}
	if !b.HasID() {
		return fmt.Errorf("%w: bookmark has no id", apperr.ErrInvalidFormat)
	}
	b.Finalize()

	s.mu.Lock()
	s.index(b)
	s.mu.Unlock()

	if persist {
		return s.Save()
	}
	return nil
}

// AddOrSet stores a bookmark, assigning the next free id to drafts.
func (s *Store) AddOrSet(b *bookmark.Bookmark, persist bool) error {
	if !s.isOwner {
		return fmt.Errorf("%w: add requires owner rights", apperr.ErrUnauthorized)
	}
	if !b.HasID() {
		b.ID = s.NextID()
	}
	return s.Set(b, persist)
}

// Remove deletes a bookmark by id.
func (s *Store) Remove(b *bookmark.Bookmark, persist bool) error {
	if !s.isOwner {
		return fmt.Errorf("%w: remove requires owner rights", apperr.ErrUnauthorized)
	}

	s.mu.Lock()
	stored, ok := s.byID[b.ID]
	if !ok {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	delete(s.byID, stored.ID)
	delete(s.byURL, stored.URL)
	s.mu.Unlock()

	if persist {
		return s.Save()
	}
	return nil
}

// NextID returns the id the next created bookmark will receive: one past
// the current maximum, or 0 for an empty store. Ids are never reused
// within a store's lifetime.
func (s *Store) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for id := range s.byID {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// All returns a freshly sorted snapshot of the collection.
func (s *Store) All(order bookmark.Order) []*bookmark.Bookmark {
	s.mu.RLock()
	out := make([]*bookmark.Bookmark, 0, len(s.byID))
	for _, b := range s.byID {
		out = append(out, b)
	}
	s.mu.RUnlock()
	bookmark.Sort(out, order)
	return out
}

// Count returns the number of bookmarks within a visibility scope.
func (s *Store) Count(v bookmark.Visibility) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.byID {
		switch v {
		case bookmark.VisibilityPublic:
			if !b.Private {
				n++
			}
		case bookmark.VisibilityPrivate:
			if b.Private {
				n++
			}
		default:
			n++
		}
	}
	return n
}

// Save reorders the collection per the display-order invariant, writes it
// atomically to the datastore and signals the page cache. The external
// advisory lock, when configured, is assumed to be held by the caller's
// request context.
func (s *Store) Save() error {
	if !s.isOwner {
		return fmt.Errorf("%w: save requires owner rights", apperr.ErrUnauthorized)
	}
	sorted := s.All(bookmark.OrderDesc)
	if err := s.io.WriteAll(sorted); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastSum = checksum.SumFile(s.io.Path())
	s.mu.Unlock()
	s.cache.Invalidate()
	return nil
}

// LastChecksum returns the digest of the datastore content this store
// last read or wrote. The watcher uses it to ignore its own writes.
func (s *Store) LastChecksum() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSum
}
