// Package linkservice coordinates the bookmark store, the audit log and
// change notifications for the API and MCP layers.
package linkservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seywald/marque/internal/apperr"
	"github.com/seywald/marque/internal/bookmark"
	"github.com/seywald/marque/internal/history"
	"github.com/seywald/marque/internal/sse"
	"github.com/seywald/marque/internal/store"
)

// Service wraps a store instance with the adjacent collaborators. The
// history log and the SSE broker are both optional; recording and
// notification are fire-and-forget and never fail a mutation.
type Service struct {
	store   *store.Store
	history *history.DB
	broker  *sse.Broker
	logger  *slog.Logger
}

// NewService creates a link service. history and broker may be nil.
func NewService(st *store.Store, hist *history.DB, broker *sse.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, history: hist, broker: broker, logger: logger}
}

// Store exposes the underlying store for callers that iterate the full
// collection (export, feeds).
func (s *Service) Store() *store.Store { return s.store }

// ListRequest are the parameters of a filtered listing.
type ListRequest struct {
	SearchTerm    string
	SearchTags    string
	CaseSensitive bool
	Visibility    string
	UntaggedOnly  bool
	// Offset skips the first n results; Limit caps the result count,
	// 0 meaning no cap.
	Offset int
	Limit  int
}

// List returns the bookmarks matching the request, newest first, with
// pagination applied after filtering.
func (s *Service) List(_ context.Context, req ListRequest) []*bookmark.Bookmark {
	filtered := bookmark.Search(s.store.All(bookmark.OrderDesc), bookmark.SearchRequest{
		SearchTags:    req.SearchTags,
		SearchTerm:    req.SearchTerm,
		CaseSensitive: req.CaseSensitive,
		Visibility:    bookmark.ParseVisibility(req.Visibility),
		UntaggedOnly:  req.UntaggedOnly,
	})

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []*bookmark.Bookmark{}
	}
	filtered = filtered[offset:]
	if req.Limit > 0 && req.Limit < len(filtered) {
		filtered = filtered[:req.Limit]
	}
	return filtered
}

// Get returns a single bookmark by id.
func (s *Service) Get(_ context.Context, id int) (*bookmark.Bookmark, error) {
	return s.store.Get(id)
}

// GetByHash returns the bookmark matching a permalink hash. Longer
// strings are truncated to the hash length, so a permalink with trailing
// URL junk still resolves.
func (s *Service) GetByHash(_ context.Context, hash string) (*bookmark.Bookmark, error) {
	if len(hash) > bookmark.HashLength {
		hash = hash[:bookmark.HashLength]
	}
	return bookmark.FilterHash(s.store.All(bookmark.OrderDesc), hash)
}

// FindByURL returns the bookmark indexed under url, or nil.
func (s *Service) FindByURL(_ context.Context, url string) *bookmark.Bookmark {
	return s.store.FindByURL(url)
}

// Create stores a draft bookmark, assigns its id and records the event.
func (s *Service) Create(_ context.Context, b *bookmark.Bookmark) error {
	if b.HasID() {
		return fmt.Errorf("%w: create expects a draft bookmark", apperr.ErrInvalidFormat)
	}
	if err := s.store.AddOrSet(b, true); err != nil {
		return err
	}
	s.recordCreated(b.ID)
	return nil
}

// Update overwrites an existing bookmark and records the event.
func (s *Service) Update(_ context.Context, b *bookmark.Bookmark) error {
	if !s.store.Exists(b.ID) {
		return apperr.ErrNotFound
	}
	b.Touch()
	if err := s.store.Set(b, true); err != nil {
		return err
	}
	s.recordUpdated(b.ID)
	return nil
}

// Delete removes a bookmark by id and records the event.
func (s *Service) Delete(_ context.Context, id int) error {
	b, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(b, true); err != nil {
		return err
	}
	s.recordDeleted(id)
	return nil
}

// RenameTag renames tag from to to across every bookmark carrying it,
// merging with an existing to tag (duplicates collapse, insertion order
// of the remaining tags is preserved). An empty to deletes every
// occurrence of the tag, duplicates included. The
// altered bookmarks are written back in one batch and saved once.
func (s *Service) RenameTag(_ context.Context, from, to string) ([]*bookmark.Bookmark, error) {
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("%w: source tag is empty", apperr.ErrInvalidFormat)
	}
	to = strings.TrimSpace(to)
	remove := to == ""

	// Exact source tag: case-sensitive match.
	matches := bookmark.FilterTags(s.store.All(bookmark.OrderDesc), from, true, bookmark.VisibilityAll)

	altered := []*bookmark.Bookmark{}
	for _, b := range matches {
		pos := -1
		for i, t := range b.Tags {
			if t == from {
				pos = i
				break
			}
		}
		if pos < 0 {
			// Matched through a description hashtag only; the tag list
			// itself has nothing to rename.
			continue
		}
		if remove {
			// Uniqueness is not enforced at write time, so every
			// occurrence has to go, not just the first.
			kept := b.Tags[:0]
			for _, t := range b.Tags {
				if t != from {
					kept = append(kept, t)
				}
			}
			b.Tags = kept
		} else {
			b.Tags[pos] = to
		}
		b.Tags = bookmark.UniqueTags(b.Tags)
		if err := s.store.Set(b, false); err != nil {
			return nil, err
		}
		altered = append(altered, b)
	}

	if err := s.store.Save(); err != nil {
		return nil, err
	}
	for _, b := range altered {
		s.recordUpdated(b.ID)
	}
	return altered, nil
}

// DeleteTag removes a tag from every bookmark carrying it.
func (s *Service) DeleteTag(ctx context.Context, tag string) ([]*bookmark.Bookmark, error) {
	return s.RenameTag(ctx, tag, "")
}

// TagCloud computes per-tag counts over the collection, optionally
// narrowed by tag patterns (for related-tags pages) and visibility.
func (s *Service) TagCloud(_ context.Context, filteringTags string, visibility string) []bookmark.TagCount {
	filtered := bookmark.Search(s.store.All(bookmark.OrderDesc), bookmark.SearchRequest{
		SearchTags: filteringTags,
		Visibility: bookmark.ParseVisibility(visibility),
	})
	return bookmark.TagIndex(filtered)
}

// Daily returns the bookmarks created on the given YYYYMMDD day,
// chronologically ascending.
func (s *Service) Daily(_ context.Context, day, visibility string) ([]*bookmark.Bookmark, error) {
	return bookmark.FilterDay(s.store.All(bookmark.OrderDesc), day, bookmark.ParseVisibility(visibility))
}

// Days returns the days that have at least one bookmark within the
// visibility scope, oldest first.
func (s *Service) Days(_ context.Context, visibility string) []string {
	scoped := bookmark.FilterVisibility(s.store.All(bookmark.OrderDesc), bookmark.ParseVisibility(visibility))
	return bookmark.Days(scoped)
}

// Count returns the number of bookmarks within a visibility scope.
func (s *Service) Count(_ context.Context, visibility string) int {
	return s.store.Count(bookmark.ParseVisibility(visibility))
}

// History returns the most recent audit events, newest first.
func (s *Service) History(_ context.Context, limit int) ([]history.Event, error) {
	if s.history == nil {
		return []history.Event{}, nil
	}
	return s.history.All(limit)
}

func (s *Service) recordCreated(id int) {
	if s.history != nil {
		if err := s.history.RecordCreated(id); err != nil {
			s.logger.Warn("history: record failed", slog.String("error", err.Error()))
		}
	}
	if s.broker != nil {
		s.broker.PublishLinkEvent("created", id)
	}
}

func (s *Service) recordUpdated(id int) {
	if s.history != nil {
		if err := s.history.RecordUpdated(id); err != nil {
			s.logger.Warn("history: record failed", slog.String("error", err.Error()))
		}
	}
	if s.broker != nil {
		s.broker.PublishLinkEvent("updated", id)
	}
}

func (s *Service) recordDeleted(id int) {
	if s.history != nil {
		if err := s.history.RecordDeleted(id); err != nil {
			s.logger.Warn("history: record failed", slog.String("error", err.Error()))
		}
	}
	if s.broker != nil {
		s.broker.PublishLinkEvent("deleted", id)
	}
}
