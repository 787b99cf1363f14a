package store

import (
	"time"

	"github.com/seywald/marque/internal/bookmark"
)

// seed writes the first-run demo collection: one private note so the
// owner sees the visibility split immediately, and one public bookmark
// explaining the application. Both are regular bookmarks the owner can
// edit or delete.
func (s *Store) seed() error {
	private := bookmark.New()
	private.Title = "My secret stuff... - Pastebin.com"
	private.URL = "http://sebsauvage.net/paste/?8434b27936c09649"
	private.Description = "Shhhh! I'm a private bookmark only YOU can see. You can delete me too."
	private.SetTagsString("secretstuff")
	private.Private = true
	private.Created = time.Now().Add(-time.Minute)
	if err := s.AddOrSet(private, false); err != nil {
		return err
	}

	public := bookmark.New()
	public.Title = "The personal, minimalist, super-fast, database-free bookmarking service"
	public.URL = "https://github.com/seywald/marque"
	public.Description = "Welcome to Marque! This is your first public bookmark. " +
		"To edit or delete me, you must first authenticate.\n\n" +
		"You can add a description to your bookmarks, tag them, and keep them " +
		"private. Adding a bookmark without a URL creates a text-only note."
	public.SetTagsString("opensource software")
	if err := s.AddOrSet(public, false); err != nil {
		return err
	}

	s.logger.Info("store: datastore initialized with demo content")
	return s.Save()
}
