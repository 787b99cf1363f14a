// Package bookmark defines the bookmark entity and the pure query
// primitives operating on collections of bookmarks.
package bookmark

import (
	"strings"
	"time"
)

// UnsetID marks a draft bookmark that has not been assigned an id yet.
// 0 is a valid persisted id, so the sentinel has to be negative.
const UnsetID = -1

// DateFormat is the serialized creation-date layout used to derive
// permalink hashes. Kept stable forever: changing it would break every
// published permalink.
const DateFormat = "20060102_150405"

// DayFormat is the layout expected by the day filter.
const DayFormat = "20060102"

// Bookmark is a single saved link with its metadata.
//
// ID is the stable identity used by every external caller; the position
// of a bookmark in any slice is a display artifact and never an
// identifier. Updated stays nil until the first edit.
type Bookmark struct {
	ID          int        `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Private     bool       `json:"private"`
	Sticky      bool       `json:"sticky"`
	Created     time.Time  `json:"created"`
	Updated     *time.Time `json:"updated,omitempty"`
	ShortHash   string     `json:"shorturl,omitempty"`
}

// New returns a draft bookmark without an assigned id.
func New() *Bookmark {
	return &Bookmark{ID: UnsetID, Tags: []string{}}
}

// HasID reports whether the bookmark has been assigned a persistent id.
func (b *Bookmark) HasID() bool {
	return b.ID >= 0
}

// TagsString returns the tags as a single space-separated string.
func (b *Bookmark) TagsString() string {
	return strings.Join(b.Tags, " ")
}

// SetTagsString replaces the tags from a space- or comma-separated string.
// Casing is preserved; normalization is the caller's concern.
func (b *Bookmark) SetTagsString(tags string) {
	b.Tags = SplitTags(tags, true)
}

// IsNote reports whether the bookmark is a text-only note, i.e. its URL
// points back to its own permalink instead of an external resource.
func (b *Bookmark) IsNote() bool {
	return strings.HasPrefix(b.URL, "/shaare/")
}

// Hash returns the permalink hash, computing and caching it if absent.
// A cached hash is never recomputed.
func (b *Bookmark) Hash() string {
	if b.ShortHash == "" {
		b.ShortHash = SmallHash(b.Created, b.ID)
	}
	return b.ShortHash
}

// Finalize fills the derived fields of a bookmark that has just received
// its id: creation date, permalink hash, note URL and default title.
// It is idempotent and never overwrites a populated field.
func (b *Bookmark) Finalize() {
	if b.Created.IsZero() {
		b.Created = time.Now()
	}
	if b.ShortHash == "" {
		b.ShortHash = SmallHash(b.Created, b.ID)
	}
	if b.URL == "" {
		b.URL = "/shaare/" + b.ShortHash
	}
	if b.Title == "" {
		b.Title = b.URL
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
}

// Touch records a modification timestamp.
func (b *Bookmark) Touch() {
	now := time.Now()
	b.Updated = &now
}

// Day returns the creation day formatted as YYYYMMDD.
func (b *Bookmark) Day() string {
	return b.Created.Format(DayFormat)
}
