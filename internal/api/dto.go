package api

import (
	"strings"
	"time"

	"github.com/seywald/marque/internal/bookmark"
)

// LinkDTO is the wire representation of a bookmark.
type LinkDTO struct {
	ID          int        `json:"id"`
	URL         string     `json:"url"`
	ShortURL    string     `json:"shorturl"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Private     bool       `json:"private"`
	Sticky      bool       `json:"sticky"`
	Created     time.Time  `json:"created"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// LinkRequest is the request body for creating or updating a bookmark.
type LinkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Private     bool     `json:"private"`
	Sticky      bool     `json:"sticky"`
}

// RenameTagRequest is the request body for renaming a tag.
type RenameTagRequest struct {
	Name string `json:"name"`
}

// InfoResponse summarizes the instance for API discovery.
type InfoResponse struct {
	GlobalCounter  int `json:"global_counter"`
	PrivateCounter int `json:"private_counter"`
}

// toDTO converts a bookmark for the wire. For non-owners, private ".tag"
// markers are stripped from the displayed tags.
func toDTO(b *bookmark.Bookmark, owner bool) LinkDTO {
	tags := b.Tags
	if !owner {
		kept := make([]string, 0, len(tags))
		for _, t := range tags {
			if !strings.HasPrefix(t, ".") {
				kept = append(kept, t)
			}
		}
		tags = kept
	}
	if tags == nil {
		tags = []string{}
	}
	return LinkDTO{
		ID:          b.ID,
		URL:         b.URL,
		ShortURL:    b.Hash(),
		Title:       b.Title,
		Description: b.Description,
		Tags:        tags,
		Private:     b.Private,
		Sticky:      b.Sticky,
		Created:     b.Created,
		Updated:     b.Updated,
	}
}

func toDTOs(list []*bookmark.Bookmark, owner bool) []LinkDTO {
	out := make([]LinkDTO, len(list))
	for i, b := range list {
		out[i] = toDTO(b, owner)
	}
	return out
}
