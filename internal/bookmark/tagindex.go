package bookmark

import (
	"sort"
	"strings"
)

// TagCount is one entry of the tag index.
type TagCount struct {
	Tag   string `json:"name"`
	Count int    `json:"occurrences"`
}

// TagIndex computes per-tag bookmark counts over the given subset.
//
// Grouping is case-insensitive: the first-encountered casing of a tag
// becomes its canonical display form, and differently-cased occurrences
// increment the same counter. The result is sorted by count descending,
// ties broken alphabetically ascending on the canonical tag (compared
// case-insensitively, byte order on equal folds). A single-key descending
// sort would leave ties in arbitrary order, which breaks tag pages.
func TagIndex(bookmarks []*Bookmark) []TagCount {
	counts := map[string]int{}
	canonical := map[string]string{}
	for _, b := range bookmarks {
		for _, tag := range strings.Fields(b.TagsString()) {
			lower := strings.ToLower(tag)
			if _, ok := canonical[lower]; !ok {
				canonical[lower] = tag
			}
			counts[lower]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for lower, n := range counts {
		out = append(out, TagCount{Tag: canonical[lower], Count: n})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		li, lj := strings.ToLower(out[i].Tag), strings.ToLower(out[j].Tag)
		if li != lj {
			return li < lj
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Days returns the sorted list of YYYYMMDD days that have at least one
// bookmark, oldest first.
func Days(bookmarks []*Bookmark) []string {
	seen := map[string]struct{}{}
	for _, b := range bookmarks {
		seen[b.Day()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
