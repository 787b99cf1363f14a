package bookmark

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/seywald/marque/internal/apperr"
)

// Visibility selects which bookmarks a caller may see.
type Visibility string

const (
	VisibilityAll     Visibility = "all"
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility maps a request string to a Visibility, falling back to
// "all" for anything unknown.
func ParseVisibility(s string) Visibility {
	switch Visibility(s) {
	case VisibilityPublic:
		return VisibilityPublic
	case VisibilityPrivate:
		return VisibilityPrivate
	default:
		return VisibilityAll
	}
}

// visible reports whether b passes the visibility scope.
func visible(b *Bookmark, v Visibility) bool {
	switch v {
	case VisibilityPublic:
		return !b.Private
	case VisibilityPrivate:
		return b.Private
	default:
		return true
	}
}

// SearchRequest describes a combined tag and full-text search.
type SearchRequest struct {
	SearchTags    string
	SearchTerm    string
	CaseSensitive bool
	Visibility    Visibility
	UntaggedOnly  bool
}

// Search narrows bookmarks by tag patterns and then by full-text terms.
// Either criterion may be blank, in which case that step is skipped; with
// both blank the visibility-scoped collection is returned unfiltered.
// The input order is preserved.
func Search(bookmarks []*Bookmark, req SearchRequest) []*Bookmark {
	v := req.Visibility
	if v == "" {
		v = VisibilityAll
	}

	if req.SearchTags == "" && req.SearchTerm == "" {
		if req.UntaggedOnly {
			return FilterUntagged(bookmarks, v)
		}
		return FilterVisibility(bookmarks, v)
	}

	filtered := bookmarks
	if req.UntaggedOnly {
		filtered = FilterUntagged(filtered, v)
	}
	if req.SearchTags != "" {
		filtered = FilterTags(filtered, req.SearchTags, req.CaseSensitive, v)
	}
	if req.SearchTerm != "" {
		filtered = FilterFulltext(filtered, req.SearchTerm, v)
	}
	return filtered
}

// FilterVisibility returns the bookmarks matching the visibility scope.
// This is the fallback for unknown or empty filters, never an error.
func FilterVisibility(bookmarks []*Bookmark, v Visibility) []*Bookmark {
	if v == VisibilityAll || v == "" {
		return bookmarks
	}
	out := make([]*Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if visible(b, v) {
			out = append(out, b)
		}
	}
	return out
}

// FilterHash returns the single bookmark whose permalink hash equals
// smallHash. A miss is apperr.ErrNotFound, unlike the collection filters
// which return an empty result.
func FilterHash(bookmarks []*Bookmark, smallHash string) (*Bookmark, error) {
	for _, b := range bookmarks {
		if b.Hash() == smallHash {
			return b, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// FilterDay returns the bookmarks created on the given YYYYMMDD day,
// chronologically ascending (the only filter whose default order is
// reversed relative to the store's newest-first order). A malformed day
// string is apperr.ErrInvalidFormat.
func FilterDay(bookmarks []*Bookmark, day string, v Visibility) ([]*Bookmark, error) {
	if len(day) != 8 {
		return nil, apperr.ErrInvalidFormat
	}
	if _, err := time.Parse(DayFormat, day); err != nil {
		return nil, apperr.ErrInvalidFormat
	}

	out := []*Bookmark{}
	for _, b := range bookmarks {
		if v == VisibilityPublic && b.Private {
			continue
		}
		if b.Day() == day {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FilterUntagged returns the bookmarks whose trimmed tag string is empty.
func FilterUntagged(bookmarks []*Bookmark, v Visibility) []*Bookmark {
	out := []*Bookmark{}
	for _, b := range bookmarks {
		if !visible(b, v) {
			continue
		}
		if strings.TrimSpace(b.TagsString()) == "" {
			out = append(out, b)
		}
	}
	return out
}

// exactPhraseRe extracts double-quoted phrases from a search string.
var exactPhraseRe = regexp.MustCompile(`"([^"]+)"`)

// FilterFulltext returns the bookmarks matching a full-text query across
// title, description, URL and tags.
//
// Semantics:
//   - quoted phrases are exact substring matches, evaluated first;
//   - remaining space-separated tokens are AND-ed;
//   - tokens prefixed with '-' are exclusions, evaluated last;
//   - a lone '-' is a no-op token;
//   - matching is case-insensitive with full Unicode case mapping, and
//     HTML entities in the query are decoded before matching.
//
// An empty query returns the visibility-scoped collection unfiltered.
func FilterFulltext(bookmarks []*Bookmark, terms string, v Visibility) []*Bookmark {
	if terms == "" {
		return FilterVisibility(bookmarks, v)
	}

	search := strings.ToLower(html.UnescapeString(terms))

	var phrases []string
	for _, m := range exactPhraseRe.FindAllStringSubmatch(search, -1) {
		if m[1] != "" {
			phrases = append(phrases, m[1])
		}
	}

	var andTerms, excludeTerms []string
	rest := exactPhraseRe.ReplaceAllString(search, "")
	for _, tok := range strings.Fields(rest) {
		switch {
		case tok == "-":
			// no-op token
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			excludeTerms = append(excludeTerms, tok[1:])
		default:
			andTerms = append(andTerms, tok)
		}
	}

	out := []*Bookmark{}
	for _, b := range bookmarks {
		if !visible(b, v) {
			continue
		}
		if matchesFulltext(searchableContent(b), phrases, andTerms, excludeTerms) {
			out = append(out, b)
		}
	}
	return out
}

// searchableContent concatenates the lowercased searchable fields of a
// bookmark. The backslash separator prevents a phrase from matching
// across a field boundary.
func searchableContent(b *Bookmark) string {
	var sb strings.Builder
	for _, field := range []string{b.Title, b.Description, b.URL, b.TagsString()} {
		sb.WriteString(strings.ToLower(field))
		sb.WriteByte('\\')
	}
	return sb.String()
}

func matchesFulltext(content string, phrases, andTerms, excludeTerms []string) bool {
	for _, p := range phrases {
		if !strings.Contains(content, p) {
			return false
		}
	}
	for _, t := range andTerms {
		if !strings.Contains(content, t) {
			return false
		}
	}
	for _, t := range excludeTerms {
		if strings.Contains(content, t) {
			return false
		}
	}
	return true
}

// FilterTags returns the bookmarks whose tags match every pattern in the
// space- or comma-separated pattern list. Patterns support a '*' wildcard
// within a single tag token and a leading '-' for negation. Hashtags
// embedded in the description are folded into the matched string. With
// public visibility, private ".tag" patterns are unsearchable: they are
// dropped, and if nothing remains the result is empty (not unfiltered).
func FilterTags(bookmarks []*Bookmark, tags string, caseSensitive bool, v Visibility) []*Bookmark {
	patterns := SplitTags(tags, caseSensitive)
	if len(patterns) == 0 {
		return FilterVisibility(bookmarks, v)
	}

	if v == VisibilityPublic {
		kept := patterns[:0]
		for _, p := range patterns {
			if !strings.HasPrefix(p, ".") {
				kept = append(kept, p)
			}
		}
		patterns = kept
		if len(patterns) == 0 {
			return []*Bookmark{}
		}
	}

	matcher := CompileTagPatterns(patterns, caseSensitive)

	out := []*Bookmark{}
	for _, b := range bookmarks {
		if !visible(b, v) {
			continue
		}
		search := b.TagsString()
		if desc := strings.TrimSpace(b.Description); desc != "" && strings.Contains(desc, "#") {
			if hashtags := ExtractHashtags(b.Description); len(hashtags) > 0 {
				search += " " + strings.Join(hashtags, " ")
			}
		}
		if matcher.Match(search) {
			out = append(out, b)
		}
	}
	return out
}

// TagMatcher is a compiled set of tag patterns. Positive patterns must
// all match a whitespace-delimited token of the probed tag string, and no
// negative pattern may match.
//
// RE2 has no lookaround, so instead of one combined lookahead expression
// the matcher keeps one anchored token regex per pattern; the semantics
// are identical.
type TagMatcher struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
}

// CompileTagPatterns builds a TagMatcher from tag patterns. Patterns that
// carry no content ("", "-", "*") are ignored. The matcher is meant to
// live for a single filter invocation; patterns vary per request, so
// nothing is cached across calls.
func CompileTagPatterns(patterns []string, caseSensitive bool) *TagMatcher {
	m := &TagMatcher{}
	for _, p := range patterns {
		if p == "" || p == "-" || p == "*" {
			continue
		}
		negate := false
		if strings.HasPrefix(p, "-") {
			negate = true
			p = p[1:]
		}
		re := tagTokenRegex(p, caseSensitive)
		if negate {
			m.negative = append(m.negative, re)
		} else {
			m.positive = append(m.positive, re)
		}
	}
	return m
}

// Match probes a space-separated tag string against the compiled patterns.
func (m *TagMatcher) Match(tags string) bool {
	for _, re := range m.positive {
		if !re.MatchString(tags) {
			return false
		}
	}
	for _, re := range m.negative {
		if re.MatchString(tags) {
			return false
		}
	}
	return true
}

// tagTokenRegex compiles a single tag pattern into a regex matching one
// whitespace-delimited token. '*' becomes a run of non-space characters;
// everything else is literal.
func tagTokenRegex(pattern string, caseSensitive bool) *regexp.Regexp {
	var sb strings.Builder
	if !caseSensitive {
		sb.WriteString(`(?i)`)
	}
	sb.WriteString(`(?:^|\s)`)
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			sb.WriteString(`\S*`)
		}
		sb.WriteString(regexp.QuoteMeta(part))
	}
	sb.WriteString(`(?:$|\s)`)
	return regexp.MustCompile(sb.String())
}
