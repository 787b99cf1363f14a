package bookmark

import (
	"regexp"
	"strings"
)

// hashtagRe finds #hashtag markers embedded in free text. The marker must
// not be preceded by a word character, and the tag body allows letters,
// numbers, marks and connector punctuation so that non-Latin hashtags work.
var hashtagRe = regexp.MustCompile(`(?:^|[^\p{Pc}\p{N}\p{L}\p{Mn}])#([\p{Pc}\p{N}\p{L}\p{Mn}]+)`)

// SplitTags converts a space- or comma-separated tag list to a slice,
// skipping empty entries. When caseSensitive is false the tags are
// lowercased with full Unicode case mapping, so Cyrillic and Greek tags
// group correctly.
func SplitTags(tags string, caseSensitive bool) []string {
	if !caseSensitive {
		tags = strings.ToLower(tags)
	}
	tags = strings.ReplaceAll(tags, ",", " ")
	return strings.Fields(tags)
}

// UniqueTags removes duplicate tags while preserving the first-seen order.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ExtractHashtags returns the #hashtag markers found in text, in order
// of appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// privateTagRe matches tags carrying the leading-dot private marker, used
// to strip them from tag strings shown to non-owners.
var privateTagRe = regexp.MustCompile(`(^|\s+)\.\S+\s*`)

// StripPrivateTags removes ".tag" entries from a space-separated tag string.
func StripPrivateTags(tags string) string {
	return strings.TrimSpace(privateTagRe.ReplaceAllString(tags, " "))
}
