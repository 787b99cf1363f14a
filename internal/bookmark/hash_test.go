package bookmark

import (
	"regexp"
	"testing"
	"time"
)

func TestSmallHash_Stable(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 30, 45, 0, time.UTC)
	h1 := SmallHash(created, 7)
	h2 := SmallHash(created, 7)
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != HashLength {
		t.Fatalf("hash length = %d, want %d", len(h1), HashLength)
	}
}

func TestSmallHash_Charset(t *testing.T) {
	valid := regexp.MustCompile(`^[a-zA-Z0-9_-]{6}$`)
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for id := 0; id < 200; id++ {
		h := SmallHash(created.Add(time.Duration(id)*time.Second), id)
		if !valid.MatchString(h) {
			t.Fatalf("hash %q contains characters outside the URL-safe set", h)
		}
	}
}

func TestSmallHash_DependsOnDateAndID(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 30, 45, 0, time.UTC)
	if SmallHash(created, 1) == SmallHash(created, 2) {
		t.Error("different ids should produce different hashes")
	}
	if SmallHash(created, 1) == SmallHash(created.Add(time.Second), 1) {
		t.Error("different creation seconds should produce different hashes")
	}
	// Sub-second precision is not part of the serialized date.
	if SmallHash(created, 1) != SmallHash(created.Add(time.Millisecond), 1) {
		t.Error("sub-second changes should not alter the hash")
	}
}

func TestBookmark_HashCached(t *testing.T) {
	b := &Bookmark{ID: 3, Created: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	first := b.Hash()
	b.Created = b.Created.Add(48 * time.Hour)
	if got := b.Hash(); got != first {
		t.Errorf("cached hash recomputed: %q vs %q", got, first)
	}
}
