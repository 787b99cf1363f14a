package bookmark

import "sort"

// Order selects the direction of the natural collection order.
type Order string

const (
	OrderDesc Order = "DESC"
	OrderAsc  Order = "ASC"
)

// Sort orders bookmarks in place per the display-order invariant: sticky
// bookmarks before all non-sticky ones, then creation date (newest first
// for OrderDesc), ties broken by id in the same direction. Sticky
// partitioning is not affected by the requested direction.
func Sort(bookmarks []*Bookmark, order Order) {
	asc := order == OrderAsc
	sort.SliceStable(bookmarks, func(i, j int) bool {
		a, b := bookmarks[i], bookmarks[j]
		if a.Sticky != b.Sticky {
			return a.Sticky
		}
		if !a.Created.Equal(b.Created) {
			if asc {
				return a.Created.Before(b.Created)
			}
			return a.Created.After(b.Created)
		}
		if asc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}
