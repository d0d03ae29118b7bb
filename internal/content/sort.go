package content

import (
	"fmt"
	"slices"
)

// Sort orders items in place.
//
// When every item is dated, newer dates come first. Within the same date (or
// for the whole list when any item is undated) items that declare an order
// come first, ascending, and the rest keep their input order.
func Sort(items []Item) {
	allDated := true
	for _, item := range items {
		if item.Date == "" {
			allDated = false
			break
		}
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		if allDated && a.Date != b.Date {
			if a.Date > b.Date {
				return -1
			}
			return 1
		}
		return compareOrder(a.Order, b.Order)
	})
}

func compareOrder(a, b *int) int {
	switch {
	case a != nil && b != nil:
		switch {
		case *a < *b:
			return -1
		case *a > *b:
			return 1
		}
		return 0
	case a != nil:
		return -1
	case b != nil:
		return 1
	default:
		return 0
	}
}

// ResolveSlugConflicts renames repeated slugs by appending the lowest free
// numeric suffix (-2, -3, ...) that no other item uses. The slug is claimed
// by the oldest dated item, then by input order, with undated items last, so
// adding a newer duplicate never renames an item that was already published.
// The order of items is not changed. Ids are recomputed for renamed items and
// one SlugConflictError is returned per rename, in claim order.
func ResolveSlugConflicts(collection string, items []Item) []error {
	reserved := make(map[string]struct{}, len(items))
	for _, item := range items {
		reserved[item.Slug] = struct{}{}
	}

	claimed := make(map[string]struct{}, len(items))
	var conflicts []error
	for _, i := range claimOrder(items) {
		slug := items[i].Slug
		if _, taken := claimed[slug]; !taken {
			claimed[slug] = struct{}{}
			continue
		}
		renamed := slug
		for n := 2; ; n++ {
			renamed = fmt.Sprintf("%s-%d", slug, n)
			_, used := claimed[renamed]
			_, declared := reserved[renamed]
			if !used && !declared {
				break
			}
		}
		claimed[renamed] = struct{}{}
		items[i].Slug = renamed
		items[i].AssignID(collection)
		conflicts = append(conflicts, &SlugConflictError{
			Collection: collection,
			Slug:       slug,
			Renamed:    renamed,
			Source:     items[i].Source,
		})
	}
	return conflicts
}

// claimOrder lists item indexes oldest date first, ties and undated items in
// input order.
func claimOrder(items []Item) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		da, db := items[a].Date, items[b].Date
		switch {
		case da == db:
			return 0
		case da == "":
			return 1
		case db == "":
			return -1
		case da < db:
			return -1
		default:
			return 1
		}
	})
	return order
}

// WithoutDrafts returns the items that are not drafts, preserving order.
func WithoutDrafts(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.Draft {
			out = append(out, item)
		}
	}
	return out
}
