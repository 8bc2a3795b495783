package catalog

import (
	"sort"

	"audiobook-storefront/models"
)

var sortKeys = map[string]bool{
	models.SortNewest:    true,
	models.SortOldest:    true,
	models.SortPriceLow:  true,
	models.SortPriceHigh: true,
	models.SortRating:    true,
	models.SortPopular:   true,
}

// IsSortKey reports whether key is a known sort key
func IsSortKey(key string) bool {
	return sortKeys[key]
}

// Sort returns a stably sorted copy of items. Unknown keys keep the input order.
func Sort(items []models.CatalogItem, key string) []models.CatalogItem {
	out := make([]models.CatalogItem, len(items))
	copy(out, items)

	var less func(a, b models.CatalogItem) bool
	switch key {
	case models.SortNewest, models.SortPopular:
		// Popularity has no signal of its own yet; newer ids rank first.
		less = func(a, b models.CatalogItem) bool { return a.ID > b.ID }
	case models.SortOldest:
		less = func(a, b models.CatalogItem) bool { return a.ID < b.ID }
	case models.SortPriceLow:
		less = func(a, b models.CatalogItem) bool { return a.Price < b.Price }
	case models.SortPriceHigh:
		less = func(a, b models.CatalogItem) bool { return a.Price > b.Price }
	case models.SortRating:
		less = func(a, b models.CatalogItem) bool { return a.RatingValue() > b.RatingValue() }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
