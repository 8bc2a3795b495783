// Package catalog holds the listing page logic: filtering, sorting and pagination of
// the loaded item set, and the load/search state machine around it.
package catalog

import (
	"math"
	"strconv"
	"strings"

	"audiobook-storefront/models"
)

// PriceRange is a parsed price filter. Max is +Inf for an open-ended range.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether price lies in the inclusive range
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// ParsePriceRange parses "min-max" or "min-+"
func ParsePriceRange(s string) (PriceRange, error) {
	minStr, maxStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return PriceRange{}, models.NewValidationError("price", "expected min-max or min-+, got %q", s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(minStr), 64)
	if err != nil || min < 0 {
		return PriceRange{}, models.NewValidationError("price", "bad lower bound in %q", s)
	}

	maxStr = strings.TrimSpace(maxStr)
	if maxStr == "+" {
		return PriceRange{Min: min, Max: math.Inf(1)}, nil
	}
	max, err := strconv.ParseFloat(maxStr, 64)
	if err != nil || max < min {
		return PriceRange{}, models.NewValidationError("price", "bad upper bound in %q", s)
	}
	return PriceRange{Min: min, Max: max}, nil
}

// ValidateFilters checks the user-editable fields of a FilterState
func ValidateFilters(state models.FilterState) error {
	if state.Price != "" {
		if _, err := ParsePriceRange(state.Price); err != nil {
			return err
		}
	}
	if state.Sort != "" && !IsSortKey(state.Sort) {
		return models.NewValidationError("sort", "unknown sort key %q", state.Sort)
	}
	return nil
}

// ApplyFilters returns the items matching every active predicate of state, in input
// order. An unparseable price range is ignored; callers validate it first.
func ApplyFilters(items []models.CatalogItem, state models.FilterState) []models.CatalogItem {
	var priceRange *PriceRange
	if state.Price != "" {
		if r, err := ParsePriceRange(state.Price); err == nil {
			priceRange = &r
		}
	}
	query := normalizeQuery(state.Query)

	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if state.Genre != "" && !MatchesGenre(item, state.Genre) {
			continue
		}
		if state.Author != "" && item.AuthorName() != state.Author {
			continue
		}
		if priceRange != nil && !priceRange.Contains(item.Price) {
			continue
		}
		if query != "" && !matchesNormalizedQuery(item, query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// MatchesGenre reports whether the genre field or any category name equals genre
func MatchesGenre(item models.CatalogItem, genre string) bool {
	if item.Genre == genre {
		return true
	}
	for _, c := range item.Categories {
		if c.Name == genre {
			return true
		}
	}
	return false
}

// MatchesQuery is a case-insensitive substring match against title, author name and
// description
func MatchesQuery(item models.CatalogItem, term string) bool {
	query := normalizeQuery(term)
	if query == "" {
		return true
	}
	return matchesNormalizedQuery(item, query)
}

func normalizeQuery(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func matchesNormalizedQuery(item models.CatalogItem, query string) bool {
	return strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.AuthorName()), query) ||
		strings.Contains(strings.ToLower(item.Description), query)
}
