package catalog

import (
	"sort"

	"audiobook-storefront/models"
)

var genreNames = map[string]string{
	"fiction":     "Художественная литература",
	"non-fiction": "Нонфикшн",
	"psychology":  "Психология",
	"business":    "Бизнес",
	"finance":     "Финансы",
	"history":     "История",
	"science":     "Наука",
	"self-help":   "Саморазвитие",
}

// GenreDisplayName maps a genre slug to its shop-facing name; unknown genres are
// shown as-is
func GenreDisplayName(genre string) string {
	if name, ok := genreNames[genre]; ok {
		return name
	}
	return genre
}

// ExtractFilterOptions collects the distinct genres and authors of items, sorted.
// An item contributes its genre field, or its category names when it has no genre.
func ExtractFilterOptions(items []models.CatalogItem) models.FilterOptions {
	genres := map[string]bool{}
	authors := map[string]bool{}

	for _, item := range items {
		if item.Genre != "" {
			genres[item.Genre] = true
		} else {
			for _, c := range item.Categories {
				if c.Name != "" {
					genres[c.Name] = true
				}
			}
		}
		if name := item.AuthorName(); name != "" {
			authors[name] = true
		}
	}

	return models.FilterOptions{
		Genres:  sortedKeys(genres),
		Authors: sortedKeys(authors),
	}
}

// ReconcileSelection keeps the selected genre and author only when they are still
// offered by options; otherwise the selection falls back to "all"
func ReconcileSelection(state models.FilterState, options models.FilterOptions) models.FilterState {
	if state.Genre != "" && !contains(options.Genres, state.Genre) {
		state.Genre = ""
	}
	if state.Author != "" && !contains(options.Authors, state.Author) {
		state.Author = ""
	}
	return state
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(values []string, v string) bool {
	i := sort.SearchStrings(values, v)
	return i < len(values) && values[i] == v
}
