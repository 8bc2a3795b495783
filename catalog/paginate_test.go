package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook-storefront/models"
)

func numberedItems(n int) []models.CatalogItem {
	items := make([]models.CatalogItem, n)
	for i := range items {
		items[i] = models.CatalogItem{ID: i + 1, Title: "Книга", Price: float64(100 * (i + 1))}
	}
	return items
}

func TestPageCountAndClamp(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, ItemsPerPage))
	assert.Equal(t, 1, PageCount(6, ItemsPerPage))
	assert.Equal(t, 3, PageCount(14, ItemsPerPage))

	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 1, ClampPage(5, 0))
}

func TestPaginate(t *testing.T) {
	items := numberedItems(14)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(Paginate(items, 1, ItemsPerPage)))
	assert.Equal(t, []int{13, 14}, ids(Paginate(items, 3, ItemsPerPage)))
	assert.Empty(t, Paginate(items, 4, ItemsPerPage))
	assert.Empty(t, Paginate(items, 0, ItemsPerPage))
	assert.Empty(t, Paginate(nil, 1, ItemsPerPage))
}

func TestPaginateCoversEveryItemOnce(t *testing.T) {
	for n := 0; n <= 20; n++ {
		items := numberedItems(n)
		pages := PageCount(n, ItemsPerPage)

		var seen []int
		for p := 1; p <= pages; p++ {
			page := Paginate(items, p, ItemsPerPage)
			require.LessOrEqual(t, len(page), ItemsPerPage)
			seen = append(seen, ids(page)...)
		}
		assert.Len(t, seen, n)
		for i, id := range seen {
			assert.Equal(t, i+1, id)
		}
	}
}

func TestPageWindow(t *testing.T) {
	assert.Equal(t, models.Pagination{}, PageWindow(1, 1))
	assert.Equal(t, models.Pagination{}, PageWindow(1, 0))

	first := PageWindow(1, 3)
	assert.Zero(t, first.Prev)
	assert.Equal(t, 2, first.Next)
	assert.Equal(t, []models.PageLink{
		{Number: 1, Active: true},
		{Number: 2},
		{Number: 3},
	}, first.Links)

	middle := PageWindow(5, 10)
	assert.Equal(t, 4, middle.Prev)
	assert.Equal(t, 6, middle.Next)
	assert.Equal(t, []models.PageLink{
		{Number: 1},
		{Ellipsis: true},
		{Number: 3},
		{Number: 4},
		{Number: 5, Active: true},
		{Number: 6},
		{Number: 7},
		{Ellipsis: true},
		{Number: 10},
	}, middle.Links)

	last := PageWindow(10, 10)
	assert.Equal(t, 9, last.Prev)
	assert.Zero(t, last.Next)
	assert.Equal(t, models.PageLink{Number: 1}, last.Links[0])
	assert.Equal(t, models.PageLink{Number: 10, Active: true}, last.Links[len(last.Links)-1])

	// no ellipsis when the gap is a single page
	near := PageWindow(4, 6)
	assert.Equal(t, []models.PageLink{
		{Number: 2},
		{Number: 3},
		{Number: 4, Active: true},
		{Number: 5},
		{Number: 6},
	}, near.Links[1:])
	assert.Equal(t, models.PageLink{Number: 1}, near.Links[0])
}

func TestExtractFilterOptions(t *testing.T) {
	opts := ExtractFilterOptions(sampleItems())

	assert.Equal(t, []string{"business", "fiction", "history", "psychology"}, opts.Genres)
	assert.Equal(t, []string{"Даниэль Канеман", "Лев Толстой", "Фёдор Достоевский", "Юваль Харари"}, opts.Authors)

	empty := ExtractFilterOptions(nil)
	assert.Empty(t, empty.Genres)
	assert.Empty(t, empty.Authors)
}

func TestReconcileSelection(t *testing.T) {
	opts := models.FilterOptions{Genres: []string{"fiction", "history"}, Authors: []string{"Лев Толстой"}}

	kept := ReconcileSelection(models.FilterState{Genre: "history", Author: "Лев Толстой", Sort: models.SortRating}, opts)
	assert.Equal(t, "history", kept.Genre)
	assert.Equal(t, "Лев Толстой", kept.Author)
	assert.Equal(t, models.SortRating, kept.Sort)

	reset := ReconcileSelection(models.FilterState{Genre: "poetry", Author: "Пушкин", Price: "0-100"}, opts)
	assert.Empty(t, reset.Genre)
	assert.Empty(t, reset.Author)
	assert.Equal(t, "0-100", reset.Price)
}

func TestGenreDisplayName(t *testing.T) {
	assert.Equal(t, "Художественная литература", GenreDisplayName("fiction"))
	assert.Equal(t, "История", GenreDisplayName("history"))
	assert.Equal(t, "poetry", GenreDisplayName("poetry"))
}
