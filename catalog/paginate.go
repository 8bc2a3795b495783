package catalog

import "audiobook-storefront/models"

// ItemsPerPage is the fixed page size of listing pages
const ItemsPerPage = 6

// windowRadius is how many page numbers are shown on each side of the current page
const windowRadius = 2

// PageCount returns ceil(total/size); 0 for an empty set
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage moves page into [1, max(1, pageCount)]
func ClampPage(page, pageCount int) int {
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns items[(page-1)*size : page*size], or an empty slice when the page
// is out of range
func Paginate(items []models.CatalogItem, page, size int) []models.CatalogItem {
	if page < 1 || size <= 0 {
		return []models.CatalogItem{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []models.CatalogItem{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageWindow builds the pagination control. A single page (or none) yields no control.
func PageWindow(current, pageCount int) models.Pagination {
	if pageCount <= 1 {
		return models.Pagination{}
	}
	current = ClampPage(current, pageCount)

	var p models.Pagination
	if current > 1 {
		p.Prev = current - 1
	}
	if current < pageCount {
		p.Next = current + 1
	}

	start := max(1, current-windowRadius)
	end := min(pageCount, current+windowRadius)

	if start > 1 {
		p.Links = append(p.Links, models.PageLink{Number: 1})
		if start > 2 {
			p.Links = append(p.Links, models.PageLink{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Links = append(p.Links, models.PageLink{Number: i, Active: i == current})
	}
	if end < pageCount {
		if end < pageCount-1 {
			p.Links = append(p.Links, models.PageLink{Ellipsis: true})
		}
		p.Links = append(p.Links, models.PageLink{Number: pageCount})
	}
	return p
}
