package models

// Author is the author reference embedded in a catalog item
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Category is a named category attached to a catalog item
type Category struct {
	Name string `json:"name"`
}

// CatalogItem represents a single audiobook returned by the catalog service
type CatalogItem struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Author        *Author    `json:"author,omitempty"`
	Price         float64    `json:"price"`
	Description   string     `json:"description,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Genre         string     `json:"genre,omitempty"`
	Categories    []Category `json:"categories,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
}

// AuthorName returns the author display name or "" when the item has no author
func (i CatalogItem) AuthorName() string {
	if i.Author == nil {
		return ""
	}
	return i.Author.Name
}

// RatingValue returns the rating, treating a missing rating as 0
func (i CatalogItem) RatingValue() float64 {
	if i.Rating == nil {
		return 0
	}
	return *i.Rating
}

// Sort keys accepted by FilterState.Sort
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortPopular   = "popular"
)

// FilterState is the user-selected filter configuration of a listing page.
// Empty fields mean "all". Query is only set by the local search fallback.
type FilterState struct {
	Genre  string `json:"genre"`
	Author string `json:"author"`
	Price  string `json:"price"` // "min-max" or "min-+"
	Sort   string `json:"sort"`
	Query  string `json:"query,omitempty"`
}

// DefaultFilterState returns the filter state of a freshly opened listing page
func DefaultFilterState() FilterState {
	return FilterState{Sort: SortNewest}
}

// FilterOptions holds the distinct values offered by the genre and author selectors
type FilterOptions struct {
	Genres  []string `json:"genres"`
	Authors []string `json:"authors"`
}

// LoadState is the lifecycle state of the catalog listing
type LoadState string

const (
	LoadStateIdle    LoadState = "idle"
	LoadStateLoading LoadState = "loading"
	LoadStateReady   LoadState = "ready"
	LoadStateError   LoadState = "error"
)

// EmptyKind tells renderers which "nothing to show" message applies
type EmptyKind string

const (
	EmptyNone          EmptyKind = ""
	EmptyNoResults     EmptyKind = "no-results"
	EmptyNoQueryResult EmptyKind = "no-results-for-query"
)

// PageLink is one entry of the pagination control
type PageLink struct {
	Number   int  `json:"number,omitempty"`
	Active   bool `json:"active,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Pagination describes the pagination control of a listing page.
// Prev and Next are 0 when the control is absent.
type Pagination struct {
	Prev  int        `json:"prev,omitempty"`
	Next  int        `json:"next,omitempty"`
	Links []PageLink `json:"links,omitempty"`
}

// CatalogView represents the data handed to renderers for a listing page
type CatalogView struct {
	State      LoadState     `json:"state"`
	Items      []CatalogItem `json:"items"`
	Filters    FilterState   `json:"filters"`
	Options    FilterOptions `json:"options"`
	Query      string        `json:"query,omitempty"`
	Page       int           `json:"page"`
	PageCount  int           `json:"pageCount"`
	TotalCount int           `json:"totalCount"`
	Pagination Pagination    `json:"pagination"`
	Empty      EmptyKind     `json:"empty,omitempty"`
	Notice     string        `json:"notice,omitempty"`
	Error      string        `json:"error,omitempty"`
}
