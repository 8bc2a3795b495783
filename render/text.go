package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"audiobook-storefront/cart"
	"audiobook-storefront/catalog"
	"audiobook-storefront/models"
	"audiobook-storefront/utils"
)

var (
	colorAccent  = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#8a94a6")
)

// TextRenderer renders pages for a terminal
type TextRenderer struct{}

// NewTextRenderer creates a new TextRenderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

var _ Renderer = (*TextRenderer)(nil)

type textStyles struct {
	title   lipgloss.Style
	badge   lipgloss.Style
	notice  lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	current lipgloss.Style
}

// styles binds the styles to w so color is only emitted for terminals
func styles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:   r.NewStyle().Bold(true),
		badge:   r.NewStyle().Foreground(colorAccent).Bold(true),
		notice:  r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		current: r.NewStyle().Bold(true).Underline(true),
	}
}

func (t *TextRenderer) header(w io.Writer, s textStyles, page Page) {
	title := page.Title
	if title == "" {
		title = "Audiobook Store"
	}
	line := s.title.Render(title) + "  " + s.badge.Render(fmt.Sprintf("[cart: %d]", page.Badge))
	if page.Email != "" {
		line += "  " + s.muted.Render(page.Email)
	}
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
}

// Catalog renders a listing page
func (t *TextRenderer) Catalog(w io.Writer, page Page, view models.CatalogView) error {
	s := styles(w)
	t.header(w, s, page)

	if view.Notice != "" {
		fmt.Fprintln(w, s.notice.Render(view.Notice))
	}
	if view.State == models.LoadStateError {
		_, err := fmt.Fprintln(w, s.err.Render(view.Error))
		return err
	}

	if view.Query != "" {
		fmt.Fprintf(w, "Search results for %q: %d\n", view.Query, view.TotalCount)
	} else {
		fmt.Fprintf(w, "Audiobooks: %d\n", view.TotalCount)
	}
	if filters := describeFilters(view.Filters); filters != "" {
		fmt.Fprintln(w, s.muted.Render("Filters: "+filters))
	}

	switch view.Empty {
	case models.EmptyNoQueryResult:
		_, err := fmt.Fprintf(w, "Nothing was found for %q.\n", view.Query)
		return err
	case models.EmptyNoResults:
		_, err := fmt.Fprintln(w, "No audiobooks match the selected filters.")
		return err
	}

	rows := make([][]string, 0, len(view.Items))
	for _, item := range view.Items {
		rows = append(rows, []string{
			strconv.Itoa(item.ID),
			item.Title,
			item.AuthorName(),
			catalog.GenreDisplayName(item.Genre),
			utils.FormatPrice(item.Price),
			ratingLabel(item),
		})
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Author", "Genre", "Price", "Rating").
		Rows(rows...)
	fmt.Fprintln(w, tbl.String())

	if nav := t.pagination(s, view); nav != "" {
		fmt.Fprintln(w, nav)
	}
	if !page.Print {
		t.options(w, s, view.Options)
	}
	return nil
}

func (t *TextRenderer) pagination(s textStyles, view models.CatalogView) string {
	if len(view.Pagination.Links) == 0 {
		return ""
	}
	parts := make([]string, 0, len(view.Pagination.Links)+2)
	if view.Pagination.Prev > 0 {
		parts = append(parts, "«")
	}
	for _, link := range view.Pagination.Links {
		switch {
		case link.Ellipsis:
			parts = append(parts, "…")
		case link.Active:
			parts = append(parts, s.current.Render(strconv.Itoa(link.Number)))
		default:
			parts = append(parts, strconv.Itoa(link.Number))
		}
	}
	if view.Pagination.Next > 0 {
		parts = append(parts, "»")
	}
	return fmt.Sprintf("Page %d of %d   %s", view.Page, view.PageCount, strings.Join(parts, " "))
}

func (t *TextRenderer) options(w io.Writer, s textStyles, options models.FilterOptions) {
	if len(options.Genres) > 0 {
		names := make([]string, 0, len(options.Genres))
		for _, g := range options.Genres {
			names = append(names, fmt.Sprintf("%s (%s)", g, catalog.GenreDisplayName(g)))
		}
		fmt.Fprintln(w, s.muted.Render("Genres: "+strings.Join(names, ", ")))
	}
	if len(options.Authors) > 0 {
		fmt.Fprintln(w, s.muted.Render("Authors: "+strings.Join(options.Authors, ", ")))
	}
}

func describeFilters(f models.FilterState) string {
	var parts []string
	if f.Genre != "" {
		parts = append(parts, "genre="+f.Genre)
	}
	if f.Author != "" {
		parts = append(parts, "author="+f.Author)
	}
	if f.Price != "" {
		parts = append(parts, "price="+f.Price)
	}
	if f.Sort != "" && f.Sort != models.SortNewest {
		parts = append(parts, "sort="+f.Sort)
	}
	return strings.Join(parts, " ")
}

// Item renders a detail page
func (t *TextRenderer) Item(w io.Writer, page Page, item models.CatalogItem) error {
	s := styles(w)
	t.header(w, s, page)

	fmt.Fprintln(w, s.title.Render(item.Title))
	if author := item.AuthorName(); author != "" {
		fmt.Fprintln(w, author)
	}
	fmt.Fprintf(w, "Price:  %s\n", utils.FormatPrice(item.Price))
	fmt.Fprintf(w, "Rating: %s\n", ratingLabel(item))
	if item.Genre != "" {
		fmt.Fprintf(w, "Genre:  %s\n", catalog.GenreDisplayName(item.Genre))
	}
	if len(item.Categories) > 0 {
		names := make([]string, 0, len(item.Categories))
		for _, c := range item.Categories {
			names = append(names, catalog.GenreDisplayName(c.Name))
		}
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(names, ", "))
	}
	if item.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, item.Description)
	}
	return nil
}

// Cart renders the cart page
func (t *TextRenderer) Cart(w io.Writer, page Page, outcome cart.Outcome) error {
	s := styles(w)
	t.header(w, s, page)

	if outcome.Kind == cart.OutcomeFailed {
		_, err := fmt.Fprintln(w, s.err.Render("The cart could not be loaded: "+UserMessage(outcome.Reason)))
		return err
	}

	view := outcome.View
	if view.Notice != "" {
		fmt.Fprintln(w, s.notice.Render(view.Notice))
	}
	if view.Empty {
		_, err := fmt.Fprintln(w, "Your cart is empty.")
		return err
	}

	rows := make([][]string, 0, len(view.Lines))
	for _, line := range view.Lines {
		rows = append(rows, []string{
			line.ID,
			line.Title,
			utils.FormatPrice(line.UnitPrice),
			strconv.Itoa(line.Quantity),
			utils.FormatPrice(line.LineTotal),
		})
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Price", "Qty", "Total").
		Rows(rows...)
	fmt.Fprintln(w, tbl.String())
	_, err := fmt.Fprintf(w, "Items: %d   Total: %s\n", view.ItemCount, s.title.Render(utils.FormatPrice(view.Total)))
	return err
}

// Order renders the order confirmation
func (t *TextRenderer) Order(w io.Writer, page Page, result models.OrderResult) error {
	s := styles(w)
	t.header(w, s, page)

	fmt.Fprintln(w, s.badge.Render("Order placed."))
	keys := make([]string, 0, len(result))
	for k := range result {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %v\n", k, result[k])
	}
	return nil
}

// Message renders a short confirmation
func (t *TextRenderer) Message(w io.Writer, page Page, message string) error {
	s := styles(w)
	t.header(w, s, page)
	_, err := fmt.Fprintln(w, message)
	return err
}

// Error renders err as a user message
func (t *TextRenderer) Error(w io.Writer, page Page, err error) error {
	s := styles(w)
	t.header(w, s, page)
	_, werr := fmt.Fprintln(w, s.err.Render(UserMessage(err)))
	return werr
}
