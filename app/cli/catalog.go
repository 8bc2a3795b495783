package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"audiobook-storefront/models"
	"audiobook-storefront/service"
)

// listingFlags are the filter and page selection shared by catalog, search and export
type listingFlags struct {
	genre  string
	author string
	price  string
	sort   string
	page   int
}

func (f *listingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.genre, "genre", "", "Genre or category name")
	cmd.Flags().StringVar(&f.author, "author", "", "Author display name")
	cmd.Flags().StringVar(&f.price, "price", "", `Price range "min-max" or "min-+"`)
	cmd.Flags().StringVar(&f.sort, "sort", models.SortNewest, "newest, oldest, price-low, price-high, rating or popular")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
}

func (f *listingFlags) query(term string) service.CatalogQuery {
	return service.CatalogQuery{
		Term: strings.TrimSpace(term),
		Filters: models.FilterState{
			Genre:  f.genre,
			Author: f.author,
			Price:  f.price,
			Sort:   f.sort,
		},
		Page: f.page,
	}
}

// values encodes the selection as /catalog query parameters
func (f *listingFlags) values(term string) url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			v.Set(key, value)
		}
	}
	set("q", term)
	set("genre", f.genre)
	set("author", f.author)
	set("price", f.price)
	if f.sort != models.SortNewest {
		set("sort", f.sort)
	}
	if f.page > 1 {
		v.Set("page", strconv.Itoa(f.page))
	}
	return v
}

func newCatalogCmd(o *rootOptions) *cobra.Command {
	var flags listingFlags
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the audiobook catalog",
		Long: `Lists the catalog six items per page.

Example:
  storefront catalog --genre fiction --sort price-low --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.showListing(cmd, flags.query(""))
		},
	}
	flags.register(cmd)
	return cmd
}

func newSearchCmd(o *rootOptions) *cobra.Command {
	var flags listingFlags
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the catalog",
		Long: `Searches titles, authors and descriptions. When the search service is down
the already loaded catalog is searched locally.

Example:
  storefront search толстой --sort rating`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.showListing(cmd, flags.query(strings.Join(args, " ")))
		},
	}
	flags.register(cmd)
	return cmd
}

func (o *rootOptions) showListing(cmd *cobra.Command, query service.CatalogQuery) error {
	ctx := cmd.Context()
	a, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	view, err := a.Storefront.ShowCatalog(ctx, query)
	if err != nil {
		return o.fail(ctx, out, a, err)
	}

	title := "Catalog"
	if view.Query != "" {
		title = fmt.Sprintf("Search: %s", view.Query)
	}
	return o.renderer.Catalog(out, a.Storefront.Page(ctx, title), view)
}

func newItemCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "item [id]",
		Short: "Show one audiobook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			item, err := a.Storefront.ShowItem(ctx, id)
			if err != nil {
				return o.fail(ctx, out, a, err)
			}
			return o.renderer.Item(out, a.Storefront.Page(ctx, item.Title), *item)
		},
	}
}

func parseItemID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("id", "item id must be a positive integer, got %q", raw)
	}
	return id, nil
}
