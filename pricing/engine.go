package pricing

import (
	"strconv"

	"github.com/shopspring/decimal"

	"audiobook-storefront/models"
)

// Quote is a priced cart ready for rendering
type Quote struct {
	Lines []models.CartViewLine
	Total decimal.Decimal
}

// View converts the quote into a renderable CartView
func (q Quote) View() models.CartView {
	count := 0
	for _, l := range q.Lines {
		count += l.Quantity
	}
	lines := q.Lines
	if lines == nil {
		lines = []models.CartViewLine{}
	}
	return models.CartView{
		Lines:     lines,
		Total:     q.Total.InexactFloat64(),
		ItemCount: count,
		Empty:     len(lines) == 0,
	}
}

// LineTotal returns unitPrice × qty computed exactly
func LineTotal(unitPrice float64, qty int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty)))
}

// LocalQuote prices the cart from the prices cached in each line.
// The total is Σ price × quantity.
func LocalQuote(lines []models.CartLine) Quote {
	quote := Quote{Lines: make([]models.CartViewLine, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		lineTotal := LineTotal(line.Price, line.Quantity)
		quote.Total = quote.Total.Add(lineTotal)
		quote.Lines = append(quote.Lines, models.CartViewLine{
			ID:        string(line.ID),
			Title:     line.Title,
			UnitPrice: line.Price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal.InexactFloat64(),
		})
	}
	return quote
}

// RemoteQuote converts an authoritative pricing breakdown into a quote. Lines are
// matched to the cached cart lines by item id; a matched line keeps its stored id, and
// titles the service left empty are taken from it.
func RemoteQuote(b *models.PricingBreakdown, cached []models.CartLine) Quote {
	byItem := make(map[int64]models.CartLine, len(cached))
	for _, line := range cached {
		if itemID, ok := line.ID.ItemID(); ok {
			byItem[itemID] = line
		}
	}

	quote := Quote{Lines: make([]models.CartViewLine, 0, len(b.Items))}
	for _, item := range b.Items {
		id := strconv.FormatInt(item.ItemID, 10)
		title := item.Title
		if line, ok := byItem[item.ItemID]; ok {
			id = string(line.ID)
			if title == "" {
				title = line.Title
			}
		}
		quote.Lines = append(quote.Lines, models.CartViewLine{
			ID:        id,
			Title:     title,
			UnitPrice: item.PricePerUnit,
			Quantity:  item.Quantity,
			LineTotal: item.TotalPrice,
		})
	}
	if b.TotalPrice != nil {
		quote.Total = decimal.NewFromFloat(*b.TotalPrice)
	}
	return quote
}
