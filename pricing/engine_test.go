package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook-storefront/models"
)

func TestLocalQuote(t *testing.T) {
	quote := LocalQuote([]models.CartLine{
		{ID: "3", Title: "A", Price: 100, Quantity: 2},
		{ID: "4", Title: "B", Price: 0.1, Quantity: 3},
	})

	require.Len(t, quote.Lines, 2)
	assert.Equal(t, 200.0, quote.Lines[0].LineTotal)
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("200.3")), "got %s", quote.Total)

	view := quote.View()
	assert.Equal(t, 200.3, view.Total)
	assert.Equal(t, 5, view.ItemCount)
	assert.False(t, view.Empty)
}

func TestLocalQuote_Empty(t *testing.T) {
	view := LocalQuote(nil).View()
	assert.True(t, view.Empty)
	assert.Equal(t, 0.0, view.Total)
	assert.NotNil(t, view.Lines)
}

func TestRemoteQuote(t *testing.T) {
	total := 270.0
	quote := RemoteQuote(&models.PricingBreakdown{
		Items: []models.PricingLine{
			{ItemID: 3, Title: "", PricePerUnit: 90, Quantity: 3, TotalPrice: 270},
		},
		TotalPrice: &total,
	}, []models.CartLine{{ID: "3", Title: "Cached title", Price: 100, Quantity: 3}})

	require.Len(t, quote.Lines, 1)
	assert.Equal(t, "3", quote.Lines[0].ID)
	assert.Equal(t, "Cached title", quote.Lines[0].Title)
	assert.Equal(t, 90.0, quote.Lines[0].UnitPrice)
	assert.Equal(t, 270.0, quote.View().Total)
}

func TestRemoteQuoteMatchesPaddedLineID(t *testing.T) {
	total := 200.0
	quote := RemoteQuote(&models.PricingBreakdown{
		Items:      []models.PricingLine{{ItemID: 3, PricePerUnit: 100, Quantity: 2, TotalPrice: 200}},
		TotalPrice: &total,
	}, []models.CartLine{{ID: "03", Title: "Война и мир", Price: 100, Quantity: 2}})

	require.Len(t, quote.Lines, 1)
	assert.Equal(t, "03", quote.Lines[0].ID)
	assert.Equal(t, "Война и мир", quote.Lines[0].Title)
}
