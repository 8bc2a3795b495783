package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0 ₽"},
		{200, "200 ₽"},
		{999, "999 ₽"},
		{1000, "1 000 ₽"},
		{1299.5, "1 299.50 ₽"},
		{1234567, "1 234 567 ₽"},
		{-450, "-450 ₽"},
		{0.1 + 0.2, "0.30 ₽"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.amount), "amount %v", tt.amount)
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "12 500 ₽", FormatDecimal(decimal.NewFromInt(12500)))
}
