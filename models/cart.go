package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LineID identifies the catalog item of a cart line. Stored carts carry the id either
// as a JSON string or as a number; both decode to the same LineID.
type LineID string

// UnmarshalJSON accepts both "3" and 3
func (id *LineID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode line id: %w", err)
		}
		*id = LineID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode line id: %w", err)
	}
	*id = LineID(n.String())
	return nil
}

// ItemID parses the line id as a catalog item identifier.
// ok is false when the id is not a positive integer.
func (id LineID) ItemID() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// CartLine is one entry of the locally persisted cart. Title and Price are a copy of
// the catalog data taken when the item was added.
type CartLine struct {
	ID       LineID  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartViewLine is one rendered cart row
type CartViewLine struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

// CartView represents the data handed to renderers for the cart page
type CartView struct {
	Lines     []CartViewLine `json:"lines"`
	Total     float64        `json:"total"`
	ItemCount int            `json:"itemCount"`
	Empty     bool           `json:"empty"`
	Degraded  bool           `json:"degraded"`
	Notice    string         `json:"notice,omitempty"`
}
