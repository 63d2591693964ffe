package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PantryItem struct {
	UserID      string
	ProductID   string
	ProductName string
	Unit        string
	Quantity    decimal.Decimal
	Version     int
	UpdatedAt   time.Time

	// Warning is set by an add whose product could not be indexed. Never stored.
	Warning error
}

// Quantities are stored as DECIMAL(12,3).
const QuantityScale = 3

// MaxQuantity is the exclusive upper bound of a stored quantity.
var MaxQuantity = decimal.New(1, 9)

// CheckQuantityRange rejects quantities the store cannot hold exactly.
func CheckQuantityRange(q decimal.Decimal) error {
	if !q.Round(QuantityScale).Equal(q) {
		return InvalidInput("quantity %s has more than %d decimal places", q, QuantityScale)
	}
	if q.Abs().GreaterThanOrEqual(MaxQuantity) {
		return InvalidInput("quantity %s must be below %s", q, MaxQuantity)
	}
	return nil
}

// Snapshot maps product ID to the quantity available in a user's pantry.
// Items held at zero are left out.
type Snapshot map[string]decimal.Decimal

func NewSnapshot(items []PantryItem) Snapshot {
	s := make(Snapshot, len(items))
	for _, it := range items {
		if !it.Quantity.IsPositive() {
			continue
		}
		s[it.ProductID] = s[it.ProductID].Add(it.Quantity)
	}
	return s
}
