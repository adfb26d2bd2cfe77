package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity the items.quantity column can hold.
const MaxQuantity = math.MaxInt32

// Item represents a stocked menu item in the inventory catalogue.
type Item struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Unit          string          `json:"unit" db:"unit"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Quantity      int             `json:"quantity" db:"quantity"`
	MinStockLevel int             `json:"minStockLevel" db:"min_stock_level"`
	IsActive      bool            `json:"isActive" db:"is_active"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// UnitPrice returns the price charged per unit once the discount is applied.
// It never goes below zero.
func (i Item) UnitPrice() decimal.Decimal {
	p := i.Price.Sub(i.Discount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// CrossesMinStock reports whether moving from the given quantity to the
// item's current quantity took it below its reorder threshold.
func (i Item) CrossesMinStock(previous int) bool {
	return previous >= i.MinStockLevel && i.Quantity < i.MinStockLevel
}

// StockLevel is a point-in-time view of an item's on-hand stock.
type StockLevel struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	IsActive bool   `json:"isActive"`
}
