package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is applied to new products when the caller does not choose one.
const DefaultLowStockThreshold = 10

// Product is a single inventory record as held by the record store.
type Product struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Value returns quantity * price without rounding.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductInput carries the editable fields of a product for add and edit actions.
type ProductInput struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Category          string          `json:"category" validate:"required,max=100"`
	Quantity          int             `json:"quantity" validate:"gte=0"`
	Price             decimal.Decimal `json:"price" validate:"gt=0"`
	LowStockThreshold int             `json:"lowStockThreshold" validate:"gte=0"`
}

// NewProductInput returns an input pre-populated with creation defaults.
func NewProductInput() ProductInput {
	return ProductInput{LowStockThreshold: DefaultLowStockThreshold}
}

// Normalize trims the free-text fields in place and returns the input for chaining.
func (in *ProductInput) Normalize() *ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

// Apply overwrites every editable field of p with the input values.
func (in ProductInput) Apply(p Product) Product {
	p.Name = in.Name
	p.Category = in.Category
	p.Quantity = in.Quantity
	p.Price = in.Price
	p.LowStockThreshold = in.LowStockThreshold
	return p
}

// StockStatus classifies a product's quantity against its threshold.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusInStock    StockStatus = "in_stock"
)
