// Package metrics derives inventory statistics from a product collection.
//
// Every function here is pure: the same input always yields the same output and
// nothing is cached between calls. Callers recompute a Snapshot whenever the
// product collection changes.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

const (
	// TopQuantityCategories is how many categories the quantity chart keeps.
	TopQuantityCategories = 8
	// TopValueCategories is how many categories the value chart keeps.
	TopValueCategories = 6

	displayPlaces   = 2
	chartLabelRunes = 12
)

// CategoryQuantity is the summed quantity of one category.
type CategoryQuantity struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// CategoryValue is the summed stock value of one category, rounded to cents.
type CategoryValue struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// StatusCounts holds the number of products in each stock status.
type StatusCounts struct {
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// StatusBucket is one non-empty slice of the stock status chart.
type StatusBucket struct {
	Status models.StockStatus `json:"status"`
	Count  int                `json:"count"`
}

// Snapshot is the full set of derived metrics for a product collection.
type Snapshot struct {
	TotalProducts    int
	TotalValue       decimal.Decimal
	LowStockItems    []models.Product
	OutOfStockItems  []models.Product
	StatusCounts     StatusCounts
	CategoryQuantity []CategoryQuantity
	CategoryValue    []CategoryValue

	restock []models.Product
}

// Classify returns the stock status of p. Zero quantity always wins over the threshold.
func Classify(p models.Product) models.StockStatus {
	switch {
	case p.Quantity == 0:
		return models.StatusOutOfStock
	case p.Quantity <= p.LowStockThreshold:
		return models.StatusLowStock
	default:
		return models.StatusInStock
	}
}

// Compute builds a Snapshot from products. Input order is preserved in item lists
// and decides tie order between categories with equal totals.
func Compute(products []models.Product) Snapshot {
	snap := Snapshot{
		TotalProducts:   len(products),
		TotalValue:      decimal.Zero,
		LowStockItems:   []models.Product{},
		OutOfStockItems: []models.Product{},
		restock:         []models.Product{},
	}

	quantityIdx := make(map[string]int)
	valueByCategory := make(map[string]decimal.Decimal)
	var order []string

	for _, p := range products {
		value := p.Value()
		snap.TotalValue = snap.TotalValue.Add(value)

		switch Classify(p) {
		case models.StatusOutOfStock:
			snap.StatusCounts.OutOfStock++
			snap.OutOfStockItems = append(snap.OutOfStockItems, p)
			snap.restock = append(snap.restock, p)
		case models.StatusLowStock:
			snap.StatusCounts.LowStock++
			snap.LowStockItems = append(snap.LowStockItems, p)
			snap.restock = append(snap.restock, p)
		default:
			snap.StatusCounts.InStock++
		}

		idx, seen := quantityIdx[p.Category]
		if !seen {
			idx = len(order)
			quantityIdx[p.Category] = idx
			order = append(order, p.Category)
			snap.CategoryQuantity = append(snap.CategoryQuantity, CategoryQuantity{Category: p.Category})
			valueByCategory[p.Category] = decimal.Zero
		}
		snap.CategoryQuantity[idx].Quantity += p.Quantity
		valueByCategory[p.Category] = valueByCategory[p.Category].Add(value)
	}

	snap.CategoryValue = make([]CategoryValue, 0, len(order))
	for _, category := range order {
		snap.CategoryValue = append(snap.CategoryValue, CategoryValue{
			Category: category,
			Value:    valueByCategory[category].Round(displayPlaces),
		})
	}

	sort.SliceStable(snap.CategoryQuantity, func(i, j int) bool {
		return snap.CategoryQuantity[i].Quantity > snap.CategoryQuantity[j].Quantity
	})
	sort.SliceStable(snap.CategoryValue, func(i, j int) bool {
		return snap.CategoryValue[i].Value.GreaterThan(snap.CategoryValue[j].Value)
	})

	if snap.CategoryQuantity == nil {
		snap.CategoryQuantity = []CategoryQuantity{}
	}

	return snap
}

// RestockItems returns every product that is low or out of stock, in input order.
func (s Snapshot) RestockItems() []models.Product {
	return s.restock
}

// InStockCount is the number of products above their threshold.
func (s Snapshot) InStockCount() int {
	return s.StatusCounts.InStock
}

// TopCategoriesByQuantity keeps the leading categories for the quantity chart.
func (s Snapshot) TopCategoriesByQuantity() []CategoryQuantity {
	if len(s.CategoryQuantity) <= TopQuantityCategories {
		return s.CategoryQuantity
	}
	return s.CategoryQuantity[:TopQuantityCategories]
}

// TopCategoriesByValue keeps the leading categories for the value chart.
func (s Snapshot) TopCategoriesByValue() []CategoryValue {
	if len(s.CategoryValue) <= TopValueCategories {
		return s.CategoryValue
	}
	return s.CategoryValue[:TopValueCategories]
}

// Buckets lists the non-empty status counts in chart order.
func (c StatusCounts) Buckets() []StatusBucket {
	all := []StatusBucket{
		{Status: models.StatusInStock, Count: c.InStock},
		{Status: models.StatusLowStock, Count: c.LowStock},
		{Status: models.StatusOutOfStock, Count: c.OutOfStock},
	}
	buckets := make([]StatusBucket, 0, len(all))
	for _, b := range all {
		if b.Count > 0 {
			buckets = append(buckets, b)
		}
	}
	return buckets
}

// Display renders an amount with two decimals, rounding half away from zero.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(displayPlaces)
}

// ChartLabel shortens long category names for chart axes.
func ChartLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= chartLabelRunes {
		return name
	}
	return string(runes[:chartLabelRunes]) + "..."
}
