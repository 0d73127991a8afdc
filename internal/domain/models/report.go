package models

import "time"

// InventoryReport is the periodic metrics snapshot persisted to MongoDB.
type InventoryReport struct {
	Date           time.Time        `bson:"date" json:"date"`
	TotalProducts  int              `bson:"total_products" json:"totalProducts"`
	TotalValue     string           `bson:"total_value" json:"totalValue"`
	InStock        int              `bson:"in_stock" json:"inStock"`
	LowStock       int              `bson:"low_stock" json:"lowStock"`
	OutOfStock     int              `bson:"out_of_stock" json:"outOfStock"`
	RestockItems   []RestockItem    `bson:"restock_items" json:"restockItems"`
	CategoryValues []CategoryAmount `bson:"category_values" json:"categoryValues"`
	CreatedAt      time.Time        `bson:"created_at" json:"createdAt"`
}

// RestockItem is a product that needs attention in a report.
type RestockItem struct {
	ProductID string      `bson:"product_id" json:"productId"`
	Name      string      `bson:"name" json:"name"`
	Category  string      `bson:"category" json:"category"`
	Quantity  int         `bson:"quantity" json:"quantity"`
	Threshold int         `bson:"threshold" json:"threshold"`
	Status    StockStatus `bson:"status" json:"status"`
}

// CategoryAmount is a stringified per-category aggregate suitable for storage.
type CategoryAmount struct {
	Category string `bson:"category" json:"category"`
	Amount   string `bson:"amount" json:"amount"`
}
