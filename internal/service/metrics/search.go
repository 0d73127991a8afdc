package metrics

import (
	"strings"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// Filter keeps the products whose name or category contains query, ignoring case.
// An empty query matches everything.
func Filter(products []models.Product, query string) []models.Product {
	out := make([]models.Product, 0, len(products))
	if query == "" {
		return append(out, products...)
	}

	needle := strings.ToLower(query)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}
