package metrics_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/service/metrics"
)

func TestFilter(t *testing.T) {
	products := sampleInventory()

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"Laptop", "Mouse", "Desk", "Chair", "Pen", "Stapler", "Monitor"}},
		{"lap", []string{"Laptop"}},
		{"ELECTRONICS", []string{"Laptop", "Mouse", "Monitor"}},
		{"ture", []string{"Desk", "Chair"}},
		{"o", []string{"Laptop", "Mouse", "Pen", "Stapler", "Monitor"}},
		{"zzz", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			got := []string{}
			for _, p := range metrics.Filter(products, tc.query) {
				got = append(got, p.Name)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilter_CaseInsensitiveAndIdempotent(t *testing.T) {
	products := sampleInventory()

	for _, q := range []string{"mo", "Sta", "FURN", "e", "pen"} {
		lower := metrics.Filter(products, q)
		upper := metrics.Filter(products, strings.ToUpper(q))
		assert.Equal(t, lower, upper, "query %q", q)
		assert.Equal(t, lower, metrics.Filter(lower, q), "query %q", q)
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	products := sampleInventory()
	out := metrics.Filter(products, "")
	out[0].Name = "changed"

	assert.Equal(t, "Laptop", products[0].Name)
}

func TestFilter_QueryIsNotTrimmed(t *testing.T) {
	products := []models.Product{
		product("Desk lamp", "Furniture", 3, "25.00", 2),
		product("Desk", "Furniture", 12, "149.50", 4),
	}

	assert.Len(t, metrics.Filter(products, ""), 2)
	assert.Empty(t, metrics.Filter(sampleInventory(), "  "))

	got := metrics.Filter(products, "desk ")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "Desk lamp", got[0].Name)
	}
}
