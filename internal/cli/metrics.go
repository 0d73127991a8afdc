package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/service/metrics"
)

// MetricsResult is the printable form of a metrics snapshot.
type MetricsResult struct {
	TotalProducts   int                        `json:"totalProducts"`
	TotalValue      string                     `json:"totalValue"`
	StatusCounts    metrics.StatusCounts       `json:"statusCounts"`
	LowStockItems   []models.Product           `json:"lowStockItems"`
	OutOfStockItems []models.Product           `json:"outOfStockItems"`
	TopByQuantity   []metrics.CategoryQuantity `json:"topByQuantity"`
	TopByValue      []CategoryValueResult      `json:"topByValue"`
}

// CategoryValueResult is a category total with a display-rounded value.
type CategoryValueResult struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print inventory totals, stock status and category leaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd.Context(), func(env *Env) error {
				snap, err := env.Inventory.Metrics(cmd.Context(), env.Session)
				if err != nil {
					return WrapExitError("failed to load metrics", err)
				}
				result := newMetricsResult(snap)
				return emit(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) { printMetrics(w, result) })
			})
		},
	}
}

func newMetricsResult(snap metrics.Snapshot) MetricsResult {
	result := MetricsResult{
		TotalProducts:   snap.TotalProducts,
		TotalValue:      metrics.Display(snap.TotalValue),
		StatusCounts:    snap.StatusCounts,
		LowStockItems:   snap.LowStockItems,
		OutOfStockItems: snap.OutOfStockItems,
		TopByQuantity:   snap.TopCategoriesByQuantity(),
		TopByValue:      []CategoryValueResult{},
	}
	for _, cv := range snap.TopCategoriesByValue() {
		result.TopByValue = append(result.TopByValue, CategoryValueResult{Category: cv.Category, Value: metrics.Display(cv.Value)})
	}
	return result
}

func printMetrics(w io.Writer, m MetricsResult) {
	fmt.Fprintf(w, "Total products: %d\n", m.TotalProducts)
	fmt.Fprintf(w, "Total value:    %s USD\n", m.TotalValue)
	fmt.Fprintf(w, "In stock: %d, low stock: %d, out of stock: %d\n",
		m.StatusCounts.InStock, m.StatusCounts.LowStock, m.StatusCounts.OutOfStock)

	if len(m.LowStockItems) > 0 {
		fmt.Fprintln(w, "\nLow stock:")
		for _, p := range m.LowStockItems {
			fmt.Fprintf(w, "  - %s (%s): %d left, threshold %d\n", p.Name, p.Category, p.Quantity, p.LowStockThreshold)
		}
	}
	if len(m.OutOfStockItems) > 0 {
		fmt.Fprintln(w, "\nOut of stock:")
		for _, p := range m.OutOfStockItems {
			fmt.Fprintf(w, "  - %s (%s)\n", p.Name, p.Category)
		}
	}
	if len(m.TopByValue) > 0 {
		fmt.Fprintln(w, "\nValue by category:")
		for _, cv := range m.TopByValue {
			fmt.Fprintf(w, "  %-20s %12s\n", metrics.ChartLabel(cv.Category), cv.Value)
		}
	}
}
